package routes

import (
	"net/http"
	"time"

	"cineplex/internal/bookings"
	"cineplex/internal/customers"
	"cineplex/internal/notifications"
	"cineplex/internal/promotions"
	"cineplex/internal/shared/config"
	"cineplex/internal/shared/database"
	"cineplex/internal/showtimes"
	"cineplex/internal/tickets"
	"cineplex/pkg/cache"
	"cineplex/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Router wires the repositories, services and controllers of every module.
// The booking service and the notification dispatcher are exposed for the
// background jobs started by main.
type Router struct {
	config *config.Config
	db     *database.DB
	log    *logger.Logger

	Cache      cache.Service
	Dispatcher *notifications.Dispatcher

	ShowtimeService  showtimes.Service
	BookingService   bookings.Service
	TicketService    tickets.Service
	PromotionService promotions.Service

	jobStatus func() map[string]interface{}
}

// NewRouter builds the services. notifier may be nil, in which case
// confirmations and broadcasts are skipped.
func NewRouter(cfg *config.Config, db *database.DB, notifier *notifications.Service, log *logger.Logger) *Router {
	r := &Router{
		config:     cfg,
		db:         db,
		log:        log.WithComponent("router"),
		Dispatcher: notifications.NewDispatcher(cfg.Notification.DispatchTimeout, log),
	}

	if db.Redis != nil {
		r.Cache = cache.NewService(db.Redis)
	} else {
		r.Cache = cache.NewMemoryService()
	}

	pg := db.GetPostgreSQL()
	directory := customers.NewDirectory(pg)

	r.ShowtimeService = showtimes.NewService(showtimes.NewRepository(pg), log)

	r.TicketService = tickets.NewService(tickets.NewRepository(pg), tickets.PricingFromConfig(cfg.Pricing), log)
	r.TicketService.SetCacheService(r.Cache, cfg.Redis.SeatMapTTL)

	r.BookingService = bookings.NewService(bookings.NewRepository(pg), directory, bookings.Config{
		PendingExpiry:  cfg.Booking.PendingExpiry,
		SweepBatchSize: cfg.Booking.SweepBatchSize,
	}, log)
	r.BookingService.SetSeatMapInvalidator(r.TicketService)

	r.PromotionService = promotions.NewService(promotions.NewRepository(pg), directory, log)

	if notifier != nil {
		r.BookingService.SetNotifier(notifier, r.Dispatcher)
		r.PromotionService.SetBroadcaster(notifier, r.Dispatcher)
	} else {
		r.log.Warn("Notification service unavailable, confirmations and promotions will not be emailed")
	}

	return r
}

// SetJobStatus exposes the expiry job state on /status
func (r *Router) SetJobStatus(status func() map[string]interface{}) {
	r.jobStatus = status
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	api := engine.Group(r.config.GetAPIBasePath())
	{
		showtimes.SetupShowtimeRoutes(api, showtimes.NewController(r.ShowtimeService), r.config)
		tickets.SetupTicketRoutes(api, tickets.NewController(r.TicketService), r.config)
		bookings.SetupBookingRoutes(api, bookings.NewController(r.BookingService), r.config)
		promotions.SetupPromotionRoutes(api, promotions.NewController(r.PromotionService), r.config)
	}
}

func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "cineplex-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":      "healthy",
			"timestamp":   time.Now(),
			"service":     "cineplex-backend",
			"redis_cache": r.db.Redis != nil,
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		body := gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"timestamp":   time.Now(),
		}
		if r.jobStatus != nil {
			body["booking_expiry_job"] = r.jobStatus()
		}
		c.JSON(http.StatusOK, body)
	})
}
