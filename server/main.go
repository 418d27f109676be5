package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cineplex/api/routes"
	"cineplex/docs"
	"cineplex/internal/bookings"
	"cineplex/internal/notifications"
	"cineplex/internal/shared/config"
	"cineplex/internal/shared/database"
	"cineplex/internal/shared/middleware"
	"cineplex/pkg/logger"
	"cineplex/pkg/mq"
	"cineplex/pkg/ratelimit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// @title       Cineplex API
// @version     1.0
// @description Showtime scheduling, bookings, tickets and promotions.
// @BasePath    /api/v1
func main() {
	appLogger := logger.GetDefault()

	if err := godotenv.Load(); err != nil {
		if os.Getenv("GIN_MODE") == "release" || os.Getenv("DOCKER_CONTAINER") == "true" {
			appLogger.Info("Production environment: using container environment variables")
		} else {
			appLogger.Info("No .env file found, using system environment variables")
		}
	} else {
		appLogger.Info("Development environment: loaded .env file")
	}

	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	// rebuild once .env has been applied so LOG_LEVEL and GIN_MODE take effect
	appLogger = logger.New()
	logger.SetDefault(appLogger)

	db, err := database.InitDB(cfg, appLogger)
	if err != nil {
		appLogger.Error("Failed to initialize database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	var rateLimiter *ratelimit.RateLimiter
	switch {
	case !cfg.RateLimit.Enabled:
		appLogger.Info("Rate limiting disabled")
	case db.Redis == nil:
		appLogger.Warn("Rate limiting disabled: Redis unavailable")
	default:
		rateLimiter = ratelimit.NewRateLimiter(db.GetRedisClient(), &ratelimit.Config{
			Enabled:         cfg.RateLimit.Enabled,
			WindowDuration:  cfg.RateLimit.WindowDuration,
			DefaultRequests: cfg.RateLimit.DefaultRequests,
			PublicRequests:  cfg.RateLimit.PublicRequests,
			BookingRequests: cfg.RateLimit.BookingRequests,
			AdminRequests:   cfg.RateLimit.AdminRequests,
			HealthRequests:  cfg.RateLimit.HealthRequests,
			WhitelistedIPs:  cfg.RateLimit.WhitelistedIPs,
		})
		appLogger.Info("Rate limiter initialized",
			slog.Duration("window", cfg.RateLimit.WindowDuration),
			slog.Int("default_requests", cfg.RateLimit.DefaultRequests),
		)
	}

	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()

	notificationService, err := notifications.NewService(cfg, appLogger)
	if err != nil {
		appLogger.Error("Failed to initialize notification service", slog.Any("error", err))
		appLogger.Info("Continuing without notification service")
	} else if err := notificationService.Start(bgCtx); err != nil {
		appLogger.Error("Failed to start notification service", slog.Any("error", err))
	}

	appRouter := routes.NewRouter(cfg, db, notificationService, appLogger)

	expiryJob := bookings.NewExpiryJob(appRouter.BookingService, appRouter.Cache, &bookings.JobConfig{
		Interval:  cfg.Booking.SweepInterval,
		Threshold: cfg.Booking.PendingExpiry,
		LockTTL:   cfg.Booking.SweepLockTTL,
	}, appLogger)
	expiryJob.Start(bgCtx)
	appRouter.SetJobStatus(expiryJob.GetJobStatus)

	var (
		expiryQueue *bookings.ExpiryQueue
		amqpConn    *amqp.Connection
	)
	if cfg.RabbitMQ.Enabled {
		expiryQueue, amqpConn = startExpiryQueue(bgCtx, cfg, appRouter.BookingService, appLogger)
		if expiryQueue != nil {
			appRouter.BookingService.SetExpiryScheduler(expiryQueue)
		}
	}

	router := setupRouter(cfg, appRouter, rateLimiter, appLogger)

	srv := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        router,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	go func() {
		appLogger.Info("Server running",
			slog.String("address", cfg.GetServerAddress()),
			slog.String("health_check", fmt.Sprintf("http://localhost:%s/health", cfg.Port)),
			slog.String("version", Version),
			slog.String("commit", GitCommit),
			slog.Bool("redis_cache", db.Redis != nil),
			slog.Bool("rate_limiting", rateLimiter != nil),
			slog.Bool("kafka_notifications", cfg.Kafka.Enabled),
			slog.Bool("expiry_timers", expiryQueue != nil),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("Server failed", slog.Any("error", err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Forced shutdown", slog.Any("error", err))
	}

	expiryJob.Stop()
	bgCancel()
	if expiryQueue != nil {
		if err := expiryQueue.Close(); err != nil {
			appLogger.Error("Error closing expiry queue", slog.Any("error", err))
		}
		_ = amqpConn.Close()
	}

	if err := appRouter.Dispatcher.Wait(ctx); err != nil {
		appLogger.Error("Pending notifications abandoned", slog.Any("error", err))
	}
	if notificationService != nil {
		if err := notificationService.Stop(); err != nil {
			appLogger.Error("Error stopping notification service", slog.Any("error", err))
		}
	}

	appLogger.Info("Server exited gracefully")
}

// startExpiryQueue arms per-booking expiry timers on RabbitMQ. Failure leaves
// expiry to the periodic sweep.
func startExpiryQueue(ctx context.Context, cfg *config.Config, svc bookings.Service, log *logger.Logger) (*bookings.ExpiryQueue, *amqp.Connection) {
	conn, err := mq.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		log.Error("RabbitMQ unavailable, relying on the expiry sweep", slog.Any("error", err))
		return nil, nil
	}

	queue, err := bookings.NewExpiryQueue(conn, svc.PendingExpiry(), svc, log)
	if err != nil {
		log.Error("Failed to declare expiry queue", slog.Any("error", err))
		_ = conn.Close()
		return nil, nil
	}
	if err := queue.Start(ctx); err != nil {
		log.Error("Failed to start expiry queue consumer", slog.Any("error", err))
		_ = queue.Close()
		_ = conn.Close()
		return nil, nil
	}

	log.Info("Booking expiry timers enabled", slog.Duration("ttl", svc.PendingExpiry()))
	return queue, conn
}

func setupRouter(cfg *config.Config, appRouter *routes.Router, rateLimiter *ratelimit.RateLimiter, appLogger *logger.Logger) *gin.Engine {
	engine := gin.New()

	engine.Use(middleware.RequestLogger(appLogger), gin.Recovery())

	engine.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if rateLimiter != nil {
		engine.Use(ratelimit.Middleware(rateLimiter, appLogger))
	}

	if !cfg.IsProduction() {
		docs.SwaggerInfo.BasePath = cfg.GetAPIBasePath()
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	appRouter.SetupRoutes(engine)

	return engine
}
