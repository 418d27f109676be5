package tickets

import (
	"cineplex/internal/shared/config"
	"cineplex/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupTicketRoutes(router *gin.RouterGroup, controller Controller, cfg *config.Config) {
	// Seat availability is public
	router.GET("/showtimes/:id/seats", controller.GetSeatMap) // GET /api/v1/showtimes/:id/seats

	auth := middleware.JWTAuthWithConfig(cfg)

	tickets := router.Group("/tickets")
	tickets.Use(auth)
	{
		tickets.POST("", controller.IssueTicket)        // POST /api/v1/tickets
		tickets.GET("/:id", controller.GetTicket)       // GET /api/v1/tickets/:id
		tickets.DELETE("/:id", controller.DeleteTicket) // DELETE /api/v1/tickets/:id
	}

	router.GET("/bookings/:id/tickets", auth, controller.ListTicketsForBooking)           // GET /api/v1/bookings/:id/tickets
	router.GET("/customers/:customerId/tickets", auth, controller.ListTicketsForCustomer) // GET /api/v1/customers/:customerId/tickets
}
