package bookings

import (
	"cineplex/internal/shared/config"
	"cineplex/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupBookingRoutes(router *gin.RouterGroup, controller Controller, cfg *config.Config) {
	auth := middleware.JWTAuthWithConfig(cfg)

	bookings := router.Group("/bookings")
	bookings.Use(auth)
	{
		bookings.POST("", controller.CreateBooking)                // POST /api/v1/bookings
		bookings.GET("/:id", controller.GetBooking)                // GET /api/v1/bookings/:id
		bookings.GET("/:id/details", controller.GetBookingDetails) // GET /api/v1/bookings/:id/details
		bookings.PUT("/:id/confirm", controller.ConfirmBooking)    // PUT /api/v1/bookings/:id/confirm
		bookings.POST("/:id/cancel", controller.CancelBooking)     // POST /api/v1/bookings/:id/cancel
		bookings.DELETE("/:id", controller.DeleteBooking)          // DELETE /api/v1/bookings/:id
	}

	router.GET("/customers/:customerId/bookings", auth, controller.GetBookingsForCustomer) // GET /api/v1/customers/:customerId/bookings

	admin := router.Group("/admin/bookings")
	admin.Use(auth, middleware.RequireAdminWithConfig(cfg))
	{
		admin.POST("/expire", controller.ExpireStaleBookings) // POST /api/v1/admin/bookings/expire
	}
}
