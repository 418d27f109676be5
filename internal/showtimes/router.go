package showtimes

import (
	"cineplex/internal/shared/config"
	"cineplex/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupShowtimeRoutes(router *gin.RouterGroup, controller Controller, cfg *config.Config) {
	// Public routes - browsing the schedule
	public := router.Group("/showtimes")
	public.Use(middleware.OptionalAuthWithConfig(cfg))
	{
		public.GET("/:id", controller.GetShowtime)                      // GET /api/v1/showtimes/:id
		public.GET("/movie/:movieId", controller.ListShowtimesForMovie) // GET /api/v1/showtimes/movie/:movieId
		public.GET("/room/:roomId", controller.ListShowtimesForRoom)    // GET /api/v1/showtimes/room/:roomId?date=YYYY-MM-DD
	}

	// Admin routes - schedule management
	admin := router.Group("/admin/showtimes")
	admin.Use(middleware.JWTAuthWithConfig(cfg), middleware.RequireAdminWithConfig(cfg))
	{
		admin.POST("", controller.ScheduleShowtimes)    // POST /api/v1/admin/showtimes
		admin.DELETE("/:id", controller.DeleteShowtime) // DELETE /api/v1/admin/showtimes/:id
	}
}
