package promotions

import (
	"cineplex/internal/shared/config"
	"cineplex/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupPromotionRoutes(router *gin.RouterGroup, controller Controller, cfg *config.Config) {
	router.GET("/promotions/validate/:code", controller.ValidateCode) // GET /api/v1/promotions/validate/:code

	admin := router.Group("/admin/promotions")
	admin.Use(middleware.JWTAuthWithConfig(cfg), middleware.RequireAdminWithConfig(cfg))
	{
		admin.POST("", controller.CreatePromotion)        // POST /api/v1/admin/promotions
		admin.GET("", controller.ListPromotions)          // GET /api/v1/admin/promotions
		admin.GET("/:id", controller.GetPromotion)        // GET /api/v1/admin/promotions/:id
		admin.POST("/:id/send", controller.SendPromotion) // POST /api/v1/admin/promotions/:id/send
		admin.DELETE("/:id", controller.DeletePromotion)  // DELETE /api/v1/admin/promotions/:id
	}
}
