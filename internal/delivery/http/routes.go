package http

import (
	"github.com/gin-gonic/gin"

	"github.com/wyoiwyget/ai-services/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes, bearer auth required
	v1 := router.Group("/api/v1")
	v1.Use(AuthMiddleware(cfg.Auth.JWTSecret))
	{
		avatars := v1.Group("/avatars")
		{
			avatars.POST("/generate", handler.GenerateAvatar)
			avatars.GET("", handler.ListAvatars)
			avatars.GET("/:id", handler.GetAvatar)
			avatars.GET("/:id/status", handler.GetTaskStatus)
			avatars.DELETE("/:id", handler.DeleteAvatar)
		}

		tryon := v1.Group("/virtual-tryon")
		{
			tryon.POST("", handler.StartTryOn)
			tryon.POST("/start", handler.StartTryOn)
			tryon.GET("/history", handler.GetTryOnHistory)
			tryon.GET("/:id/status", handler.GetTaskStatus)
		}

		v1.POST("/fit/predict", handler.PredictFit)

		v1.POST("/body-measurements/analyze", handler.EstimateMeasurements)

		products := v1.Group("/products")
		{
			products.POST("/match", handler.MatchProducts)
			products.POST("/compare-prices", handler.ComparePrices)
			products.GET("/matches/history", handler.GetMatchHistory)
			products.GET("/matches/:id", handler.GetMatchResult)
			products.GET("/matches", handler.GetMatchHistory)
			products.GET("/:id/price-history", handler.GetPriceHistory)
		}

		tasks := v1.Group("/tasks")
		{
			tasks.GET("", handler.ListTasks)
			tasks.GET("/:id", handler.GetTaskStatus)
			tasks.DELETE("/:id", handler.DeleteTask)
		}
	}

	return router
}
