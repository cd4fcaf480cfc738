package http

import (
	"github.com/gin-gonic/gin"

	"github.com/platelens/backend/config"
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
	router.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.POST("/parse-image", handler.ParseImage)

		v1.GET("/results/:sessionID", handler.GetResults)
		v1.GET("/results/:sessionID/status", handler.GetStatus)

		v1.GET("/products", handler.ListProducts)
		v1.GET("/products/:productID", handler.GetProduct)
	}

	return router
}
