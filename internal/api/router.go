package api

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Conceptual-Machines/tabseq-api/internal/api/handlers"
	apimiddleware "github.com/Conceptual-Machines/tabseq-api/internal/api/middleware"
	"github.com/Conceptual-Machines/tabseq-api/internal/config"
	"github.com/Conceptual-Machines/tabseq-api/internal/metrics"
)

func SetupRouter(db *gorm.DB, cfg *config.Config, cloudwatch *metrics.Client, version string) *gin.Engine {
	router := gin.New()

	// Recovery middleware (must be first)
	router.Use(apimiddleware.RecoverWithSentry())

	// Sentry middleware for error tracking
	router.Use(apimiddleware.SentryMiddleware())

	// Request tracking and structured logging
	router.Use(apimiddleware.RequestTracking(cloudwatch))

	// CORS middleware
	router.Use(apimiddleware.CORS())

	// Health check
	healthHandler := handlers.NewHealthHandler(db)
	router.GET("/health", healthHandler.HealthCheck)

	// Metrics endpoint
	metricsHandler := handlers.NewMetricsHandler(version)
	router.GET("/api/metrics", metricsHandler.GetMetrics)

	// Conversion API
	v1 := router.Group("/api/v1")
	{
		conversionHandler := handlers.NewConversionHandler(cfg, db, cloudwatch)
		v1.POST("/conversions", conversionHandler.Create)
		v1.GET("/conversions", conversionHandler.List)
		v1.GET("/conversions/:id", conversionHandler.Get)
	}

	return router
}
