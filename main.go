package main

import (
	"context"
	"log"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/Conceptual-Machines/tabseq-api/internal/api"
	"github.com/Conceptual-Machines/tabseq-api/internal/config"
	"github.com/Conceptual-Machines/tabseq-api/internal/database"
	"github.com/Conceptual-Machines/tabseq-api/internal/metrics"
)

const (
	sentryFlushTimeout    = 2 * time.Second
	environmentProduction = "production"
)

// releaseVersion is set via ldflags during build
var releaseVersion = "dev"

// GetVersion returns the current release version
func GetVersion() string {
	return releaseVersion
}

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := config.Load()

	// Initialize Sentry
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			Release:          "tabseq-api@" + releaseVersion,
			EnableTracing:    true,
			TracesSampleRate: 1.0, // 100% sampling for now, adjust based on volume
			Debug:            cfg.Environment != environmentProduction,
		}); err != nil {
			log.Printf("Failed to initialize Sentry: %v", err)
		} else {
			log.Printf("Sentry initialized (environment: %s, release: %s)", cfg.Environment, releaseVersion)
			defer sentry.Flush(sentryFlushTimeout)
		}
	} else {
		log.Println("Sentry not configured (SENTRY_DSN not set)")
	}

	// Conversion history is optional; without DATABASE_URL the service
	// runs stateless and history endpoints respond 404.
	var db *gorm.DB
	if cfg.HasDatabase() {
		var err error
		db, err = database.Connect(cfg.DatabaseURL)
		if err != nil {
			sentry.CaptureException(err)
			log.Fatal("Failed to connect to database:", err)
		}
		if err := database.Migrate(db); err != nil {
			sentry.CaptureException(err)
			log.Fatal("Failed to run migrations:", err)
		}
		log.Println("Conversion history enabled")
	} else {
		log.Println("DATABASE_URL not set, conversion history disabled")
	}

	// CloudWatch metrics (no-op outside production)
	cloudwatch, err := metrics.NewClient(context.Background(), cfg.Environment)
	if err != nil {
		log.Printf("Failed to initialize CloudWatch metrics: %v", err)
	}

	// Set Gin mode
	if cfg.Environment == environmentProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize router
	router := api.SetupRouter(db, cfg, cloudwatch, GetVersion())

	// Start server
	log.Printf("Starting server on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		sentry.CaptureException(err)
		log.Fatal("Failed to start server:", err)
	}
}
