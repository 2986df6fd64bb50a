package main

import (
	"database/sql"
	"flag"
	"log"
	"net/http"
	"time"

	_ "github.com/lib/pq"

	httpapi "stayhub-backend/internal/api/http"
	"stayhub-backend/internal/config"
	"stayhub-backend/internal/gateway"
	"stayhub-backend/internal/logger"
	"stayhub-backend/internal/repository/postgres"
	"stayhub-backend/internal/security"
	"stayhub-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting StayHub Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)
	logger.Info("Gateway configuration", "base_url", cfg.Gateway.BaseURL, "timeout_seconds", cfg.Gateway.TimeoutSeconds)

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)

	// Initialize Payment Gateway
	gatewayClient := gateway.NewClient(gateway.Config{
		BaseURL:          cfg.Gateway.BaseURL,
		EntityID:         cfg.Gateway.EntityID,
		BearerToken:      cfg.Gateway.BearerToken,
		Timeout:          time.Duration(cfg.Gateway.TimeoutSeconds) * time.Second,
		ShopperResultURL: cfg.Gateway.ShopperResultURL,
		NotificationURL:  cfg.Gateway.NotificationURL,
	})
	classifier, err := gateway.NewClassifier(gateway.ClassifierConfig{
		Success:      cfg.Gateway.SuccessPattern,
		ManualReview: cfg.Gateway.ManualReviewPattern,
		Pending:      cfg.Gateway.PendingPattern,
		PollPending:  cfg.Gateway.PollPendingPattern,
	})
	if err != nil {
		logger.Error("Failed to build result code classifier", "error", err)
		log.Fatalf("Failed to build result code classifier: %v", err)
	}

	// Initialize Services
	emailSvc := service.NewEmailService(
		cfg.SendGrid.APIKey,
		cfg.SendGrid.FromEmail,
		cfg.SendGrid.FromName,
	)
	reconciler := service.NewPaymentReconciler(
		store.BookingRepository,
		store.PropertyRepository,
		store.NotificationRepository,
		emailSvc,
		classifier,
	)
	bookingSvc := service.NewBookingService(
		store.BookingRepository,
		store.PropertyRepository,
		store.UserRepository,
		store.NotificationRepository,
		emailSvc,
		gatewayClient,
		reconciler,
		time.Duration(cfg.Booking.HoldMinutes)*time.Minute,
	)
	noteSvc := service.NewNotificationService(store.NotificationRepository)

	// Set up HTTP server
	router := httpapi.NewRouter(bookingSvc, noteSvc, reconciler, tokenManager, cfg.Gateway.WebhookSecret)

	logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
	if err := http.ListenAndServe(cfg.GetServerAddress(), router); err != nil {
		logger.Error("HTTP server failed", "error", err)
		log.Fatalf("HTTP server failed: %v", err)
	}
}
