package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/joho/godotenv"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/pharmatchapp/pharmatch-backend/internal/cache"
	"github.com/pharmatchapp/pharmatch-backend/internal/config"
	"github.com/pharmatchapp/pharmatch-backend/internal/database"
	"github.com/pharmatchapp/pharmatch-backend/internal/handlers"
	"github.com/pharmatchapp/pharmatch-backend/internal/logging"
	"github.com/pharmatchapp/pharmatch-backend/internal/middleware"
	"github.com/pharmatchapp/pharmatch-backend/internal/notify"
	"github.com/pharmatchapp/pharmatch-backend/internal/routes"
	"github.com/pharmatchapp/pharmatch-backend/internal/services"
)

func main() {
	_ = godotenv.Load()

	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(database.DB)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		pgLogHandler,
	)))

	// Log cleanup (30-day retention)
	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cleanupDone)

	// Redis swipe cache
	redisCache := cache.NewRedisCache(cfg)

	// Push notification dispatch via RabbitMQ; fall back to a no-op when no
	// broker is configured.
	var notifier notify.Notifier = notify.Nop{}
	var amqpNotifier *notify.AMQPNotifier
	if cfg.AMQPURL != "" {
		amqpNotifier = notify.NewAMQPNotifier(cfg.AMQPURL)
		notifier = amqpNotifier
	}

	// Services
	authService := services.NewAuthService(database.DB, cfg)
	subscriptionService := services.NewSubscriptionService(database.DB)
	usageService := services.NewUsageService(database.DB)
	quotaService := services.NewQuotaService(database.DB, subscriptionService, usageService)
	matchService := services.NewMatchService(database.DB)
	swipeService := services.NewSwipeService(database.DB, redisCache, quotaService, matchService, notifier)
	listingService := services.NewListingService(database.DB, quotaService)
	invoiceService := services.NewInvoiceService(database.DB)
	feeService := services.NewFeeService(database.DB, subscriptionService, quotaService, usageService, invoiceService, notifier)
	favoriteService := services.NewFavoriteService(database.DB, subscriptionService, usageService)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	healthHandler := handlers.NewHealthHandler()
	webhookHandler := handlers.NewWebhookHandler(subscriptionService, cfg)
	swipeHandler := handlers.NewSwipeHandler(swipeService, matchService)
	missionHandler := handlers.NewMissionHandler(listingService, feeService, invoiceService)
	offerHandler := handlers.NewOfferHandler(listingService)
	favoriteHandler := handlers.NewFavoriteHandler(favoriteService)
	subscriptionHandler := handlers.NewSubscriptionHandler(subscriptionService, quotaService)

	// Sentry error tracking
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      os.Getenv("APP_ENV"),
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    4 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	// Routes
	routes.Setup(app, cfg, database.DB,
		authHandler, healthHandler, webhookHandler,
		swipeHandler, missionHandler, offerHandler,
		favoriteHandler, subscriptionHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	close(cleanupDone)
	pgLogHandler.Stop()
	if amqpNotifier != nil {
		amqpNotifier.Close()
	}
	sentry.Flush(2 * time.Second)

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	// Close database connections
	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
