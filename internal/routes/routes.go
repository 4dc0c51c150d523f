package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/pharmatchapp/pharmatch-backend/internal/config"
	"github.com/pharmatchapp/pharmatch-backend/internal/handlers"
	"github.com/pharmatchapp/pharmatch-backend/internal/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	webhookHandler *handlers.WebhookHandler,
	swipeHandler *handlers.SwipeHandler,
	missionHandler *handlers.MissionHandler,
	offerHandler *handlers.OfferHandler,
	favoriteHandler *handlers.FavoriteHandler,
	subscriptionHandler *handlers.SubscriptionHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	// Health and metrics (public)
	api.Get("/health", healthHandler.Check)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Auth — public, with a stricter rate limit: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)

	// Protected routes (JWT required) - apply middleware per route so it
	// never touches the public ones
	jwt := middleware.JWTProtected(cfg)
	api.Post("/auth/logout", jwt, authHandler.Logout)
	api.Delete("/auth/account", jwt, authHandler.DeleteAccount)

	// Swipes and matches
	api.Post("/swipes", jwt, swipeHandler.Create)
	api.Get("/swipes/exclusions", jwt, swipeHandler.FeedExclusions)
	api.Get("/matches", jwt, swipeHandler.Matches)

	// Listings
	api.Post("/missions", jwt, missionHandler.Publish)
	api.Get("/missions", jwt, missionHandler.List)
	api.Get("/missions/:id/fee", jwt, missionHandler.FeePreview)
	api.Post("/missions/:id/confirm", jwt, missionHandler.Confirm)
	api.Post("/offers", jwt, offerHandler.Create)
	api.Get("/offers", jwt, offerHandler.List)

	// Favorites
	api.Post("/favorites", jwt, favoriteHandler.Add)
	api.Delete("/favorites/:target_id", jwt, favoriteHandler.Remove)
	api.Get("/favorites", jwt, favoriteHandler.List)

	// Billing and subscription
	api.Get("/subscription", jwt, subscriptionHandler.Status)
	api.Get("/invoices", jwt, missionHandler.Invoices)

	// Admin (protected + admin required)
	admin := api.Group("/admin", jwt, middleware.AdminRequired(db, cfg))
	admin.Put("/subscriptions/:user_id", subscriptionHandler.AdminSetTier)

	// Store webhook — shared-secret auth, no JWT
	api.Post("/webhooks/store", webhookHandler.HandleStoreEvent)
}
