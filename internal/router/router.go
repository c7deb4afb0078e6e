package router

import (
	"github.com/gofiber/fiber/v3"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/himanshusingh9554/edumateai/internal/handler"
	"github.com/himanshusingh9554/edumateai/internal/metrics"
	"github.com/himanshusingh9554/edumateai/internal/middleware"
)

// Handlers holds all handler instances needed by the router.
type Handlers struct {
	Question *handler.QuestionHandler
	Video    *handler.VideoHandler
	Activity *handler.ActivityHandler
	Health   *handler.HealthHandler
}

// Setup configures the middleware stack and all API routes on the given Fiber app.
func Setup(app *fiber.App, h *Handlers, corsOrigins string) {
	// Middleware stack (order matters)
	app.Use(recoverer.New())
	app.Use(middleware.NewRequestLogger())
	app.Use(middleware.NewCORS(corsOrigins))
	app.Use(metrics.Middleware())

	// Probes and metrics (before API group, no auth needed)
	app.Get("/health/live", h.Health.Live)
	app.Get("/health/ready", h.Health.Ready)
	app.Get("/metrics", metrics.Handler())

	api := app.Group("/api")

	// Question routes. Asking is authenticated and model-call rate limited.
	askLimiter := middleware.NewAskRateLimiter()
	api.Post("/questions/ask", h.Question.Ask, middleware.RequireUser(), askLimiter.Handler())
	api.Get("/questions/video/:videoId", h.Question.ByVideo)

	// Video routes
	videoLimiter := middleware.NewVideoRateLimiter()
	api.Post("/videos", h.Video.Add, middleware.RequireUser())
	api.Get("/videos", h.Video.List, videoLimiter.Handler())
	api.Get("/videos/search/:query", h.Video.Search, videoLimiter.Handler())

	// Activity routes
	historyLimiter := middleware.NewHistoryRateLimiter()
	api.Get("/activity", h.Activity.History, middleware.RequireUser(), historyLimiter.Handler())
}
