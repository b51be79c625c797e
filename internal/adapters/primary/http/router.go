package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	mw "github.com/lorrc/event-board/internal/adapters/primary/http/middleware"
	wsAdapter "github.com/lorrc/event-board/internal/adapters/primary/websocket"
	"github.com/lorrc/event-board/internal/config"
	"github.com/lorrc/event-board/internal/core/livecomments"
	"github.com/lorrc/event-board/internal/core/ports"
	"github.com/lorrc/event-board/internal/infrastructure/metrics"
)

// RouterDeps holds everything the API router serves.
type RouterDeps struct {
	Config   *config.Config
	Logger   *slog.Logger
	Events   ports.EventService
	Comments ports.CommentService
	Sessions ports.SessionService
	// NewSession builds the live comment session of one WebSocket connection.
	NewSession func(opts ...livecomments.Option) *livecomments.Session
	Health     *HealthHandler
	Metrics    *metrics.Metrics // nil disables /metrics and request metrics
}

// NewRouter wires middleware and routes.
func NewRouter(d RouterDeps) http.Handler {
	cfg := d.Config
	logger := d.Logger

	errorHandler := NewErrorHandler(logger)

	// Rate limiters
	var generalRateLimiter, commentRateLimiter *mw.RateLimiter
	var wsCommentLimiter wsAdapter.Limiter
	if cfg.RateLimit.Enabled {
		generalRateLimiter = mw.NewRateLimiter(mw.RateLimiterConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			BurstSize:         cfg.RateLimit.BurstSize,
			CleanupInterval:   time.Minute,
			TTL:               3 * time.Minute,
		}).WithErrorWriter(errorHandler.Handle)
		commentRateLimiter = mw.NewRateLimiter(mw.CommentRateLimiterConfig(
			cfg.RateLimit.CommentRPS,
			cfg.RateLimit.CommentBurst,
		)).WithErrorWriter(errorHandler.Handle)
		wsCommentLimiter = mw.NewRateLimitByKey(cfg.RateLimit.CommentRPS, cfg.RateLimit.CommentBurst)
	}

	var submitLimiter func(http.Handler) http.Handler
	if commentRateLimiter != nil {
		submitLimiter = commentRateLimiter.Middleware
	}
	commentHandler := NewCommentHandler(d.Comments, submitLimiter, errorHandler, logger)
	eventHandler := NewEventHandler(d.Events, commentHandler, errorHandler, logger)

	wsHandler := NewWebSocketHandler(d.NewSession, wsCommentLimiter, cfg, logger)

	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.RequestLogger(logger))
	r.Use(mw.RecoveryLogger(logger))
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", mw.RequestIDHeader},
		ExposedHeaders:   []string{mw.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	if generalRateLimiter != nil {
		r.Use(generalRateLimiter.Middleware)
	}

	// Health check and metrics endpoints (outside /api/v1 for standard probe paths)
	if d.Health != nil {
		d.Health.RegisterRoutes(r)
	}
	if d.Metrics != nil {
		r.Method(http.MethodGet, cfg.Metrics.Path, d.Metrics.Handler())
	}

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.CurrentUser(d.Sessions, logger))

		r.Route("/events", eventHandler.RegisterRoutes)

		// Detail views are open to anonymous visitors
		r.Get("/ws", wsHandler.ServeHTTP)
	})

	return r
}
