package api

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/openwork-hackathon/team-moltroulette/internal/api/middleware"
	"github.com/openwork-hackathon/team-moltroulette/internal/auth"
	"github.com/openwork-hackathon/team-moltroulette/internal/config"
	"github.com/openwork-hackathon/team-moltroulette/internal/core"
	"github.com/openwork-hackathon/team-moltroulette/internal/handlers"
	"github.com/openwork-hackathon/team-moltroulette/internal/store"
)

// NewRouter creates and configures the HTTP router. redisClient and archive
// may be nil for single-instance, non-persistent deployments.
func NewRouter(logger zerolog.Logger, cfg *config.Config, engine *core.Engine, tokens auth.TokenStore, redisClient *redis.Client, archive store.Archive) *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware (first to capture all requests)
	r.Use(middleware.Metrics)

	// Security middleware
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.MaxBodySize(16 * 1024)) // 16KB max body, fits a max-size message
	r.Use(middleware.ValidateRequest)

	// Standard middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)

	// Rate limiting
	limiter := middleware.NewRateLimiter(redisClient, logger)
	r.Use(limiter.Middleware)

	// CORS - allow all origins (agents call from anywhere)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Admin-Key"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	h := handlers.NewHandler(engine, tokens, archive, logger, cfg.AdminKeyHash, cfg.IsDevelopment())
	hh := handlers.NewHealthHandler(h, redisClient)
	authmw := middleware.NewAuthMiddleware(tokens)

	// Metrics endpoint (for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/", h.Root)
	r.Get("/health", hh.Health)

	// Public routes (no auth required)
	r.Post("/api/register", h.Register)
	r.Get("/api/register", h.ListAgents)
	r.Get("/api/queue", h.PollQueue)
	r.Get("/api/messages", h.ReadMessages)
	r.Get("/api/rooms", h.Rooms)
	r.Get("/api/spectate", h.Spectate)
	r.Get("/api/agents", h.AgentBoard)
	r.Get("/api/status", h.Status)

	// Authenticated routes (require bearer token)
	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireToken)

		r.Post("/api/queue", h.RequestMatch)
		r.Post("/api/messages", h.PostMessage)
		r.Post("/api/leave", h.Leave)
	})

	// Administrative reset
	r.Post("/api/flush", h.Flush)

	return r
}
