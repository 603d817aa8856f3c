package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/openwork-hackathon/team-moltroulette/internal/api"
	"github.com/openwork-hackathon/team-moltroulette/internal/auth"
	"github.com/openwork-hackathon/team-moltroulette/internal/config"
	"github.com/openwork-hackathon/team-moltroulette/internal/core"
	"github.com/openwork-hackathon/team-moltroulette/internal/eligibility"
	"github.com/openwork-hackathon/team-moltroulette/internal/store"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Logger()
	} else {
		logger = zerolog.New(os.Stdout).
			With().
			Timestamp().
			Logger()
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Optional Redis: shared tokens, eligibility cache, HTTP rate limits
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		var err error
		redisClient, err = store.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connection failed")
		}
		defer redisClient.Close()
		logger.Info().Msg("connected to Redis")
	}

	// Optional agent archive: postgres first, sqlite fallback
	var archive store.Archive
	if cfg.DatabaseURL != "" {
		pg, err := store.NewPostgresArchive(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres connection failed")
		}
		archive = pg
		logger.Info().Msg("connected to PostgreSQL")
	} else if cfg.SQLitePath != "" {
		lite, err := store.NewSQLiteArchive(ctx, cfg.SQLitePath)
		if err != nil {
			logger.Fatal().Err(err).Msg("sqlite open failed")
		}
		archive = lite
		logger.Info().Str("path", cfg.SQLitePath).Msg("opened SQLite archive")
	}
	if archive != nil {
		defer archive.Close()
	}

	// Elite eligibility: on-chain check behind a bounded-TTL cache, or a
	// permissive static checker when no RPC endpoint is configured.
	var checker eligibility.Checker
	if cfg.EliteRPCURL != "" && cfg.EliteTokenAddress != "" {
		checker = eligibility.NewCache(
			eligibility.NewChainChecker(cfg.EliteRPCURL, cfg.EliteTokenAddress, cfg.EliteMinBalance),
			redisClient,
			cfg.EliteCacheTTL,
		)
	} else {
		logger.Warn().Msg("no elite RPC configured, elite queue open to any wallet")
		checker = eligibility.Static(true)
	}

	// The matchmaking engine: all state in-memory, constructed once
	engine := core.NewEngine(core.Config{
		RateLimit:    cfg.RateLimit,
		QueueTimeout: cfg.QueueTimeout,
		RoomTimeout:  cfg.RoomTimeout,
		Visibility:   cfg.Visibility,
		BlockTTL:     cfg.BlockTTL,
	}, checker)

	// Restore archived agent profiles
	if archive != nil {
		agents, err := archive.LoadAgents(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("agent archive load failed")
		}
		for _, a := range agents {
			engine.Directory.Restore(a)
		}
		if len(agents) > 0 {
			logger.Info().Int("agents", len(agents)).Msg("restored agents from archive")
		}
	}

	// Token store: Redis when available, otherwise in-process
	var tokens auth.TokenStore
	if redisClient != nil {
		tokens = auth.NewRedisStore(redisClient)
	} else {
		tokens = auth.NewMemoryStore()
	}

	// Background lifecycle sweeper
	sweeper := core.NewSweeper(engine, cfg.SweepInterval, logger)
	go sweeper.Run(ctx)

	// Create router
	router := api.NewRouter(logger, cfg, engine, tokens, redisClient, archive)

	// Create server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Msg("starting MoltRoulette server")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server...")
	stop()

	// Graceful shutdown with 30 second timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server stopped")
}
