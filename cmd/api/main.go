// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Impulsa dashboard service.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to Redis.
//  4. Load the token verification key.
//  5. Build the upstream client, query cache and mutation coordinator.
//  6. Wire HTTP handlers and per-user sessions.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taibuivan/impulsa/internal/api"
	"github.com/taibuivan/impulsa/internal/core/initiative"
	"github.com/taibuivan/impulsa/internal/core/postulation"
	"github.com/taibuivan/impulsa/internal/platform/config"
	"github.com/taibuivan/impulsa/internal/platform/constants"
	"github.com/taibuivan/impulsa/internal/platform/mutation"
	"github.com/taibuivan/impulsa/internal/platform/querycache"
	redisstore "github.com/taibuivan/impulsa/internal/platform/redis"
	"github.com/taibuivan/impulsa/internal/platform/sec"
	"github.com/taibuivan/impulsa/internal/platform/upstream"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", "impulsa"))
	slog.SetDefault(log)

	log.Info("[Impulsa] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", "impulsa"))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("upstream", cfg.UpstreamURL),
	)

	// Application context: cancelled on shutdown, stops background loops.
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	startupCtx, startupCancel := context.WithTimeout(appCtx, 30*time.Second)
	defer startupCancel()

	// ── 3. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 4. Token Verification ─────────────────────────────────────────────
	verifier, err := sec.NewTokenVerifier(cfg.JWTPubKeyPath, cfg.JWTIssuer)
	must(log, err, "load token verification key")

	// ── 5. Engine ─────────────────────────────────────────────────────────
	location, err := cfg.Location()
	must(log, err, "load display timezone")

	deriver, err := postulation.NewDeriver(cfg.Locale, location)
	must(log, err, "initialize deriver")

	client := upstream.NewClient(upstream.Options{
		BaseURL: cfg.UpstreamURL,
		RPS:     cfg.UpstreamRPS,
		Burst:   cfg.UpstreamBurst,
	})
	cache := querycache.New(log)
	go cache.Run(appCtx, constants.SessionCleanupInterval, cfg.SessionTTL)
	coordinator := mutation.NewCoordinator(cache, nil)

	// ── 6. Domain Wiring ──────────────────────────────────────────────────
	sessions := api.NewSessions(cfg.SessionTTL, cfg.AdminPageSize, log)
	go sessions.Run(appCtx, constants.SessionCleanupInterval)

	initiativeService := initiative.NewService(
		initiative.NewRemoteRepository(client), cache, coordinator, cfg.FanoutLimit, log,
	)
	postulationService := postulation.NewService(postulation.Options{
		Repository:    postulation.NewRemoteRepository(client),
		Initiatives:   initiativeService,
		Applied:       postulation.NewRedisAppliedStore(rdb, cfg.AppliedTTL),
		Cache:         cache,
		Coordinator:   coordinator,
		Deriver:       deriver,
		FallbackImage: cfg.FallbackImage,
		FanoutLimit:   cfg.FanoutLimit,
		Logger:        log,
	})

	liveness, readiness := api.NewHealthHandlers([]api.HealthCheck{
		{Name: "redis", Check: func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) }},
	}, log)

	handlers := api.Handlers{
		Liveness:      liveness,
		Readiness:     readiness,
		Notifications: api.NewNotificationsHandler(sessions),
		Initiative:    initiative.NewHandler(initiativeService, sessions, cfg.AdminPageSize),
		Postulation:   postulation.NewHandler(postulationService, sessions),
	}

	// ── 7. HTTP Server ────────────────────────────────────────────────────
	server := api.NewServer(appCtx, cfg, log, verifier, handlers)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned and
// handled explicitly.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
