// Copyright (c) 2026 Hellomouse. All rights reserved.

/*
Api is the entry point for the Hellomouse Apps boards/pins API server.

The server provides a multi-tenant HTTP backend for boards, pins, tags,
links, music playlists, and file uploads, all gated behind a
five-level permission model.

Usage:

	go run cmd/api/main.go

The environment variables are documented in
[github.com/hellomouse/hellomouse-apps-api/internal/platform/config].

Startup Sequence:

 1. Logger: Initialize structured JSON logging (slog).
 2. Config: Load and validate environment variables.
 3. Storage: Establish connections to Postgres and Redis.
 4. Migration: Run idempotent schema updates.
 5. Wiring: Inject dependencies into domain services/handlers.
 6. Server: Bind HTTP listener and handle graceful shutdown.

No business logic lives here. This file is strictly for orchestration and wiring.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hellomouse/hellomouse-apps-api/internal/api"
	"github.com/hellomouse/hellomouse-apps-api/internal/board"
	"github.com/hellomouse/hellomouse-apps-api/internal/files"
	"github.com/hellomouse/hellomouse-apps-api/internal/jobqueue"
	"github.com/hellomouse/hellomouse-apps-api/internal/link"
	"github.com/hellomouse/hellomouse-apps-api/internal/music"
	"github.com/hellomouse/hellomouse-apps-api/internal/platform/config"
	"github.com/hellomouse/hellomouse-apps-api/internal/platform/constants"
	"github.com/hellomouse/hellomouse-apps-api/internal/platform/migration"
	pgstore "github.com/hellomouse/hellomouse-apps-api/internal/platform/postgres"
	"github.com/hellomouse/hellomouse-apps-api/internal/platform/ratelimit"
	redisstore "github.com/hellomouse/hellomouse-apps-api/internal/platform/redis"
	"github.com/hellomouse/hellomouse-apps-api/internal/platform/sanitize"
	"github.com/hellomouse/hellomouse-apps-api/internal/platform/sec"
	"github.com/hellomouse/hellomouse-apps-api/internal/platform/sessionkey"
	"github.com/hellomouse/hellomouse-apps-api/internal/users/account"
	"github.com/hellomouse/hellomouse-apps-api/internal/users/auth"
)

func main() {
	if err := run(); err != nil {
		slog.Error("application_startup_failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	// # 1. Logger
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries for trace correlation
	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("service_initializing")

	// # 2. Configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context for startup. A 30s deadline prevents the app from hanging.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// # 3. PostgreSQL
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseDSN(), log)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// # 4. Redis (login rate-limit sliding window)
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// # 5. Migrations
	if err := migration.RunUp(cfg.DatabaseDSN(), cfg.MigrationPath, log); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	// # 6. Session secret + token service
	sessionKey, err := sessionkey.Load()
	if err != nil {
		return fmt.Errorf("load session key: %w", err)
	}
	tokenSvc := sec.NewTokenService(sessionKey, constants.AuthIssuer)

	// # 7. Ensure upload directories exist.
	if err := os.MkdirAll(cfg.UserUploadsDir, 0o755); err != nil {
		return fmt.Errorf("create uploads dir: %w", err)
	}
	if err := os.MkdirAll(cfg.UserUploadsDirTmp, 0o755); err != nil {
		return fmt.Errorf("create uploads staging dir: %w", err)
	}

	// # 8. Health Wiring
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	// # 9. Auth + Account
	loginWindow := ratelimit.NewLoginWindow(rdb,
		time.Duration(cfg.LoginAttemptWindowSeconds)*time.Second,
		cfg.LoginAttemptMaxPerWindow)
	authStore := auth.NewStore(pool)
	authSvc := auth.NewService(authStore, loginWindow, tokenSvc, cfg.MaxPasswordLength,
		time.Duration(cfg.LoginCookieValidDurationSeconds)*time.Second, log)
	authHdl := auth.NewHandler(authSvc, time.Duration(cfg.LoginCookieValidDurationSeconds)*time.Second, cfg.IsProduction())

	accountSvc := account.NewService(authSvc)
	accountHdl := account.NewHandler(accountSvc)

	// # 10. Job queue (used by board preview, music song enqueue, and its
	// own site download/status routes).
	jobStore := jobqueue.NewStore(pool)
	jobSvc := jobqueue.NewService(jobStore, log)
	jobHdl := jobqueue.NewHandler(jobSvc)

	// # 11. Board / Pin / Tag
	sanitizePolicy := sanitize.NewPolicy()
	boardStore := board.NewStore(pool)
	boardSvc := board.NewService(boardStore, sanitizePolicy, log)
	boardHdl := board.NewHandler(boardSvc, jobSvc)

	// # 12. Link
	linkStore := link.NewStore(pool)
	linkSvc := link.NewService(linkStore, accountSvc, log)
	linkHdl := link.NewHandler(linkSvc)

	// # 13. Music
	musicStore := music.NewStore(pool)
	musicSvc := music.NewService(musicStore, jobSvc, cfg.MaxSongsInQueue, log)
	musicHdl := music.NewHandler(musicSvc)

	// # 14. Files
	fileStore := files.NewStore(pool)
	fileSvc := files.NewService(fileStore, cfg.UserUploadsDir, cfg.UserUploadsDirTmp, log)
	fileHdl := files.NewHandler(fileSvc)

	// # 15. API Assembly
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      authHdl,
		Account:   accountHdl,
		Board:     boardHdl,
		Link:      linkHdl,
		Music:     musicHdl,
		Files:     fileHdl,
		Site:      jobHdl,
	}

	// Create a background context for the whole application lifecycle
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	server := api.NewServer(appCtx, cfg, log, tokenSvc, handlers)

	// # 16. Lifecycle Handling
	shutdownErr := make(chan error, 1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			shutdownErr <- fmt.Errorf("http_server_crash: %w", err)
		}
	}()

	log.Info("api_running", slog.String("port", cfg.ServerPort))

	// Block until signal or error
	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-shutdownErr:
		return err
	}

	// Start Graceful Shutdown Sequence
	appCancel() // Signal background workers to stop

	log.Info("shutting_down_api_server", slog.Duration("timeout", constants.ShutdownTimeout))
	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		return fmt.Errorf("server_shutdown_failed: %w", err)
	}

	log.Info("graceful_shutdown_complete")
	return nil
}
