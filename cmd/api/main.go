package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cresol/hub-api/internal/config"
	"github.com/cresol/hub-api/internal/pkg/database"
	"github.com/cresol/hub-api/internal/pkg/logger"
	"github.com/cresol/hub-api/internal/pkg/retry"
	"github.com/cresol/hub-api/internal/pkg/storage"
	"github.com/cresol/hub-api/internal/pkg/validator"
)

// notificationCleanupInterval is how often read notifications past the
// retention window are purged.
const notificationCleanupInterval = 6 * time.Hour

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})
	validator.SetCorporateDomain(cfg.CorporateEmailDomain)

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting Cresol Hub API")

	if cfg.RunMigrations {
		if err := database.MigrateUp(cfg.MigrationsPath, cfg.DatabaseURL); err != nil {
			log.Fatal().Err(err).Msg("Failed to run migrations")
		}
		log.Info().Msg("Migrations applied")
	}

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	redis, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redis)

	// Root context for background jobs
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := storage.Open(ctx, cfg.StorageDriver, cfg.S3(), cfg.StorageLocalPath)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("Failed to open object storage")
	}

	a := newApp(cfg, db, redis, store)

	go a.hub.Run()
	defer a.hub.Stop()

	sweeper := storage.NewSweeper(store, a.cleaner.Queue(), retry.Default)
	go sweeper.Start(ctx, cfg.SweepInterval)
	go a.notifCleanup.Start(ctx, notificationCleanupInterval)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      a.router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("HTTP server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
