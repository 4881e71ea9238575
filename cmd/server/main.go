// Package main is the entry point for the Spyglass analytics service. It
// serves portfolio risk metrics, sector rotation analysis, news sentiment
// and technical indicators over HTTP, backed by a sqlite result cache.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/aristath/spyglass/internal/cache"
	"github.com/aristath/spyglass/internal/config"
	"github.com/aristath/spyglass/internal/database"
	"github.com/aristath/spyglass/internal/history"
	"github.com/aristath/spyglass/internal/modules/indicators"
	"github.com/aristath/spyglass/internal/modules/risk"
	"github.com/aristath/spyglass/internal/modules/sectors"
	"github.com/aristath/spyglass/internal/modules/sentiment"
	"github.com/aristath/spyglass/internal/reliability"
	"github.com/aristath/spyglass/internal/scheduler"
	"github.com/aristath/spyglass/internal/server"
	"github.com/aristath/spyglass/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().
		Str("data_dir", cfg.DataDir).
		Int("port", cfg.Port).
		Bool("dev_mode", cfg.DevMode).
		Msg("Starting Spyglass")

	// History database holds raw inputs (daily prices, news articles); the
	// cache database holds computed results only. Losing the cache file
	// costs nothing but recomputation.
	historyDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "history.db"),
		Profile: database.ProfileStandard,
		Name:    "history",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open history database")
	}
	defer historyDB.Close()

	cacheDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "cache.db"),
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open cache database")
	}
	defer cacheDB.Close()

	cacheStore := cache.New(cacheDB.Conn(), log)
	if err := cacheStore.InitSchema(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize cache schema")
	}
	defer cacheStore.Close()

	priceStore := history.NewStore(historyDB.Conn(), log)
	if err := priceStore.InitSchema(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize history schema")
	}

	newsStore := sentiment.NewNewsStore(historyDB.Conn(), log)
	if err := newsStore.InitSchema(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize news schema")
	}

	// Engines
	riskEngine := risk.NewEngine(priceStore, cacheStore, cfg.BenchmarkTicker, cfg.RiskFreeRate, log)
	sectorEngine := sectors.NewEngine(priceStore, cacheStore, cfg.BenchmarkTicker, cfg.MomentumStrongThreshold, log)
	sentimentService := sentiment.NewService(newsStore, cacheStore, log)
	indicatorService := indicators.NewService(priceStore, cacheStore, log)

	// Background jobs
	sched := scheduler.New(log)
	databases := map[string]*database.DB{
		"history": historyDB,
		"cache":   cacheDB,
	}

	if err := sched.AddJob("@every 10m", cache.NewCleanupJob(cacheStore, log)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register cache cleanup job")
	}
	if err := sched.AddJob("30 2 * * *", reliability.NewMaintenanceJob(databases, log)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register maintenance job")
	}

	if cfg.Backup != nil && cfg.Backup.Enabled {
		s3Client, err := reliability.NewS3Client(
			context.Background(),
			cfg.Backup.Endpoint,
			cfg.Backup.AccessKeyID,
			cfg.Backup.SecretAccessKey,
			cfg.Backup.Bucket,
			log,
		)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create S3 client")
		}

		backupService := reliability.NewBackupService(s3Client, databases, cfg.DataDir, log)
		if err := sched.AddJob("0 3 * * *", reliability.NewBackupJob(backupService, cfg.Backup.RetentionDays)); err != nil {
			log.Fatal().Err(err).Msg("Failed to register backup job")
		}
	} else {
		log.Info().Msg("Cloud backups disabled (no credentials configured)")
	}

	sched.Start()
	defer sched.Stop()

	srv := server.New(server.Config{
		Log:        log,
		Config:     cfg,
		CacheDB:    cacheDB,
		HistoryDB:  historyDB,
		CacheStore: cacheStore,
		Risk:       risk.NewHandler(riskEngine, log),
		Sectors:    sectors.NewHandler(sectorEngine, log),
		Sentiment:  sentiment.NewHandler(sentimentService, log),
		Indicators: indicators.NewHandler(indicatorService, log),
	})

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.Error().Err(err).Msg("HTTP server failed")
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}

	log.Info().Msg("Spyglass stopped")
}
