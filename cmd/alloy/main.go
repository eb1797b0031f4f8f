package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MikeSquared-Agency/Alloy/internal/api"
	"github.com/MikeSquared-Agency/Alloy/internal/config"
	"github.com/MikeSquared-Agency/Alloy/internal/dataset"
	"github.com/MikeSquared-Agency/Alloy/internal/hermes"
	"github.com/MikeSquared-Agency/Alloy/internal/metrics"
	"github.com/MikeSquared-Agency/Alloy/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	envFile := flag.String("env-file", ".env", "optional dotenv file loaded before the config")
	flag.Parse()

	// A missing .env is normal outside local development.
	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to load %s: %v\n", *envFile, err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := cfg.Logging.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Dataset source
	var (
		source     dataset.Source
		sourceName string
	)
	switch cfg.Dataset.Source {
	case config.SourcePostgres:
		db, err := store.NewPostgresStore(ctx, cfg.Database.URL, cfg.Dataset.Density)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.EnsureSchema(ctx); err != nil {
			logger.Error("failed to ensure schema", "error", err)
			os.Exit(1)
		}
		logger.Info("connected to database")
		source, sourceName = db, config.SourcePostgres
	default:
		source = &dataset.ExcelSource{
			Path:        cfg.Dataset.Path,
			Sheet:       cfg.Dataset.Sheet,
			YieldColumn: cfg.Dataset.YieldColumn,
			UTSColumn:   cfg.Dataset.UTSColumn,
			GradeColumn: cfg.Dataset.GradeColumn,
			Density:     cfg.Dataset.Density,
			Logger:      logger,
		}
		sourceName = cfg.Dataset.Path
	}

	registry := dataset.NewRegistry(source, sourceName, logger)
	registry.OnLoad(func(cat *dataset.Catalog) {
		metrics.ObserveCatalog(cat.Len(), cat.Version)
	})

	// Hermes (optional)
	var hermesClient hermes.Client
	if cfg.Hermes.URL != "" {
		hc, err := hermes.NewNATSClient(ctx, cfg.Hermes.URL, logger)
		if err != nil {
			logger.Warn("failed to connect to hermes, running without events", "error", err)
		} else {
			hermesClient = hc
			defer hc.Close()
			logger.Info("connected to hermes")

			hermes.AnnounceLoads(hc, registry, logger)
			if err := hermes.HandleReloadRequests(ctx, hc, registry, logger); err != nil {
				logger.Warn("failed to subscribe to reload requests", "error", err)
			}
		}
	}

	// The service starts without a dataset; endpoints answer 503 until a
	// reload succeeds.
	if err := registry.Reload(ctx); err != nil {
		logger.Warn("initial dataset load failed", "error", err)
	}

	if cfg.Dataset.Source == config.SourceExcel && cfg.Dataset.Watch {
		go func() {
			if err := dataset.Watch(ctx, cfg.Dataset.Path, registry, logger); err != nil {
				logger.Warn("dataset watcher stopped", "path", cfg.Dataset.Path, "error", err)
			}
		}()
	}

	// API server
	router := api.NewRouter(registry, hermesClient, cfg.Selection, cfg.Server.AdminToken, cfg.RateLimit.RequestsPerMinute, logger)
	apiServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Metrics server
	metricsServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler:           api.NewMetricsRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("API server starting", "port", cfg.Server.Port)
		if err := apiServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("API server error", "error", err)
		}
	}()

	go func() {
		logger.Info("metrics server starting", "port", cfg.Server.MetricsPort)
		if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = apiServer.Shutdown(shutdownCtx)
	_ = metricsServer.Shutdown(shutdownCtx)

	logger.Info("shutdown complete")
}
