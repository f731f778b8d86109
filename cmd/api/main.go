package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/clinmeta/cmdr-backend/api/routes"
	"github.com/clinmeta/cmdr-backend/internal/activities"
	"github.com/clinmeta/cmdr-backend/internal/codelists"
	"github.com/clinmeta/cmdr-backend/internal/forms"
	"github.com/clinmeta/cmdr-backend/internal/libraries"
	"github.com/clinmeta/cmdr-backend/internal/repo"
	"github.com/clinmeta/cmdr-backend/internal/terms"
	"github.com/clinmeta/cmdr-backend/pkg/config"
	"github.com/clinmeta/cmdr-backend/pkg/db"
	"github.com/clinmeta/cmdr-backend/pkg/env"
	"github.com/clinmeta/cmdr-backend/pkg/logger"
	"github.com/clinmeta/cmdr-backend/pkg/metrics"
	"github.com/clinmeta/cmdr-backend/pkg/migrate"
	"github.com/clinmeta/cmdr-backend/pkg/redis"
)

const shutdownGrace = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	lifecycle := metrics.NewLifecycleMetrics(registry)

	libraryRepo := libraries.NewRepository(dbClient.DB())
	codelistRepo := codelists.NewRepository(dbClient.DB())
	termRepo := terms.NewRepository(dbClient.DB())
	activityRepo := activities.NewRepository(dbClient.DB())
	formRepo := forms.NewRepository(dbClient.DB())

	libraryService, err := libraries.NewService(libraryRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create library service", err)
		os.Exit(1)
	}

	ttl := cfg.Cache.AggregateTTL
	codelistService, err := codelists.NewService(codelistRepo, dbClient, libraryService,
		repo.NewAggregateCache(redisClient, "codelist", ttl), lifecycle)
	if err != nil {
		logg.Error(context.Background(), "failed to create codelist service", err)
		os.Exit(1)
	}

	termService, err := terms.NewService(termRepo, dbClient, libraryService, codelistRepo,
		repo.NewAggregateCache(redisClient, "term", ttl), lifecycle)
	if err != nil {
		logg.Error(context.Background(), "failed to create term service", err)
		os.Exit(1)
	}

	activityService, err := activities.NewService(activityRepo, dbClient, libraryService, termRepo,
		repo.NewAggregateCache(redisClient, "activity", ttl), lifecycle)
	if err != nil {
		logg.Error(context.Background(), "failed to create activity service", err)
		os.Exit(1)
	}

	formService, err := forms.NewService(formRepo, dbClient, libraryService,
		repo.NewAggregateCache(redisClient, "form", ttl), lifecycle)
	if err != nil {
		logg.Error(context.Background(), "failed to create form service", err)
		os.Exit(1)
	}

	addr := ":" + env.Get("PORT", cfg.App.Port)
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, registry, routes.Services{
			Libraries:  libraryService,
			Codelists:  codelistService,
			Terms:      termService,
			Activities: activityService,
			Forms:      formService,
		}),
	}

	stopCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-stopCtx.Done():
		logg.Info(ctx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
