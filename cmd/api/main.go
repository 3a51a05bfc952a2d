package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/green-harvest/harvest-backend/config"
	"github.com/green-harvest/harvest-backend/internal/bootstrap"
	"github.com/green-harvest/harvest-backend/internal/logger"
	"github.com/green-harvest/harvest-backend/internal/marketplace/catalog"
	"github.com/green-harvest/harvest-backend/internal/marketplace/service"
	"github.com/green-harvest/harvest-backend/internal/marketplace/stats"
)

const serviceName = "harvest-api"

func main() {
	boot := logger.New(os.Getenv("APP_ENV"), os.Getenv("LOG_LEVEL"))
	cfg, err := config.Load(boot)
	if err != nil {
		boot.Fatal().Err(err).Msg("invalid configuration")
	}

	log := logger.New(cfg.App.Environment, cfg.App.LogLevel)
	bootstrap.SetGinMode(cfg.App.Environment)

	ctx := context.Background()

	storage, err := bootstrap.OpenStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Storage.Backend).Msg("failed to open storage")
	}
	defer storage.Close()

	cat, err := catalog.Open(ctx, storage.KV,
		catalog.WithPublisher(storage.Events),
		catalog.WithLogger(log),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load catalog")
	}

	svc := service.NewMarketplaceService(storage.KV, cat, service.Options{
		SessionTTL: cfg.Storage.SessionTTL,
		Subscriber: storage.Events,
		Logger:     log,
	})

	reporter := stats.NewReporter(cat, log)
	if err := reporter.Start(cfg.App.StatsCron); err != nil {
		log.Fatal().Err(err).Msg("failed to start stats reporter")
	}

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:    serviceName,
		Version:        cfg.App.Version,
		Storage:        storage.KV,
		Marketplace:    svc,
		Logger:         log,
		CORSOrigins:    cfg.Server.CORSOrigins,
		RateLimitRPS:   cfg.RateLimit.RPS,
		RateLimitBurst: cfg.RateLimit.Burst,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().
			Str("port", cfg.Server.Port).
			Str("backend", cfg.Storage.Backend).
			Str("env", cfg.App.Environment).
			Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	<-reporter.Stop().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server stopped")
}
