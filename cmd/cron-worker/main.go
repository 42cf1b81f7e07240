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
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/packfinderz-offers/internal/cron"
	"github.com/angelmondragon/packfinderz-offers/internal/offers"
	"github.com/angelmondragon/packfinderz-offers/pkg/config"
	"github.com/angelmondragon/packfinderz-offers/pkg/db"
	"github.com/angelmondragon/packfinderz-offers/pkg/logger"
	"github.com/angelmondragon/packfinderz-offers/pkg/metrics"
	"github.com/angelmondragon/packfinderz-offers/pkg/migrate"
	"github.com/angelmondragon/packfinderz-offers/pkg/outbox"
	"github.com/angelmondragon/packfinderz-offers/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
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

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	registry, err := buildRegistry(cfg, logg, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to register maintenance jobs", err)
		os.Exit(1)
	}

	params := cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Metrics:  metrics.NewMaintenanceMetrics(promRegistry),
		Interval: cfg.Maintenance.Interval,
	}
	if cfg.Redis.Enabled() {
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
		params.Locker = redisClient
	}

	service, err := cron.NewService(params)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})

	if addr := cfg.Outbox.MetricsAddr; addr != "" {
		metricsServer := &http.Server{
			Addr:              addr,
			Handler:           promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logg.Error(ctx, "metrics server stopped", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = metricsServer.Shutdown(shutdownCtx)
		}()
	}

	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func buildRegistry(cfg *config.Config, logg *logger.Logger, dbClient *db.Client) (*cron.Registry, error) {
	conn := dbClient.DB()
	retention, err := cron.NewOutboxRetentionJob(cron.OutboxRetentionJobParams{
		Logger:       logg,
		DB:           dbClient,
		Events:       outbox.NewRepository(conn),
		DeadLetters:  outbox.NewDLQRepository(conn),
		Retention:    cfg.Maintenance.OutboxRetention,
		DLQRetention: cfg.Maintenance.DLQRetention,
	})
	if err != nil {
		return nil, err
	}
	registry, err := cron.NewRegistry(retention)
	if err != nil {
		return nil, err
	}

	if cfg.Maintenance.OfferMaxAge > 0 {
		expiry, err := cron.NewOfferExpiryJob(logg, offers.NewRepository(conn), cfg.Maintenance.OfferMaxAge)
		if err != nil {
			return nil, err
		}
		if err := registry.Register(expiry); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
