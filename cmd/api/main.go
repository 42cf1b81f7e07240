package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/angelmondragon/packfinderz-offers/api/routes"
	checkoutsvc "github.com/angelmondragon/packfinderz-offers/internal/checkout"
	"github.com/angelmondragon/packfinderz-offers/internal/offers"
	"github.com/angelmondragon/packfinderz-offers/internal/pricing"
	"github.com/angelmondragon/packfinderz-offers/internal/quote"
	"github.com/angelmondragon/packfinderz-offers/internal/settings"
	"github.com/angelmondragon/packfinderz-offers/internal/variants"
	"github.com/angelmondragon/packfinderz-offers/pkg/config"
	"github.com/angelmondragon/packfinderz-offers/pkg/db"
	"github.com/angelmondragon/packfinderz-offers/pkg/logger"
	"github.com/angelmondragon/packfinderz-offers/pkg/metrics"
	"github.com/angelmondragon/packfinderz-offers/pkg/migrate"
	"github.com/angelmondragon/packfinderz-offers/pkg/outbox"
	"github.com/angelmondragon/packfinderz-offers/pkg/redis"
)

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

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	} else {
		logg.Warn(context.Background(), "redis not configured, idempotency and rate limits disabled")
	}

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	pricingMetrics := metrics.NewPricingMetrics(promRegistry)

	services, err := buildServices(cfg, logg, dbClient, redisClient, pricingMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})

	server := &http.Server{
		Addr:         addr,
		Handler:      routes.NewRouter(cfg, logg, dbClient, redisClient, metrics.NewHTTPMetrics(promRegistry), promRegistry, services),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
	}

	logg.Info(ctx, "api server shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(ctx, "api server shutdown failed", err)
	}
}

func buildServices(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client, pricingMetrics *metrics.PricingMetrics) (routes.Services, error) {
	conn := dbClient.DB()
	offersRepo := offers.NewRepository(conn)
	outboxSvc := outbox.NewService(outbox.NewRepository(conn), logg)

	settingsSvc, err := settings.NewService(settings.NewRepository(conn), cfg.Pricing.DefaultMarkup(), logg)
	if err != nil {
		return routes.Services{}, err
	}

	pricingSvc, err := pricing.NewService(offersRepo, settingsSvc)
	if err != nil {
		return routes.Services{}, err
	}

	quoteSvc, err := quote.NewService(quote.ServiceParams{
		Offers:      offersRepo,
		Markup:      settingsSvc,
		Currency:    cfg.Pricing.Currency,
		SharedStock: cfg.Pricing.SharedStock,
		MaxItems:    cfg.Pricing.MaxQuoteItems,
		Metrics:     pricingMetrics,
		Logger:      logg,
	})
	if err != nil {
		return routes.Services{}, err
	}

	checkoutSvc, err := checkoutsvc.NewService(checkoutsvc.ServiceParams{
		Quotes:                quoteSvc,
		DB:                    dbClient,
		Orders:                checkoutsvc.NewRepository(conn),
		Outbox:                outboxSvc,
		DriftTolerancePercent: cfg.Pricing.DriftTolerance(),
		Metrics:               pricingMetrics,
		Logger:                logg,
	})
	if err != nil {
		return routes.Services{}, err
	}

	importParams := offers.ServiceParams{
		Repo:    offersRepo,
		DB:      dbClient,
		Outbox:  outboxSvc,
		Metrics: pricingMetrics,
		Logger:  logg,
	}
	if redisClient != nil {
		importParams.Locker = redisClient
	}
	offersSvc, err := offers.NewService(importParams)
	if err != nil {
		return routes.Services{}, err
	}

	variantsSvc, err := variants.NewService(variants.NewRepository(conn), offersRepo, dbClient, logg)
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Pricing:  pricingSvc,
		Quotes:   quoteSvc,
		Settings: settingsSvc,
		Checkout: checkoutSvc,
		Offers:   offersSvc,
		Variants: variantsSvc,
		DLQ:      outbox.NewDLQRepository(conn),
	}, nil
}
