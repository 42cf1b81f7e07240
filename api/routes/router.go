package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/packfinderz-offers/api/controllers"
	"github.com/angelmondragon/packfinderz-offers/api/middleware"
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
	"github.com/angelmondragon/packfinderz-offers/pkg/redis"
)

// Services groups the domain services the API exposes.
type Services struct {
	Pricing  pricing.Service
	Quotes   quote.Service
	Settings settings.Service
	Checkout checkoutsvc.Service
	Offers   offers.Service
	Variants variants.Service
	DLQ      controllers.DLQLister
}

// NewRouter builds the HTTP surface. redisClient may be nil, which disables
// idempotency replay and rate limiting. gatherer serves /metrics when set.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	httpMetrics *metrics.HTTPMetrics,
	gatherer prometheus.Gatherer,
	svc Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Recoverer(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(cfg.HTTP.CORSOrigins),
	)

	var (
		idemStore redis.IdempotencyStore
		rateStore middleware.RateLimitStore
		redisDep  controllers.Pinger
	)
	if redisClient != nil {
		idemStore, rateStore, redisDep = redisClient, redisClient, redisClient
	}
	r.Use(middleware.Idempotency(idemStore, middleware.IdempotencyPolicy{
		DefaultTTL:  cfg.HTTP.IdempotencyTTL,
		CriticalTTL: cfg.HTTP.CommitIdempotencyTTL,
	}, logg))

	quotePolicy := middleware.NewRateLimitPolicy("quotes", cfg.HTTP.RateLimitWindow, cfg.HTTP.QuoteRateLimit)
	importPolicy := middleware.NewRateLimitPolicy("offers-import", cfg.HTTP.RateLimitWindow, cfg.HTTP.ImportRateLimit)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg,
			controllers.Dependency{Name: "db", Pinger: dbP},
			controllers.Dependency{Name: "redis", Pinger: redisDep},
		))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/pricing/snapshots", controllers.PricingSnapshots(svc.Pricing, logg))
		r.With(middleware.RateLimit(quotePolicy, rateStore, logg)).Post("/quotes", controllers.CreateQuote(svc.Quotes, logg))
		r.Get("/settings/pricing-markup", controllers.GetPricingMarkup(svc.Settings, logg))
		r.Post("/checkout/commit", controllers.CheckoutCommit(svc.Checkout, logg))
		r.Get("/checkout/orders/{orderId}", controllers.CheckoutOrder(svc.Checkout, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Put("/products/{productId}/variants", controllers.ReplaceVariants(svc.Variants, logg))
		r.Post("/products/{productId}/variants/validate", controllers.ValidateVariants(svc.Variants, logg))
		r.With(middleware.RateLimit(importPolicy, rateStore, logg)).Post("/offers/import", controllers.ImportOffers(svc.Offers, logg))
		r.Put("/settings/pricing-markup", controllers.UpdatePricingMarkup(svc.Settings, logg))
		r.Get("/outbox/dlq", controllers.AdminOutboxDLQ(svc.DLQ, logg))
	})

	return r
}
