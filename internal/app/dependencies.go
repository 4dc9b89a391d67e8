package app

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/noah-isme/cart-pricing/internal/config"
	"github.com/noah-isme/cart-pricing/internal/health"
	"github.com/noah-isme/cart-pricing/internal/obs"
	"github.com/noah-isme/cart-pricing/internal/pricing"
	"github.com/noah-isme/cart-pricing/internal/promotion"
)

// Dependencies enumerates the services shared by the pricing entrypoints.
type Dependencies struct {
	Config          *config.Config
	Logger          zerolog.Logger
	MetricsRegistry *prometheus.Registry
	Metrics         *obs.PricingMetrics
	Registry        *promotion.Registry
}

// NewDependencies builds the metrics registry and the demo promotion registry. Promotions
// expire cfg.PromotionTTL after now.
func NewDependencies(cfg *config.Config, logger zerolog.Logger, now time.Time) (*Dependencies, error) {
	if cfg == nil {
		return nil, errors.New("app: config is required")
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	registry, err := DemoRegistry(now.Add(cfg.PromotionTTL))
	if err != nil {
		return nil, err
	}
	return &Dependencies{
		Config:          cfg,
		Logger:          logger,
		MetricsRegistry: reg,
		Metrics:         obs.NewPricingMetrics(cfg.MetricsNamespace, reg),
		Registry:        registry,
	}, nil
}

// NewCart returns an empty pricing engine bound to the shared registry.
func (d *Dependencies) NewCart() *pricing.Engine {
	return pricing.NewEngine(d.Registry,
		pricing.WithLogger(d.Logger),
		pricing.WithMetrics(d.Metrics),
	)
}

// OpsRouter serves health probes and Prometheus metrics.
func (d *Dependencies) OpsRouter() http.Handler {
	h := health.Handler{Checkers: []health.Checker{RegistryChecker{Registry: d.Registry}}}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(obs.RequestLogger{Logger: d.Logger}.Middleware)
	r.Get("/health/live", h.Live)
	r.Get("/health/ready", h.Ready)
	r.Handle("/metrics", promhttp.HandlerFor(d.MetricsRegistry, promhttp.HandlerOpts{Registry: d.MetricsRegistry}))
	return r
}

// RegistryChecker reports the promotion registry as ready once it holds at least one promotion.
type RegistryChecker struct {
	Registry *promotion.Registry
}

func (c RegistryChecker) Name() string { return "promotions" }

func (c RegistryChecker) Check() error {
	if c.Registry == nil || c.Registry.Len() == 0 {
		return errors.New("no promotions registered")
	}
	return nil
}
