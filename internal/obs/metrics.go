package obs

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PricingMetrics groups Prometheus collectors for the pricing engine. A nil *PricingMetrics
// records nothing.
type PricingMetrics struct {
	Quotes            prometheus.Counter
	QuoteDur          prometheus.Histogram
	Groups            *prometheus.CounterVec
	PromotionSelected *prometheus.CounterVec
	ResultClamped     *prometheus.CounterVec
}

// NewPricingMetrics registers and returns pricing collectors. Collectors already registered on
// reg are reused.
func NewPricingMetrics(namespace string, reg prometheus.Registerer) *PricingMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &PricingMetrics{
		Quotes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pricing_quotes_total",
			Help:      "Total number of cart quotes computed.",
		}),
		QuoteDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pricing_quote_duration_ms",
			Help:      "Cart quote latency in milliseconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		Groups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pricing_groups_total",
			Help:      "Product groups priced, by whether a promotion was applied.",
		}, []string{"result"}),
		PromotionSelected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pricing_promotion_selected_total",
			Help:      "Promotions selected as the best offer for a group, by kind.",
		}, []string{"kind"}),
		ResultClamped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pricing_custom_result_clamped_total",
			Help:      "Promotion results outside [0, list total] that were clamped, by bound.",
		}, []string{"bound"}),
	}
	mustRegisterCollector(reg, m.Quotes, func(existing prometheus.Collector) {
		if v, ok := existing.(prometheus.Counter); ok {
			m.Quotes = v
		}
	})
	mustRegisterCollector(reg, m.QuoteDur, func(existing prometheus.Collector) {
		if v, ok := existing.(prometheus.Histogram); ok {
			m.QuoteDur = v
		}
	})
	for _, vec := range []**prometheus.CounterVec{&m.Groups, &m.PromotionSelected, &m.ResultClamped} {
		target := vec
		mustRegisterCollector(reg, *target, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				*target = v
			}
		})
	}
	return m
}

// ObserveQuote records one computed quote and its latency.
func (m *PricingMetrics) ObserveQuote(d time.Duration) {
	if m == nil {
		return
	}
	m.Quotes.Inc()
	m.QuoteDur.Observe(DurationMillis(d))
}

// ObserveGroup records a priced group; discounted reports whether a promotion was applied.
func (m *PricingMetrics) ObserveGroup(discounted bool, kind string) {
	if m == nil {
		return
	}
	if !discounted {
		m.Groups.WithLabelValues("list_price").Inc()
		return
	}
	m.Groups.WithLabelValues("discounted").Inc()
	m.PromotionSelected.WithLabelValues(kind).Inc()
}

// ObserveClamp records a promotion result that was forced back into range.
func (m *PricingMetrics) ObserveClamp(bound string) {
	if m == nil {
		return
	}
	m.ResultClamped.WithLabelValues(bound).Inc()
}

// DurationMillis converts a duration to milliseconds for metric observation.
func DurationMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register pricing metric: %w", err))
	}
}
