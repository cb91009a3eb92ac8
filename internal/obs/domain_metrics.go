package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// PriceResolutionsTotal counts price resolutions by provenance and outcome.
	PriceResolutionsTotal *prometheus.CounterVec
	// CartPricingsTotal counts cart pricing aggregations by outcome.
	CartPricingsTotal *prometheus.CounterVec
	// AmbiguousContractTotal counts contract lookups that found more than one
	// active record for the same customer/product key.
	AmbiguousContractTotal prometheus.Counter
	// ResolutionLatency records price resolution latency in milliseconds.
	ResolutionLatency prometheus.Histogram
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		PriceResolutionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "price_resolutions_total",
			Help:      "Count of price resolutions by pricing source and outcome.",
		}, []string{"source", "result"})
		CartPricingsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_pricings_total",
			Help:      "Count of cart pricing aggregations by outcome.",
		}, []string{"result"})
		AmbiguousContractTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ambiguous_contract_total",
			Help:      "Number of contract lookups that matched more than one active record.",
		})
		ResolutionLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "price_resolution_duration_ms",
			Help:      "Latency for single price resolutions in milliseconds.",
			Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250, 500},
		})

		mustRegisterCollector(reg, PriceResolutionsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				PriceResolutionsTotal = v
			}
		})
		mustRegisterCollector(reg, CartPricingsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CartPricingsTotal = v
			}
		})
		mustRegisterCollector(reg, AmbiguousContractTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				AmbiguousContractTotal = v
			}
		})
		mustRegisterCollector(reg, ResolutionLatency, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Histogram); ok {
				ResolutionLatency = v
			}
		})
	})
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
