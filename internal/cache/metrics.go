package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	reasonExpired = "expired"
	reasonDeleted = "deleted"
	reasonPattern = "pattern"
	reasonTag     = "tag"
)

// Metrics holds the cache's Prometheus counters. A nil *Metrics records nothing.
type Metrics struct {
	Hits      prometheus.Counter
	Misses    prometheus.Counter
	Evictions *prometheus.CounterVec
}

// NewMetrics registers the cache counters with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Hits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Cache lookups served from memory.",
		}),
		Misses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Cache lookups that found no fresh entry.",
		}),
		Evictions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "cache",
			Name:      "evictions_total",
			Help:      "Entries removed from the cache, by reason.",
		}, []string{"reason"}),
	}
}

func (m *Metrics) hit() {
	if m != nil {
		m.Hits.Inc()
	}
}

func (m *Metrics) miss() {
	if m != nil {
		m.Misses.Inc()
	}
}

func (m *Metrics) evicted(reason string, n int) {
	if m != nil && n > 0 {
		m.Evictions.WithLabelValues(reason).Add(float64(n))
	}
}
