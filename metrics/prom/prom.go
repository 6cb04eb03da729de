// Package prom exports cache metrics to Prometheus.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mkonda/scancache/cache"
)

// Adapter implements cache.Metrics and exports Prometheus counters/gauges.
// Safe for concurrent use; all Prometheus metric types are goroutine-safe.
type Adapter struct {
	hits        *prometheus.CounterVec
	misses      prometheus.Counter
	puts        prometheus.Counter
	invalidated prometheus.Counter
	sizeEnt     prometheus.Gauge
}

// New constructs a Prometheus metrics adapter.
//   - reg:          registry to register metrics with (nil => prometheus.DefaultRegisterer)
//   - ns, sub:      Prometheus namespace and subsystem
//   - constLabels:  static labels applied to all metrics (may be nil)
func New(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	a := &Adapter{
		hits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   sub,
				Name:        "hits_total",
				Help:        "Cache hits by tier",
				ConstLabels: constLabels,
			},
			[]string{"tier"},
		),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "misses_total",
			Help:        "Cache misses",
			ConstLabels: constLabels,
		}),
		puts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "puts_total",
			Help:        "Cache stores",
			ConstLabels: constLabels,
		}),
		invalidated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "invalidations_total",
			Help:        "Memory entries rejected on content hash mismatch",
			ConstLabels: constLabels,
		}),
		sizeEnt: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "size_entries",
			Help:        "Number of resident memory tier entries",
			ConstLabels: constLabels,
		}),
	}
	reg.MustRegister(a.hits, a.misses, a.puts, a.invalidated, a.sizeEnt)
	return a
}

// Hit increments the hit counter with a tier label.
func (a *Adapter) Hit(t cache.Tier) { a.hits.WithLabelValues(tier(t)).Inc() }

// Miss increments the miss counter.
func (a *Adapter) Miss() { a.misses.Inc() }

// Put increments the store counter.
func (a *Adapter) Put() { a.puts.Inc() }

// Invalidated increments the hash mismatch counter.
func (a *Adapter) Invalidated() { a.invalidated.Inc() }

// Size updates the memory tier entry gauge.
func (a *Adapter) Size(entries int) { a.sizeEnt.Set(float64(entries)) }

// tier maps cache.Tier to a stable label value.
func tier(t cache.Tier) string {
	switch t {
	case cache.TierDisk:
		return "disk"
	default:
		return "memory"
	}
}

// Compile-time check: ensure Adapter implements cache.Metrics.
var _ cache.Metrics = (*Adapter)(nil)
