// Package prom exports cache metrics to Prometheus.
package prom

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/embcache/embcache/cache"
)

// Adapter implements cache.Metrics and exports Prometheus counters/gauges.
// Safe for concurrent use; all Prometheus metric types are goroutine-safe.
type Adapter struct {
	hits      prometheus.Counter
	misses    prometheus.Counter
	evicts    *prometheus.CounterVec
	putFails  prometheus.Counter
	captured  prometheus.Counter
	sizeItems *prometheus.GaugeVec
	sizeBytes *prometheus.GaugeVec
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
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "hits_total",
			Help:        "Cache hits",
			ConstLabels: constLabels,
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "misses_total",
			Help:        "Cache misses",
			ConstLabels: constLabels,
		}),
		evicts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   sub,
				Name:        "evictions_total",
				Help:        "Rows removed, by reason (capacity, replace, delete)",
				ConstLabels: constLabels,
			},
			[]string{"reason"},
		),
		putFails: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "put_failures_total",
			Help:        "Rows rejected because the shard budget could not satisfy them",
			ConstLabels: constLabels,
		}),
		captured: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "evictions_captured_total",
			Help:        "Evicted rows recorded into an armed capture buffer",
			ConstLabels: constLabels,
		}),
		sizeItems: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   ns,
				Subsystem:   sub,
				Name:        "shard_items",
				Help:        "Resident rows per shard",
				ConstLabels: constLabels,
			},
			[]string{"shard"},
		),
		sizeBytes: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   ns,
				Subsystem:   sub,
				Name:        "shard_used_bytes",
				Help:        "Allocated payload bytes per shard",
				ConstLabels: constLabels,
			},
			[]string{"shard"},
		),
	}
	reg.MustRegister(a.hits, a.misses, a.evicts, a.putFails, a.captured, a.sizeItems, a.sizeBytes)
	return a
}

// Hit increments the hit counter.
func (a *Adapter) Hit() { a.hits.Inc() }

// Miss increments the miss counter.
func (a *Adapter) Miss() { a.misses.Inc() }

// Evict increments the eviction counter with a reason label.
func (a *Adapter) Evict(r cache.EvictReason) {
	a.evicts.WithLabelValues(r.String()).Inc()
}

// PutFailure increments the failed-insert counter.
func (a *Adapter) PutFailure() { a.putFails.Inc() }

// Captured increments the captured-eviction counter.
func (a *Adapter) Captured() { a.captured.Inc() }

// Size updates the per-shard residency gauges.
func (a *Adapter) Size(shard, items int, usedBytes int64) {
	s := strconv.Itoa(shard)
	a.sizeItems.WithLabelValues(s).Set(float64(items))
	a.sizeBytes.WithLabelValues(s).Set(float64(usedBytes))
}

// Compile-time check: ensure Adapter implements cache.Metrics.
var _ cache.Metrics = (*Adapter)(nil)
