package prom

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/embcache/embcache/cache"
)

func gatherValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		var total float64
		for _, m := range f.GetMetric() {
			total += m.GetCounter().GetValue() + m.GetGauge().GetValue()
		}
		return total
	}
	t.Fatalf("metric %s not found in registry", name)
	return 0
}

func TestAdapter_CountersAndGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := New(reg, "embcache", "l2", nil)

	a.Hit()
	a.Hit()
	a.Miss()
	a.Evict(cache.EvictCapacity)
	a.Evict(cache.EvictCapacity)
	a.Evict(cache.EvictReplace)
	a.PutFailure()
	a.Captured()
	a.Size(0, 7, 560)
	a.Size(1, 3, 240)

	checks := map[string]float64{
		"embcache_l2_hits_total":               2,
		"embcache_l2_misses_total":             1,
		"embcache_l2_evictions_total":          3,
		"embcache_l2_put_failures_total":       1,
		"embcache_l2_evictions_captured_total": 1,
		"embcache_l2_shard_items":              10,
		"embcache_l2_shard_used_bytes":         800,
	}
	for name, want := range checks {
		if got := gatherValue(t, reg, name); got != want {
			t.Errorf("%s = %v, want %v", name, got, want)
		}
	}
}

// The adapter wired into a live cache must count real traffic.
func TestAdapter_EndToEnd(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := New(reg, "embcache", "e2e", nil)

	c := cache.New(cache.Options{
		NumShards:      1,
		CacheSizeBytes: 32, // four 8-byte rows
		MaxRowDim:      1,
		ItemSizeBytes:  8,
		Metrics:        a,
	})
	defer func() { _ = c.Close() }()

	row := make([]byte, 8)
	for k := int64(0); k < 6; k++ { // two evictions
		c.Put(k, row)
	}
	c.Get(5)
	c.Get(0) // evicted: miss

	if got := gatherValue(t, reg, "embcache_e2e_evictions_total"); got != 2 {
		t.Errorf("evictions = %v, want 2", got)
	}
	if got := gatherValue(t, reg, "embcache_e2e_hits_total"); got != 1 {
		t.Errorf("hits = %v, want 1", got)
	}
	if got := gatherValue(t, reg, "embcache_e2e_misses_total"); got != 1 {
		t.Errorf("misses = %v, want 1", got)
	}
}
