package cache

import "go.uber.org/zap"

// EvictReason explains why a row left the cache.
type EvictReason int

const (
	// EvictCapacity — removed by the shard's LRU policy to free space.
	// Only this reason is recorded by eviction capture.
	EvictCapacity EvictReason = iota
	// EvictReplace — displaced by a Put on the same key.
	EvictReplace
	// EvictDelete — removed by an explicit Remove.
	EvictDelete
)

// String returns a stable label for the reason.
func (r EvictReason) String() string {
	switch r {
	case EvictReplace:
		return "replace"
	case EvictDelete:
		return "delete"
	default:
		return "capacity"
	}
}

// Metrics exposes cache-level observability hooks.
// A NoopMetrics implementation is provided and used by default.
type Metrics interface {
	Hit()
	Miss()
	Evict(reason EvictReason)
	PutFailure()
	Captured()
	Size(shard, items int, usedBytes int64)
}

// Options configures the cache. NumShards, CacheSizeBytes, MaxRowDim and
// ItemSizeBytes are required and immutable after construction; New panics
// when they are invalid. Logger and Metrics default to no-ops.
type Options struct {
	// NumShards is the number of independent pools. Each key maps to
	// exactly one shard via a stable hash of its encoded form.
	NumShards int

	// CacheSizeBytes is the total row-payload capacity, split evenly
	// across shards at construction (integer division; the remainder
	// bytes are dropped).
	CacheSizeBytes int64

	// MaxRowDim is the element count per stored row.
	MaxRowDim int

	// ItemSizeBytes is the byte length of every stored row. It must be a
	// multiple of MaxRowDim; the quotient is the element byte width used
	// to infer the row element type on export.
	ItemSizeBytes int

	// Logger receives diagnostics (failed allocations, construction
	// info). Nil => zap.NewNop().
	Logger *zap.Logger

	// Metrics receives hit/miss/evict/size signals. Nil => NoopMetrics.
	Metrics Metrics
}
