package cache

import (
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/embcache/embcache/internal/util"
	"github.com/embcache/embcache/pool"
)

// Snapshot is the result of a full-cache export. Rows is flat: the row for
// Keys[i] occupies Rows[i*itemSize : (i+1)*itemSize], where itemSize is the
// configured ItemSizeBytes. Elem and Dim describe how to reinterpret the
// bytes as numeric elements.
type Snapshot struct {
	Keys []int64
	Rows []byte
	Elem ElemKind
	Dim  int
}

// Count returns the number of exported rows.
func (s Snapshot) Count() int { return len(s.Keys) }

// Row returns the byte view of the i-th exported row.
func (s Snapshot) Row(i int) []byte {
	w := s.Dim * s.Elem.Width()
	return s.Rows[i*w : (i+1)*w]
}

// Stats aggregates per-shard counters. Best-effort: counters are read one
// shard at a time while writers proceed.
type Stats struct {
	Items     int
	UsedBytes int64
	Hits      int64
	Misses    int64
	Evictions uint64
}

// rowCache is the engine behind the Cache interface: a set of independently
// bounded LRU byte pools, one per shard, plus the capture wiring that
// redirects evicted rows into the armed cycle buffer.
type rowCache struct {
	opt    Options
	pools  []*pool.Pool
	log    *zap.Logger
	closed atomic.Bool

	// capture is nil until the first arm. Loaded atomically because the
	// removal callback can fire from any goroutine running a Put.
	capture atomic.Pointer[captureBuffer]
}

// New constructs a cache with the provided Options. It panics when the
// configuration is invalid or a shard pool cannot be initialized: a cache
// with the wrong geometry must not come up at all.
// Defaults:
//   - nil Logger  -> zap.NewNop()
//   - nil Metrics -> NoopMetrics
func New(opt Options) Cache {
	if opt.NumShards <= 0 {
		panic("cache: NumShards must be > 0")
	}
	if opt.CacheSizeBytes <= 0 {
		panic("cache: CacheSizeBytes must be > 0")
	}
	if opt.MaxRowDim <= 0 {
		panic("cache: MaxRowDim must be > 0")
	}
	if opt.ItemSizeBytes <= 0 || opt.ItemSizeBytes%opt.MaxRowDim != 0 {
		panic(fmt.Sprintf("cache: ItemSizeBytes (%d) must be a positive multiple of MaxRowDim (%d)",
			opt.ItemSizeBytes, opt.MaxRowDim))
	}
	if opt.Logger == nil {
		opt.Logger = zap.NewNop()
	}
	if opt.Metrics == nil {
		opt.Metrics = NoopMetrics{}
	}

	c := &rowCache{
		opt:   opt,
		pools: make([]*pool.Pool, opt.NumShards),
		log:   opt.Logger,
	}

	// Split the budget evenly; integer division drops the remainder
	// bytes, so the usable total is perShard*NumShards.
	perShard := opt.CacheSizeBytes / int64(opt.NumShards)
	for i := range c.pools {
		p, err := pool.New(pool.Config{
			Name:     fmt.Sprintf("shard_%d", i),
			Capacity: perShard,
			OnRemove: c.onRemove,
		})
		if err != nil {
			panic(fmt.Sprintf("cache: initializing shard %d of %d (%d bytes each): %v",
				i, opt.NumShards, perShard, err))
		}
		c.pools[i] = p
	}

	c.log.Info("row cache initialized",
		zap.Int("shards", opt.NumShards),
		zap.Int64("capacity_bytes", opt.CacheSizeBytes),
		zap.Int64("per_shard_bytes", perShard),
		zap.Int("item_size_bytes", opt.ItemSizeBytes),
		zap.Int("row_dim", opt.MaxRowDim),
	)
	return c
}

// ---- Cache implementation ----

func (c *rowCache) Get(key int64) ([]byte, bool) {
	if c.closed.Load() {
		return nil, false
	}
	row, ok := c.shardOf(key).Get(keyString(key))
	if ok {
		c.opt.Metrics.Hit()
	} else {
		c.opt.Metrics.Miss()
	}
	return row, ok
}

func (c *rowCache) Put(key int64, row []byte) bool {
	if c.closed.Load() {
		return false
	}
	if len(row) != c.opt.ItemSizeBytes {
		c.log.Error("rejecting row with wrong length",
			zap.Int64("key", key),
			zap.Int("got_bytes", len(row)),
			zap.Int("want_bytes", c.opt.ItemSizeBytes),
		)
		c.opt.Metrics.PutFailure()
		return false
	}

	shard := c.shardIndex(key)
	p := c.pools[shard]
	if !p.Put(keyString(key), row) {
		// Non-fatal: the row is simply not cached.
		c.log.Error("failed to allocate item in cache, skip",
			zap.Int64("key", key),
			zap.String("pool", p.Name()),
		)
		c.opt.Metrics.PutFailure()
		return false
	}
	c.opt.Metrics.Size(shard, p.Len(), p.UsedBytes())
	return true
}

func (c *rowCache) Remove(key int64) bool {
	if c.closed.Load() {
		return false
	}
	return c.shardOf(key).Delete(keyString(key))
}

func (c *rowCache) GetAllItems() (Snapshot, error) {
	kind, err := elemKindOf(c.opt.ItemSizeBytes / c.opt.MaxRowDim)
	if err != nil {
		return Snapshot{}, err
	}

	total := 0
	for _, p := range c.pools {
		total += p.Len()
	}

	snap := Snapshot{
		Keys: make([]int64, 0, total),
		Rows: make([]byte, 0, total*c.opt.ItemSizeBytes),
		Elem: kind,
		Dim:  c.opt.MaxRowDim,
	}
	for _, p := range c.pools {
		p.Range(func(key string, data []byte) bool {
			snap.Keys = append(snap.Keys, DecodeKey([]byte(key)))
			snap.Rows = append(snap.Rows, data...)
			return true
		})
	}

	// The pre-computed total and the walk must agree; a mismatch means a
	// racing mutation broke the snapshot assumption.
	if len(snap.Keys) != total {
		panic(fmt.Sprintf("cache: item count changed during export: counted %d, visited %d",
			total, len(snap.Keys)))
	}
	return snap, nil
}

func (c *rowCache) Usage() (freeBytes, capacityBytes int64) {
	for _, p := range c.pools {
		freeBytes += p.FreeBytes()
	}
	return freeBytes, c.opt.CacheSizeBytes
}

func (c *rowCache) Len() int {
	total := 0
	for _, p := range c.pools {
		total += p.Len()
	}
	return total
}

func (c *rowCache) Stats() Stats {
	var out Stats
	for _, p := range c.pools {
		s := p.Stats()
		out.Items += s.Items
		out.UsedBytes += s.UsedBytes
		out.Hits += s.Hits
		out.Misses += s.Misses
		out.Evictions += s.Evictions
	}
	return out
}

func (c *rowCache) ArmEvictionCapture(numLookups int) {
	if numLookups < 0 {
		panic(fmt.Sprintf("cache: ArmEvictionCapture with negative size %d", numLookups))
	}
	c.capture.Store(newCaptureBuffer(numLookups, c.opt.ItemSizeBytes))
}

func (c *rowCache) ReadEvicted() (keys []int64, rows []byte, n int, ok bool) {
	buf := c.capture.Load()
	if buf == nil {
		return nil, nil, 0, false
	}
	return buf.keys, buf.rows, buf.recorded(), true
}

func (c *rowCache) ResetEvictionCapture() {
	if buf := c.capture.Load(); buf != nil {
		buf.reset()
	}
}

func (c *rowCache) Close() error {
	c.closed.Store(true)
	return nil
}

// ---- helpers ----

// onRemove is installed as every pool's removal callback and runs
// synchronously inside the Put/Remove that displaced the entry. Only true
// capacity evictions reach the capture buffer; with no buffer armed the
// evicted row is deliberately dropped.
func (c *rowCache) onRemove(key string, data []byte, reason pool.RemoveReason) {
	switch reason {
	case pool.RemoveEvicted:
		c.opt.Metrics.Evict(EvictCapacity)
		buf := c.capture.Load()
		if buf == nil {
			return
		}
		buf.record(DecodeKey([]byte(key)), data)
		c.opt.Metrics.Captured()
	case pool.RemoveReplaced:
		c.opt.Metrics.Evict(EvictReplace)
	case pool.RemoveDeleted:
		c.opt.Metrics.Evict(EvictDelete)
	}
}

// shardIndex routes a key to its pool. The hash is pure and deterministic:
// a key must hit the same shard on every call, or Get would silently miss
// rows written by an earlier Put.
func (c *rowCache) shardIndex(key int64) int {
	return util.ShardIndex(util.HashKey(key), len(c.pools))
}

func (c *rowCache) shardOf(key int64) *pool.Pool {
	return c.pools[c.shardIndex(key)]
}
