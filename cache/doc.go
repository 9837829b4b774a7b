// Package cache provides a fixed-capacity, sharded store of fixed-width
// numeric rows keyed by 64-bit integers, with synchronous capture of
// evicted rows into pre-sized buffers. It is built as the second-level
// cache of an embedding lookup pipeline: rows pushed out by capacity
// pressure are not discarded but recorded, so the host can persist or
// migrate them before they are lost.
//
// Design
//
//   - Sharding: the byte budget is split evenly across NumShards
//     independent pools (package pool), each with its own lock, hash
//     index, and intrusive LRU list. Keys route to shards by a stable
//     xxhash of their fixed 8-byte encoding, so routing is reproducible
//     across calls and across process runs.
//
//   - Eviction: inserting into a full shard evicts least-recently-used
//     rows inline, within the same Put call. The pool reports every
//     removal with a tagged reason; only true capacity evictions are
//     captured, while replace-on-insert and explicit Remove are not.
//
//   - Capture protocol: before a batch of Put calls the caller arms the
//     engine with a buffer sized to the worst-case eviction count for
//     that cycle. Each eviction claims a slot with an atomic
//     fetch-and-add and records the decoded key plus the row bytes.
//     After the batch, ReadEvicted returns the recorded slots; slots
//     never written keep the -1 key sentinel. Overflowing the armed
//     buffer panics: the arrays are cycle-owned and fixed-size, so the
//     caller's bound is a hard contract.
//
//   - Export: GetAllItems walks all shards once and materializes every
//     live key and row into fresh arrays, inferring the row element type
//     from the configured byte geometry ({1,2,4,8} bytes per element).
//
//   - Consistency: Get/Put are safe for concurrent use and serialized
//     per shard. GetAllItems, Usage and Stats observe a live structure
//     and only give best-effort snapshots.
//
//   - Observability: Options.Metrics receives hit/miss/evict/capture
//     signals (NoopMetrics by default; a Prometheus adapter lives in
//     metrics/prom), and Options.Logger is a zap logger used for
//     allocation failures and construction diagnostics.
//
// Basic usage
//
//	c := cache.New(cache.Options{
//		NumShards:      4,
//		CacheSizeBytes: 1 << 20,
//		MaxRowDim:      64,
//		ItemSizeBytes:  64 * 4, // float32 rows
//	})
//	c.ArmEvictionCapture(len(batch))
//	for _, r := range batch {
//		c.Put(r.Key, r.Row)
//	}
//	keys, rows, n, _ := c.ReadEvicted()
//	persist(keys[:n], rows[:n*64*4])
//	c.ResetEvictionCapture()
package cache
