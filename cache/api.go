package cache

// Cache is a sharded, capacity-bounded store of fixed-width numeric rows
// addressed by a 64-bit integer key. All methods are safe for concurrent
// use by multiple goroutines.
//
// Typical complexity for Get/Put is amortized O(1): a map lookup plus
// constant-time list adjustments under one shard's lock.
type Cache interface {
	// Get returns a view of the row stored for key and a presence flag.
	// The view stays owned by the cache and is valid only until the next
	// mutating call that touches this key's shard. On hit, the entry is
	// promoted to most recently used.
	Get(key int64) ([]byte, bool)

	// Put inserts or replaces the row for key. The row must be exactly
	// ItemSizeBytes long. Returns false when the row cannot be cached
	// (wrong length, shard budget unsatisfiable, or cache closed); a
	// failed Put is non-fatal and leaves the key absent.
	//
	// Put may synchronously evict a least-recently-used entry from the
	// target shard to make room; if eviction capture is armed, the
	// evicted key and row are recorded before their memory is released.
	Put(key int64, row []byte) bool

	// Remove deletes key if present and returns true on success.
	// An explicit Remove is never recorded by eviction capture.
	Remove(key int64) bool

	// GetAllItems walks every shard's live entries once and materializes
	// them into fresh arrays. The scan is a best-effort snapshot: callers
	// should quiesce writers first, since a racing mutation that changes
	// the item count mid-scan aborts the export.
	GetAllItems() (Snapshot, error)

	// Usage reports the summed free bytes across shards and the
	// configured total capacity. Best-effort: concurrent writes may skew
	// the free count transiently.
	Usage() (freeBytes, capacityBytes int64)

	// Len returns the total number of resident rows across all shards.
	Len() int

	// Stats returns hit/miss/eviction counters aggregated over shards.
	Stats() Stats

	// ArmEvictionCapture attaches a fresh capture buffer sized for at
	// most numLookups evictions and zeroes the write cursor. numLookups
	// must upper-bound the evictions possible before the next reset;
	// overflowing the buffer is a fatal invariant violation.
	ArmEvictionCapture(numLookups int)

	// ReadEvicted returns the current capture buffer contents: keys
	// (slots never written hold the -1 sentinel), the flat row array,
	// and the number of recorded evictions. ok is false if the cache was
	// never armed.
	ReadEvicted() (keys []int64, rows []byte, n int, ok bool)

	// ResetEvictionCapture zeroes the capture cursor for the next cycle.
	// The previously returned arrays are overwritten by later evictions,
	// so callers must drain them first.
	ResetEvictionCapture()

	// Close marks the cache as closed. Future operations are ignored.
	Close() error
}
