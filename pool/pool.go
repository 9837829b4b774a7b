// Package pool implements a capacity-bounded memory pool with LRU eviction
// and a synchronous removal notification.
//
// A Pool owns a byte budget. Put copies the caller's bytes into pool-owned
// memory and inserts or replaces the entry under the given key; when the
// budget is exhausted, least-recently-used entries are evicted inline within
// the same Put call. Every removal (eviction, replace-on-insert, explicit
// delete) invokes the configured callback with a tagged reason before the
// entry's memory is released, so callers can capture the departing bytes.
package pool

import (
	"errors"
	"fmt"
	"sync"

	"github.com/embcache/embcache/internal/util"
)

// RemoveReason explains why an entry left the pool.
type RemoveReason int

const (
	// RemoveEvicted — evicted to reclaim space for a new allocation.
	RemoveEvicted RemoveReason = iota
	// RemoveReplaced — displaced by an insert-or-replace on the same key.
	RemoveReplaced
	// RemoveDeleted — removed by an explicit Delete.
	RemoveDeleted
)

// String returns a stable label for the reason.
func (r RemoveReason) String() string {
	switch r {
	case RemoveReplaced:
		return "replace"
	case RemoveDeleted:
		return "delete"
	default:
		return "eviction"
	}
}

// RemoveCallback is invoked synchronously, on the calling goroutine, for
// every entry that leaves the pool. key and data are views into pool-owned
// memory and are only valid for the duration of the call.
type RemoveCallback func(key string, data []byte, reason RemoveReason)

// ErrInvalidCapacity is returned by New for a non-positive byte budget.
var ErrInvalidCapacity = errors.New("pool: capacity must be > 0")

// Config describes one pool.
type Config struct {
	// Name identifies the pool in diagnostics.
	Name string

	// Capacity is the byte budget for entry payloads.
	Capacity int64

	// OnRemove, if non-nil, is called for every removed entry while the
	// pool lock is held; keep callbacks lightweight.
	OnRemove RemoveCallback
}

// Stats is a point-in-time snapshot of pool counters.
type Stats struct {
	Items     int
	UsedBytes int64
	Hits      int64
	Misses    int64
	Evictions uint64
}

// Pool is a bounded LRU byte pool. Safe for concurrent use.
type Pool struct {
	name     string
	capacity int64
	onRemove RemoveCallback

	// ---- guarded by mu ----
	mu   sync.RWMutex
	m    map[string]*item
	head *item // MRU
	tail *item // LRU
	n    int
	used int64

	// ---- hot counters (separate cache lines to avoid false sharing) ----
	_      util.CacheLinePad
	hits   util.PaddedAtomicInt64
	misses util.PaddedAtomicInt64
	evicts util.PaddedAtomicUint64
}

// New constructs a pool with the given byte budget.
func New(cfg Config) (*Pool, error) {
	if cfg.Capacity <= 0 {
		return nil, fmt.Errorf("%w (pool %q, got %d)", ErrInvalidCapacity, cfg.Name, cfg.Capacity)
	}
	return &Pool{
		name:     cfg.Name,
		capacity: cfg.Capacity,
		onRemove: cfg.OnRemove,
		m:        make(map[string]*item),
	}, nil
}

// Name returns the pool's diagnostic name.
func (p *Pool) Name() string { return p.name }

// Capacity returns the configured byte budget.
func (p *Pool) Capacity() int64 { return p.capacity }

// Put copies data into pool-owned memory and inserts or replaces the entry
// for key, promoting it to MRU. If the pool is full, LRU entries are evicted
// synchronously until the new entry fits. Returns false when the entry can
// never fit (larger than the whole budget); the pool is left unchanged in
// that case. Replacing an existing key fires the callback with
// RemoveReplaced, never RemoveEvicted.
func (p *Pool) Put(key string, data []byte) bool {
	need := int64(len(data))
	if need > p.capacity {
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if old, ok := p.m[key]; ok {
		p.unlink(old)
		delete(p.m, key)
		p.notify(old, RemoveReplaced)
	}

	// Reclaim from the LRU end until the new entry fits.
	for p.used+need > p.capacity {
		victim := p.tail
		if victim == nil {
			// Empty pool that still cannot fit the entry; unreachable
			// given the budget check above, but fail soft.
			return false
		}
		p.unlink(victim)
		delete(p.m, victim.key)
		p.evicts.Add(1)
		p.notify(victim, RemoveEvicted)
	}

	it := &item{key: key, data: append([]byte(nil), data...)}
	p.m[key] = it
	p.pushFront(it)
	return true
}

// Get returns a view of the stored bytes and promotes the entry to MRU.
// The returned slice stays owned by the pool and is valid only until the
// next mutating call affecting this key.
func (p *Pool) Get(key string) ([]byte, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	it, ok := p.m[key]
	if !ok {
		p.misses.Add(1)
		return nil, false
	}
	p.moveToFront(it)
	p.hits.Add(1)
	return it.data, true
}

// Delete removes key if present and returns true on success.
func (p *Pool) Delete(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	it, ok := p.m[key]
	if !ok {
		return false
	}
	p.unlink(it)
	delete(p.m, key)
	p.notify(it, RemoveDeleted)
	return true
}

// Len returns the number of live entries.
func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.n
}

// UsedBytes returns the payload bytes currently allocated.
func (p *Pool) UsedBytes() int64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.used
}

// FreeBytes returns the remaining byte budget.
func (p *Pool) FreeBytes() int64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.capacity - p.used
}

// Range calls fn for every live entry, MRU first, under the pool read lock;
// keep fn quick. Iteration stops early when fn returns false. key and data
// are views into pool-owned memory.
func (p *Pool) Range(fn func(key string, data []byte) bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for it := p.head; it != nil; it = it.next {
		if !fn(it.key, it.data) {
			return
		}
	}
}

// Stats returns a best-effort snapshot of the pool counters.
func (p *Pool) Stats() Stats {
	p.mu.RLock()
	items, used := p.n, p.used
	p.mu.RUnlock()
	return Stats{
		Items:     items,
		UsedBytes: used,
		Hits:      p.hits.Load(),
		Misses:    p.misses.Load(),
		Evictions: p.evicts.Load(),
	}
}

// -------------------- internals (mu held) --------------------

// notify fires the removal callback while the lock is held.
// Moving this outside the lock would require copying key and data first.
func (p *Pool) notify(it *item, reason RemoveReason) {
	if p.onRemove != nil {
		p.onRemove(it.key, it.data, reason)
	}
}

// pushFront inserts it at MRU in O(1).
func (p *Pool) pushFront(it *item) {
	it.prev = nil
	it.next = p.head
	if p.head != nil {
		p.head.prev = it
	}
	p.head = it
	if p.tail == nil {
		p.tail = it
	}
	p.n++
	p.used += it.size()
}

// moveToFront promotes it to MRU in O(1).
func (p *Pool) moveToFront(it *item) {
	if it == p.head {
		return
	}
	// detach
	if it.prev != nil {
		it.prev.next = it.next
	}
	if it.next != nil {
		it.next.prev = it.prev
	}
	if p.tail == it {
		p.tail = it.prev
	}
	// insert at head
	it.prev = nil
	it.next = p.head
	if p.head != nil {
		p.head.prev = it
	}
	p.head = it
	if p.tail == nil {
		p.tail = it
	}
}

// unlink removes it from the list and updates counters in O(1).
func (p *Pool) unlink(it *item) {
	if it.prev != nil {
		it.prev.next = it.next
	}
	if it.next != nil {
		it.next.prev = it.prev
	}
	if p.head == it {
		p.head = it.next
	}
	if p.tail == it {
		p.tail = it.prev
	}
	it.prev, it.next = nil, nil
	p.n--
	p.used -= it.size()
}
