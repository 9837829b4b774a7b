package pool

// item is an intrusive doubly linked list element owned by a pool.
// It stores the key and the pool-owned payload alongside list links.
type item struct {
	key  string
	data []byte

	// Intrusive list links: head is MRU, tail is LRU.
	prev *item
	next *item
}

// size returns the payload bytes charged against the pool budget.
func (it *item) size() int64 { return int64(len(it.data)) }
