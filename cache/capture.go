package cache

import (
	"fmt"
	"sync/atomic"
)

// sentinelKey marks capture slots no eviction was recorded into.
const sentinelKey = int64(-1)

// captureBuffer holds one lookup cycle's eviction output: a key array
// pre-filled with the sentinel, a flat row array of numLookups*rowBytes,
// and a monotonic write cursor. The arrays belong to the cycle that armed
// them; the engine only writes through them until the next arm.
//
// Slots are claimed with an atomic fetch-and-add, so evictions triggered by
// concurrent Put calls on different shards never collide on a slot.
type captureBuffer struct {
	keys     []int64
	rows     []byte
	rowBytes int
	cursor   atomic.Int64
}

func newCaptureBuffer(numLookups, rowBytes int) *captureBuffer {
	b := &captureBuffer{
		keys:     make([]int64, numLookups),
		rows:     make([]byte, numLookups*rowBytes),
		rowBytes: rowBytes,
	}
	for i := range b.keys {
		b.keys[i] = sentinelKey
	}
	return b
}

// record claims the next slot and writes the evicted key and row into it.
// Overflowing the buffer means the caller's numLookups bound was wrong and
// further writes would overrun cycle-owned memory; that is a fatal bug, not
// a recoverable condition.
func (b *captureBuffer) record(key int64, row []byte) {
	slot := int(b.cursor.Add(1)) - 1
	if slot >= len(b.keys) {
		panic(fmt.Sprintf(
			"cache: eviction capture overflow: %d evictions recorded into a buffer armed for %d",
			slot+1, len(b.keys)))
	}
	b.keys[slot] = key
	copy(b.rows[slot*b.rowBytes:(slot+1)*b.rowBytes], row)
}

// recorded returns how many slots have been written this cycle.
func (b *captureBuffer) recorded() int {
	n := int(b.cursor.Load())
	if n > len(b.keys) {
		n = len(b.keys)
	}
	return n
}

// reset zeroes the cursor for the next cycle. The arrays are not cleared;
// a fresh arm replaces them.
func (b *captureBuffer) reset() {
	b.cursor.Store(0)
}
