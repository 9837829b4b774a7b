// Package util contains internal helpers (hashing, sharding, padding).
//revive:disable:var-naming  // allow 'util' as an internal helpers package name
package util

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// HashKey hashes the 8 little-endian bytes of a 64-bit key with xxhash.
// The result is stable across processes and architectures, which is what
// makes shard routing reproducible: a key written under one process run
// must route to the same shard when looked up in the next.
func HashKey(key int64) uint64 {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(key))
	return xxhash.Sum64(b[:])
}
