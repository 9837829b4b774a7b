package cache

import "encoding/binary"

// Keys are stored by the pools as opaque 8-byte strings. The encoding is
// fixed-width little-endian so it can be reversed exactly when scanning or
// capturing evicted entries. The domain is total: every int64 encodes, every
// 8-byte string decodes.

// EncodeKey serializes a 64-bit key into its byte-string form.
func EncodeKey(key int64) [8]byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(key))
	return b
}

// DecodeKey is the exact inverse of EncodeKey.
func DecodeKey(b []byte) int64 {
	return int64(binary.LittleEndian.Uint64(b))
}

// keyString returns the pool index form of key.
func keyString(key int64) string {
	b := EncodeKey(key)
	return string(b[:])
}
