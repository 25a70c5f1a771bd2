// Package hashing provides the hash-function collaborator the extendible
// hash table depends on, plus a handful of ready-made hashers for the key
// types the buffer pool actually instantiates the table with.
package hashing

import (
	"encoding/binary"
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Hasher maps a key of type K to a machine-word-width hash. The extendible
// hash table never compares hashers for equality and never stores one
// beyond the lifetime of a single table, so a plain func value is enough.
type Hasher[K any] func(key K) uint64

// StringHasher hashes string keys with xxhash.
func StringHasher() Hasher[string] {
	return func(key string) uint64 {
		return xxhash.Sum64String(key)
	}
}

// BytesHasher hashes []byte keys with xxhash.
func BytesHasher() Hasher[[]byte] {
	return func(key []byte) uint64 {
		return xxhash.Sum64(key)
	}
}

// IntHasher hashes int keys by hashing their 8-byte little-endian encoding.
func IntHasher() Hasher[int] {
	return func(key int) uint64 {
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], uint64(key))
		return xxhash.Sum64(buf[:])
	}
}

// Int64Hasher hashes int64 keys the same way IntHasher hashes int.
func Int64Hasher() Hasher[int64] {
	return func(key int64) uint64 {
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], uint64(key))
		return xxhash.Sum64(buf[:])
	}
}

// Uint64Hasher hashes uint64 keys by hashing their 8-byte little-endian
// encoding.
func Uint64Hasher() Hasher[uint64] {
	return func(key uint64) uint64 {
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], key)
		return xxhash.Sum64(buf[:])
	}
}

// Int32Hasher hashes int32 keys, the page-id-sized integer a buffer pool
// would actually key its page table with.
func Int32Hasher() Hasher[int32] {
	return func(key int32) uint64 {
		var buf [4]byte
		binary.LittleEndian.PutUint32(buf[:], uint32(key))
		return xxhash.Sum64(buf[:])
	}
}

// Fallback builds a Hasher for any comparable K by hashing the key's
// %v-formatted text. It is slower than the typed hashers above and is meant
// for tests and prototypes instantiating the table over types the package
// doesn't special-case, not for hot paths.
func Fallback[K comparable]() Hasher[K] {
	return func(key K) uint64 {
		return xxhash.Sum64String(formatKey(key))
	}
}

func formatKey[K comparable](key K) string {
	switch v := any(key).(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	default:
		return fmt.Sprintf("%v", v)
	}
}
