package hashing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringHasherDeterministic(t *testing.T) {
	h := StringHasher()
	assert.Equal(t, h("page:1"), h("page:1"))
	assert.NotEqual(t, h("page:1"), h("page:2"))
}

func TestBytesHasherDeterministic(t *testing.T) {
	h := BytesHasher()
	assert.Equal(t, h([]byte("abc")), h([]byte("abc")))
	assert.NotEqual(t, h([]byte("abc")), h([]byte("abd")))
}

func TestIntHasherDistinguishesNearbyInts(t *testing.T) {
	h := IntHasher()
	seen := make(map[uint64]int)
	for i := 0; i < 1000; i++ {
		seen[h(i)] = i
	}
	assert.Len(t, seen, 1000, "no collisions expected over a small dense int range")
}

func TestInt64HasherMatchesIntHasherEncoding(t *testing.T) {
	h := Int64Hasher()
	assert.Equal(t, IntHasher()(42), h(42))
	assert.NotEqual(t, h(42), h(43))
}

func TestUint64HasherDeterministic(t *testing.T) {
	h := Uint64Hasher()
	assert.Equal(t, h(7), h(7))
	assert.NotEqual(t, h(7), h(8))
}

func TestInt32HasherDeterministic(t *testing.T) {
	h := Int32Hasher()
	assert.Equal(t, h(int32(5)), h(int32(5)))
	assert.NotEqual(t, h(int32(5)), h(int32(6)))
}

func TestFallbackHashesStringLikeStringHasher(t *testing.T) {
	assert.Equal(t, StringHasher()("hello"), Fallback[string]()("hello"))
}

func TestFallbackHandlesArbitraryComparableType(t *testing.T) {
	type key struct {
		A int
		B string
	}
	h := Fallback[key]()
	assert.Equal(t, h(key{1, "x"}), h(key{1, "x"}))
	assert.NotEqual(t, h(key{1, "x"}), h(key{2, "x"}))
}
