// Package xhash implements the extendible hash table at the core of the
// buffer pool's page table: a concurrent key/value map that grows its
// directory and splits buckets on demand instead of rehashing the whole
// table, the way the teacher's sharded map grows shard-local lists instead
// of resizing a single big one.
package xhash

import (
	"fmt"
	"sync"

	"github.com/LVerrrr/bpcore/internal/xhash/hashing"
)

// maxNonProductiveSplits bounds how many consecutive *non-productive*
// splits (a split after which the key's target bucket did not shrink,
// meaning every item redistributed to the same side) Insert will tolerate
// before concluding the hasher is colliding on this key's low bits. Each
// non-productive split at local depth == global depth doubles the
// directory, so this must stay small (1-2): a raw split-count budget would
// let the directory blow up long before escalation ever runs.
const maxNonProductiveSplits = 2

// Stats is a read-only snapshot of a table's directory shape.
type Stats struct {
	GlobalDepth    int
	NumBuckets     int
	DirectoryLen   int
	KeyCount       int
	UsingSecondary bool
}

// HashTable is a concurrent extendible hash table keyed by K, storing V.
type HashTable[K comparable, V any] struct {
	mu sync.Mutex

	bucketSize  int
	globalDepth int
	numBuckets  int
	dir         []*bucket[K, V]

	primary        hashing.Hasher[K]
	secondary      hashing.Hasher[K]
	usingSecondary bool
}

// New constructs a table with the given per-bucket capacity, using hash as
// the hash function over K. hash serves as both the primary and the
// secondary hasher, so a key that keeps colliding on its low bits ends up
// overflowing its bucket after the rebuild rather than growing the directory
// without bound. Use NewWithHasher to supply a distinct secondary hasher.
func New[K comparable, V any](bucketSize int, hash hashing.Hasher[K]) *HashTable[K, V] {
	return NewWithHasher[K, V](bucketSize, hash, hash)
}

// NewWithHasher constructs a table with an explicit secondary hasher used
// only as the §9 mitigation (c) fallback when the primary hasher collides
// on its low bits for a run of inserts.
func NewWithHasher[K comparable, V any](bucketSize int, primary, secondary hashing.Hasher[K]) *HashTable[K, V] {
	if bucketSize <= 0 {
		panic("xhash: bucketSize must be positive")
	}
	return &HashTable[K, V]{
		bucketSize: bucketSize,
		dir:        []*bucket[K, V]{newBucket[K, V](bucketSize, 0)},
		numBuckets: 1,
		primary:    primary,
		secondary:  secondary,
	}
}

func (t *HashTable[K, V]) hash(key K) uint64 {
	if t.usingSecondary {
		return t.secondary(key)
	}
	return t.primary(key)
}

func (t *HashTable[K, V]) indexOf(key K) int {
	mask := uint64((1 << t.globalDepth) - 1)
	return int(t.hash(key) & mask)
}

// Find returns the value stored for key, if any.
func (t *HashTable[K, V]) Find(key K) (V, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dir[t.indexOf(key)].find(key)
}

// Remove deletes key's mapping, if present, and reports whether it existed.
func (t *HashTable[K, V]) Remove(key K) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dir[t.indexOf(key)].remove(key)
}

// Insert upserts key/value, splitting buckets (and doubling the directory)
// as needed to make room.
func (t *HashTable[K, V]) Insert(key K, value V) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.insertLoop(key, true)
	t.dir[t.indexOf(key)].set(key, value)
}

// splitBucket splits the bucket at directory index idx, doubling the
// directory first if the bucket's local depth has already caught up with
// the global depth.
func (t *HashTable[K, V]) splitBucket(idx int) {
	b := t.dir[idx]
	d := b.depth

	if d == t.globalDepth {
		old := t.dir
		grown := make([]*bucket[K, V], len(old)*2)
		copy(grown, old)
		copy(grown[len(old):], old)
		t.dir = grown
		t.globalDepth++
	}

	newDepth := d + 1
	b0 := newBucket[K, V](t.bucketSize, newDepth)
	b1 := newBucket[K, V](t.bucketSize, newDepth)
	t.numBuckets++

	mask := uint64(1) << d
	for key, value := range b.items {
		if t.hash(key)&mask == 0 {
			b0.set(key, value)
		} else {
			b1.set(key, value)
		}
	}

	for i := range t.dir {
		if t.dir[i] != b {
			continue
		}
		if uint64(i)&mask == 0 {
			t.dir[i] = b0
		} else {
			t.dir[i] = b1
		}
	}
}

// insertLoop splits the bucket key maps to until it has room (or key is
// already present), tracking consecutive non-productive splits. allowEscalate
// permits falling back to the secondary hasher (§9 mitigation option (c))
// once maxNonProductiveSplits is reached; rehashWithSecondary calls back in
// with allowEscalate=false so a double collision (primary and secondary both
// stuck on this key's low bits) can't recurse into escalating again. In that
// terminal case the target bucket is marked to overflow its capacity (§9
// mitigation option (b)) instead of splitting without bound.
func (t *HashTable[K, V]) insertLoop(key K, allowEscalate bool) {
	nonProductive := 0
	for {
		idx := t.indexOf(key)
		b := t.dir[idx]
		if !b.full() || b.has(key) {
			return
		}

		sizeBefore := b.len()
		t.splitBucket(idx)

		target := t.dir[t.indexOf(key)]
		if target.len() < sizeBefore {
			nonProductive = 0
			continue
		}

		nonProductive++
		if nonProductive < maxNonProductiveSplits {
			continue
		}

		if allowEscalate && !t.usingSecondary {
			t.rehashWithSecondary()
			nonProductive = 0
			continue
		}

		target.overflow = true
		return
	}
}

// rehashWithSecondary rebuilds the whole table from scratch under the
// secondary hasher. Invoked only when the primary hasher has collided on
// its low bits for maxNonProductiveSplits consecutive splits of the same
// insert.
func (t *HashTable[K, V]) rehashWithSecondary() {
	type kv struct {
		key   K
		value V
	}
	all := make([]kv, 0, t.lenLocked())
	for _, b := range t.dir {
		for k, v := range b.items {
			all = append(all, kv{k, v})
		}
	}

	t.usingSecondary = true
	t.globalDepth = 0
	t.numBuckets = 1
	t.dir = []*bucket[K, V]{newBucket[K, V](t.bucketSize, 0)}

	for _, e := range all {
		t.insertAfterRebuild(e.key, e.value)
	}
}

// insertAfterRebuild is Insert's split loop without the secondary-hash
// escalation check: rehashWithSecondary has already switched hashers, and
// re-triggering escalation mid-rebuild would recurse. A key that still
// collides under the secondary hasher overflows its target bucket instead
// of splitting forever.
func (t *HashTable[K, V]) insertAfterRebuild(key K, value V) {
	t.insertLoop(key, false)
	t.dir[t.indexOf(key)].set(key, value)
}

// GetGlobalDepth returns the number of hash bits used to index the
// directory.
func (t *HashTable[K, V]) GetGlobalDepth() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.globalDepth
}

// GetLocalDepth returns the local depth of the bucket at dirIndex.
func (t *HashTable[K, V]) GetLocalDepth(dirIndex int) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dir[dirIndex].depth
}

// GetNumBuckets returns the count of distinct bucket objects.
func (t *HashTable[K, V]) GetNumBuckets() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.numBuckets
}

// Len returns the total number of stored keys.
func (t *HashTable[K, V]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lenLocked()
}

func (t *HashTable[K, V]) lenLocked() int {
	seen := make(map[*bucket[K, V]]struct{}, t.numBuckets)
	total := 0
	for _, b := range t.dir {
		if _, ok := seen[b]; ok {
			continue
		}
		seen[b] = struct{}{}
		total += b.len()
	}
	return total
}

// Keys returns an unordered snapshot of every stored key.
func (t *HashTable[K, V]) Keys() []K {
	t.mu.Lock()
	defer t.mu.Unlock()

	seen := make(map[*bucket[K, V]]struct{}, t.numBuckets)
	keys := make([]K, 0, t.lenLocked())
	for _, b := range t.dir {
		if _, ok := seen[b]; ok {
			continue
		}
		seen[b] = struct{}{}
		for k := range b.items {
			keys = append(keys, k)
		}
	}
	return keys
}

// Stats returns a read-only snapshot of the directory shape.
func (t *HashTable[K, V]) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Stats{
		GlobalDepth:    t.globalDepth,
		NumBuckets:     t.numBuckets,
		DirectoryLen:   len(t.dir),
		KeyCount:       t.lenLocked(),
		UsingSecondary: t.usingSecondary,
	}
}

func (t *HashTable[K, V]) String() string {
	s := t.Stats()
	return fmt.Sprintf("xhash(depth=%d buckets=%d keys=%d)", s.GlobalDepth, s.NumBuckets, s.KeyCount)
}
