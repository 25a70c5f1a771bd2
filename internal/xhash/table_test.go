package xhash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// identityHasher treats the int key as its own hash, matching the teacher
// source's worked examples so split/grow behavior is exactly predictable.
func identityHasher() func(int) uint64 {
	return func(key int) uint64 { return uint64(key) }
}

func newIdentityTable(bucketSize int) *HashTable[int, string] {
	return New[int, string](bucketSize, identityHasher())
}

func TestSplitAndGrow(t *testing.T) {
	tbl := newIdentityTable(2)

	tbl.Insert(1, "one")
	tbl.Insert(2, "two")
	assert.Equal(t, 0, tbl.GetGlobalDepth())
	assert.Equal(t, 1, tbl.GetNumBuckets())

	tbl.Insert(3, "three")
	assert.Equal(t, 1, tbl.GetGlobalDepth())
	assert.Equal(t, 2, tbl.GetNumBuckets())
	assert.Equal(t, 2, len(tbl.dir))

	for _, k := range []int{1, 2, 3} {
		v, ok := tbl.Find(k)
		require.True(t, ok, "key %d", k)
		assert.NotEmpty(t, v)
	}
}

func TestUpsertOverwrites(t *testing.T) {
	tbl := newIdentityTable(4)

	tbl.Insert(7, "a")
	tbl.Insert(7, "b")

	v, ok := tbl.Find(7)
	require.True(t, ok)
	assert.Equal(t, "b", v)
	assert.Equal(t, 1, tbl.GetNumBuckets())
}

func TestRemoveThenReinsert(t *testing.T) {
	tbl := newIdentityTable(4)

	tbl.Insert(5, "five")
	assert.True(t, tbl.Remove(5))

	_, ok := tbl.Find(5)
	assert.False(t, ok)

	tbl.Insert(5, "cinco")
	v, ok := tbl.Find(5)
	require.True(t, ok)
	assert.Equal(t, "cinco", v)
}

func TestRemoveUnknownKey(t *testing.T) {
	tbl := newIdentityTable(4)
	assert.False(t, tbl.Remove(42))
}

func TestFindMissing(t *testing.T) {
	tbl := newIdentityTable(4)
	_, ok := tbl.Find(123)
	assert.False(t, ok)
}

func TestSplitIncrementsNumBucketsByOnePerSplit(t *testing.T) {
	tbl := newIdentityTable(2)

	// 0 and 1 differ in bit 0, so the single split triggered by a third
	// insert separates them immediately: exactly one split happens.
	tbl.Insert(0, "a")
	tbl.Insert(1, "b")
	before := tbl.GetNumBuckets()
	tbl.Insert(5, "c")
	after := tbl.GetNumBuckets()

	assert.Equal(t, before+1, after, "a single split that separates keys grows num buckets by exactly one")
}

func TestLocalDepthNeverExceedsGlobalDepth(t *testing.T) {
	tbl := newIdentityTable(1)

	for i := 0; i < 64; i++ {
		tbl.Insert(i, "v")
	}

	depth := tbl.GetGlobalDepth()
	for i := 0; i < (1 << depth); i++ {
		assert.LessOrEqual(t, tbl.GetLocalDepth(i), depth)
	}
}

func TestDirectorySharingInvariant(t *testing.T) {
	tbl := newIdentityTable(1)
	for i := 0; i < 32; i++ {
		tbl.Insert(i, "v")
	}

	for i := range tbl.dir {
		for j := range tbl.dir {
			sameBucket := tbl.dir[i] == tbl.dir[j]
			localDepth := tbl.dir[i].depth
			withinMask := (i^j)&((1<<localDepth)-1) == 0
			assert.Equal(t, sameBucket, withinMask, "dir[%d] vs dir[%d]", i, j)
		}
	}
}

func TestDirectoryLengthIsPowerOfTwoOfGlobalDepth(t *testing.T) {
	tbl := newIdentityTable(1)
	for i := 0; i < 100; i++ {
		tbl.Insert(i, "v")
		assert.Equal(t, 1<<tbl.GetGlobalDepth(), len(tbl.dir))
	}
}

func TestLenAndKeysReflectInserts(t *testing.T) {
	tbl := newIdentityTable(3)
	want := map[int]string{1: "a", 2: "b", 3: "c", 10: "d"}
	for k, v := range want {
		tbl.Insert(k, v)
	}

	assert.Equal(t, len(want), tbl.Len())

	keys := tbl.Keys()
	assert.Len(t, keys, len(want))
	for _, k := range keys {
		_, ok := want[k]
		assert.True(t, ok, "unexpected key %d", k)
	}
}

func TestStatsSnapshot(t *testing.T) {
	tbl := newIdentityTable(2)
	tbl.Insert(1, "a")
	tbl.Insert(2, "b")
	tbl.Insert(3, "c")

	s := tbl.Stats()
	assert.Equal(t, tbl.GetGlobalDepth(), s.GlobalDepth)
	assert.Equal(t, tbl.GetNumBuckets(), s.NumBuckets)
	assert.Equal(t, 3, s.KeyCount)
	assert.False(t, s.UsingSecondary)
}

func TestSecondaryHashRehashOnPathologicalCollision(t *testing.T) {
	// A primary hasher that collapses everything to 0 low bits forever
	// forces escalation to the secondary hasher after maxNonProductiveSplits,
	// not after the directory has already blown up.
	primary := func(int) uint64 { return 0 }
	secondary := func(key int) uint64 { return uint64(key) }

	tbl := NewWithHasher[int, string](2, primary, secondary)
	for i := 0; i < 40; i++ {
		tbl.Insert(i, "v")
		if !tbl.usingSecondary {
			require.LessOrEqual(t, len(tbl.dir), 8,
				"directory must not grow past a few doublings before escalating to the secondary hasher")
		}
	}

	// Once escalated, the well-distributed secondary (identity) hash grows
	// the directory normally to fit all 40 keys — no longer bounded tightly.
	assert.True(t, tbl.usingSecondary)
	for i := 0; i < 40; i++ {
		v, ok := tbl.Find(i)
		require.True(t, ok, "key %d", i)
		assert.Equal(t, "v", v)
	}
}

func TestDoubleCollisionOverflowsBucketInsteadOfLooping(t *testing.T) {
	// Both hashers collapse every key to the same low bits, so even the
	// secondary-hash rebuild can't separate them: the colliding bucket must
	// overflow past bucketSize rather than splitting without bound.
	collapsing := func(int) uint64 { return 0 }

	tbl := NewWithHasher[int, string](2, collapsing, collapsing)
	for i := 0; i < 5; i++ {
		tbl.Insert(i, "v")
		require.LessOrEqual(t, len(tbl.dir), 8,
			"directory must not grow without bound once both hashers collide")
	}

	assert.True(t, tbl.usingSecondary)
	for i := 0; i < 5; i++ {
		v, ok := tbl.Find(i)
		require.True(t, ok, "key %d", i)
		assert.Equal(t, "v", v)
	}
	assert.Equal(t, 5, tbl.Len())
}

func TestConcurrentInsertFind(t *testing.T) {
	tbl := New[int, int](4, identityHasher())
	done := make(chan struct{})

	for g := 0; g < 8; g++ {
		go func(base int) {
			defer func() { done <- struct{}{} }()
			for i := 0; i < 200; i++ {
				key := base*1000 + i
				tbl.Insert(key, key)
			}
		}(g)
	}
	for g := 0; g < 8; g++ {
		<-done
	}

	assert.Equal(t, 8*200, tbl.Len())
}
