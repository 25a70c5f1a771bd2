// Package replacer implements the LRU-K page replacement policy: it tracks
// per-frame access history and picks an evictable frame with the largest
// backward k-distance. Frames with fewer than k recorded accesses all have
// infinite distance; ties are broken by the oldest access still in each
// frame's history.
package replacer

import (
	"fmt"
	"sync"
)

// Stats is a read-only snapshot of a replacer's bookkeeping.
type Stats struct {
	CurrSize         int
	ReplacerSize     int
	K                int
	CurrentTimestamp uint64
}

// LRUKReplacer selects eviction victims among frames marked evictable,
// preferring the frame with the largest backward k-distance.
type LRUKReplacer struct {
	mu sync.Mutex

	replacerSize     int
	k                int
	currentTimestamp uint64
	currSize         int
	frames           map[int]*frame
}

// New constructs a replacer tracking up to numFrames frame ids, using the
// LRU-K policy with history depth k. k must be at least 1.
func New(numFrames, k int) *LRUKReplacer {
	if k < 1 {
		panic("replacer: k must be >= 1")
	}
	return &LRUKReplacer{
		replacerSize: numFrames,
		k:            k,
		frames:       make(map[int]*frame),
	}
}

func (r *LRUKReplacer) validFrameID(frameID int) bool {
	return frameID >= 0 && frameID < r.replacerSize
}

// RecordAccess records that frameID was accessed at the current logical
// timestamp, then advances the clock.
func (r *LRUKReplacer) RecordAccess(frameID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.validFrameID(frameID) {
		return ErrInvalidFrameID
	}

	f, ok := r.frames[frameID]
	if !ok {
		f = &frame{}
		r.frames[frameID] = f
	}

	f.history = append(f.history, r.currentTimestamp)
	if len(f.history) > r.k {
		f.history = f.history[1:]
	}
	f.kDistance = calcKDistance(r.k, r.currentTimestamp, f.history)

	r.currentTimestamp++
	return nil
}

// SetEvictable toggles the pin state of an existing frame. Unknown frame
// ids are a silent no-op.
func (r *LRUKReplacer) SetEvictable(frameID int, evictable bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.validFrameID(frameID) {
		return ErrInvalidFrameID
	}

	f, ok := r.frames[frameID]
	if !ok {
		return nil
	}

	if f.evictable != evictable {
		f.evictable = evictable
		if evictable {
			r.currSize++
		} else {
			r.currSize--
		}
	}
	return nil
}

// Remove drops frameID's access history. Unknown frame ids are a silent
// no-op; a frame that exists but is pinned returns ErrNonEvictableRemoval.
func (r *LRUKReplacer) Remove(frameID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.frames[frameID]
	if !ok {
		return nil
	}
	if !f.evictable {
		return ErrNonEvictableRemoval
	}

	delete(r.frames, frameID)
	r.currSize--
	return nil
}

// Evict chooses and removes the frame with the largest backward k-distance
// among evictable frames, breaking ties by earliest first access. It
// reports ok=false if no frame is evictable.
func (r *LRUKReplacer) Evict() (frameID int, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.currSize == 0 {
		return 0, false
	}

	var (
		victim        = -1
		victimDist    uint64
		victimEarlier uint64
		first         = true
	)

	for fid, f := range r.frames {
		if !f.evictable {
			continue
		}

		var front uint64
		hasFront := len(f.history) > 0
		if hasFront {
			front = f.history[0]
		}

		better := first ||
			f.kDistance > victimDist ||
			(f.kDistance == victimDist && hasFront && front < victimEarlier)

		if better {
			victim = fid
			victimDist = f.kDistance
			if hasFront {
				victimEarlier = front
			}
			first = false
		}
	}

	if victim == -1 {
		return 0, false
	}

	delete(r.frames, victim)
	r.currSize--
	return victim, true
}

// Size returns the number of evictable frames.
func (r *LRUKReplacer) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.currSize
}

// Stats returns a read-only snapshot of the replacer's bookkeeping.
func (r *LRUKReplacer) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Stats{
		CurrSize:         r.currSize,
		ReplacerSize:     r.replacerSize,
		K:                r.k,
		CurrentTimestamp: r.currentTimestamp,
	}
}

func (r *LRUKReplacer) String() string {
	s := r.Stats()
	return fmt.Sprintf("replacer(k=%d evictable=%d/%d ts=%d)", s.K, s.CurrSize, s.ReplacerSize, s.CurrentTimestamp)
}
