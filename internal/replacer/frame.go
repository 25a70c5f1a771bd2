package replacer

import "math"

// infiniteKDistance represents the +∞ backward k-distance of a frame with
// fewer than k recorded accesses.
const infiniteKDistance = math.MaxUint64

// frame is the per-frame_id access record. history is capped at k entries,
// oldest first; kDistance is refreshed by RecordAccess and is not
// recomputed afterward, so it reflects the distance as of the frame's most
// recent access, not the distance as of "now" — matching the reference
// implementation this replacer is ported from.
type frame struct {
	history   []uint64
	kDistance uint64
	evictable bool
}

func calcKDistance(k int, currentTimestamp uint64, history []uint64) uint64 {
	if len(history) < k {
		return infiniteKDistance
	}
	return currentTimestamp - history[0]
}
