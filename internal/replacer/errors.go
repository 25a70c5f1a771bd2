package replacer

import "errors"

// ErrInvalidFrameID is returned by RecordAccess and SetEvictable when
// frame_id is out of the replacer's configured range.
var ErrInvalidFrameID = errors.New("replacer: invalid frame id")

// ErrNonEvictableRemoval is returned by Remove when the frame exists but is
// currently pinned (not evictable).
var ErrNonEvictableRemoval = errors.New("replacer: cannot remove a non-evictable frame")
