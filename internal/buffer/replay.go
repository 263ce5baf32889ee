// Package buffer provides a bounded frame ring used for session catch-up.
package buffer

import "sync"

// FrameRing is a thread-safe ring of the most recent wire frames, up to a
// fixed count. When the ring is full, the oldest frame is discarded to make
// room for a new one.
//
// The hub keeps one ring per live session so that a client attaching
// mid-meeting immediately receives the recent transcript backlog.
type FrameRing struct {
	mu     sync.RWMutex
	frames [][]byte
	limit  int
}

// NewFrameRing creates a FrameRing holding at most limit frames.
// The limit must be greater than 0; if not, it defaults to 1.
func NewFrameRing(limit int) *FrameRing {
	if limit <= 0 {
		limit = 1
	}
	return &FrameRing{limit: limit}
}

// Push appends a frame, discarding the oldest one when the ring is full.
// The frame is stored as-is; callers must not mutate it afterwards.
func (r *FrameRing) Push(frame []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.frames) == r.limit {
		copy(r.frames, r.frames[1:])
		r.frames[len(r.frames)-1] = frame
		return
	}
	r.frames = append(r.frames, frame)
}

// Frames returns a copy of the retained frames, oldest first.
func (r *FrameRing) Frames() [][]byte {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.frames) == 0 {
		return nil
	}
	out := make([][]byte, len(r.frames))
	copy(out, r.frames)
	return out
}

// Len returns the current number of retained frames.
func (r *FrameRing) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.frames)
}

// Limit returns the maximum number of retained frames.
func (r *FrameRing) Limit() int {
	return r.limit
}
