// Package window implements the event-time windowed aggregation core:
// tumbling window assignment, per (key, window) count/sum accumulators,
// per-key watermarks, and emit-on-close suppression.
package window

import "time"

// Window is a fixed-size tumbling event-time interval. An event with
// timestamp t belongs to the window with Start <= t < End. All timestamps
// are epoch milliseconds.
type Window struct {
	Start int64
	End   int64
}

// Assigner maps event timestamps to tumbling, non-overlapping windows of a
// fixed size, aligned to the epoch.
type Assigner struct {
	size int64
}

func NewAssigner(size time.Duration) Assigner {
	return Assigner{size: size.Milliseconds()}
}

// Assign returns the single window containing ts.
func (a Assigner) Assign(ts int64) Window {
	// Floor division keeps pre-epoch timestamps in the right window.
	start := ts - ((ts%a.size)+a.size)%a.size
	return Window{Start: start, End: start + a.size}
}

func (a Assigner) Size() time.Duration {
	return time.Duration(a.size) * time.Millisecond
}
