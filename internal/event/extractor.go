package event

import (
	"time"

	"github.com/spf13/cast"
)

// TimeExtractor derives the event-time timestamp (epoch milliseconds) used
// for windowing from the event payload.
//
// Fallback for events without a usable timestamp is deterministic and
// ordered: the previously extracted timestamp for this stream is reused,
// and if no event has been extracted yet, ingestion wall-clock time is
// used. Each shard owns its own extractor, so the "previous timestamp" is
// always the one of the preceding event in arrival order.
type TimeExtractor struct {
	previous int64
	now      func() time.Time
}

func NewTimeExtractor() *TimeExtractor {
	return &TimeExtractor{now: time.Now}
}

// Extract returns the timestamp embedded in ev, falling back as documented
// above. Timestamps must be strictly positive to count as usable.
func (x *TimeExtractor) Extract(ev *InferenceEvent) int64 {
	ts, err := cast.ToInt64E(ev.Timestamp)
	if err != nil || ts <= 0 {
		if x.previous > 0 {
			return x.previous
		}
		return x.now().UnixMilli()
	}
	x.previous = ts
	return ts
}
