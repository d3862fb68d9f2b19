package window

import (
	"sort"
	"time"

	"github.com/ckn-edge/qoeflow/internal/event"
)

type storeKey struct {
	key   string
	start int64
}

type storeEntry struct {
	window Window
	agg    *CountSumAggregator
}

// Closed is one window released by the suppression policy: the grouping
// key, the window bounds, and the final accumulator. Exactly one Closed
// value is ever produced per (key, window).
type Closed struct {
	Key       string
	Window    Window
	Aggregate *CountSumAggregator
}

// Store holds the open accumulators and per-key watermarks for one shard.
// A window stays open until the key's watermark (highest event timestamp
// observed for that key) passes window end + grace; events assigned to an
// already-closed window are dropped as late. Removal on close is what
// makes emission exactly-once: a closed window no longer exists, so
// re-checking closure can never release it again.
//
// The number of concurrently open windows and tracked keys is unbounded.
// That is an accepted operational cost, surfaced via OpenWindows, not a
// leak.
//
// A Store is owned by exactly one shard goroutine and is not safe for
// concurrent use.
type Store struct {
	assigner   Assigner
	grace      int64
	entries    map[storeKey]*storeEntry
	watermarks map[string]int64
}

func NewStore(size, grace time.Duration) *Store {
	return &Store{
		assigner:   NewAssigner(size),
		grace:      grace.Milliseconds(),
		entries:    make(map[storeKey]*storeEntry),
		watermarks: make(map[string]int64),
	}
}

// Observe advances the key's watermark to ts if it is higher, then merges
// ev into its window's accumulator, creating the accumulator on first
// contact. It returns false if the event's window is already closed for
// this key; such late events are dropped without touching any state
// (deliberate data-loss boundary, not an error).
func (s *Store) Observe(key string, ts int64, ev *event.InferenceEvent) bool {
	if ts > s.watermarks[key] {
		s.watermarks[key] = ts
	}

	w := s.assigner.Assign(ts)
	if s.closed(key, w) {
		return false
	}

	sk := storeKey{key: key, start: w.Start}
	entry, ok := s.entries[sk]
	if !ok {
		entry = &storeEntry{window: w, agg: &CountSumAggregator{}}
		s.entries[sk] = entry
	}
	entry.agg.Merge(ev)
	return true
}

// closed reports whether w admits no further events for key.
func (s *Store) closed(key string, w Window) bool {
	return s.watermarks[key] >= w.End+s.grace
}

// CloseExpired removes and returns every window whose grace period has
// elapsed under the current watermarks. Call it after each Observe and on
// a periodic tick so that deferred closures are picked up even while the
// input stream is quiet. Results are ordered by key then window start so
// emission order is deterministic.
func (s *Store) CloseExpired() []Closed {
	var out []Closed
	for sk, entry := range s.entries {
		if s.closed(sk.key, entry.window) {
			out = append(out, Closed{Key: sk.key, Window: entry.window, Aggregate: entry.agg})
			delete(s.entries, sk)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Key != out[j].Key {
			return out[i].Key < out[j].Key
		}
		return out[i].Window.Start < out[j].Window.Start
	})
	return out
}

// OpenWindows returns the number of currently open windows across all keys
// of this shard.
func (s *Store) OpenWindows() int {
	return len(s.entries)
}
