package window

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() *Store {
	return NewStore(10*time.Second, 2*time.Second)
}

// Window size 10s, grace 2s; key "A" receives events at t=1s and t=5s,
// then t=15s pushes the watermark to 15s, past 10s + 2s, closing [0,10s).
func TestStoreClosesWindowAfterGraceElapses(t *testing.T) {
	s := newTestStore()

	require.True(t, s.Observe("A", 1000, sampleEvent("c1", 0.8, 100)))
	require.True(t, s.Observe("A", 5000, sampleEvent("c2", 0.9, 120)))
	require.Empty(t, s.CloseExpired(), "window must stay open until watermark passes end+grace")

	require.True(t, s.Observe("A", 15000, sampleEvent("c3", 0.5, 90)))
	closed := s.CloseExpired()
	require.Len(t, closed, 1)

	assert.Equal(t, "A", closed[0].Key)
	assert.Equal(t, Window{Start: 0, End: 10000}, closed[0].Window)

	result, err := closed[0].Aggregate.Average(time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Count)
	assert.InDelta(t, 0.85, result.AvgAccuracy, 1e-9)
	assert.InDelta(t, 110.0, result.AvgDelay, 1e-9)
	assert.Equal(t, "c2", result.ClientID, "identity from the last merged event")

	// Re-checking closure must not release the window again.
	assert.Empty(t, s.CloseExpired())
	assert.Equal(t, 1, s.OpenWindows(), "only [10s,20s) remains open")
}

func TestStoreDoesNotCloseBeforeGrace(t *testing.T) {
	s := newTestStore()

	require.True(t, s.Observe("A", 1000, sampleEvent("c1", 0.8, 100)))
	// Watermark 11s: window [0,10s) ended but its grace runs to 12s.
	require.True(t, s.Observe("A", 11000, sampleEvent("c2", 0.9, 120)))
	assert.Empty(t, s.CloseExpired())

	// Grace still admits an event for [0,10s).
	require.True(t, s.Observe("A", 9000, sampleEvent("c3", 0.7, 80)))

	// Watermark 12s closes [0,10s).
	require.True(t, s.Observe("A", 12000, sampleEvent("c4", 0.6, 70)))
	closed := s.CloseExpired()
	require.Len(t, closed, 1)
	assert.Equal(t, int64(2), closed[0].Aggregate.Count)
}

func TestStoreDropsLateEvent(t *testing.T) {
	s := newTestStore()

	require.True(t, s.Observe("A", 3000, sampleEvent("c1", 0.8, 100)))
	require.True(t, s.Observe("A", 13000, sampleEvent("c2", 0.9, 120)))

	closed := s.CloseExpired()
	require.Len(t, closed, 1)
	require.Equal(t, int64(1), closed[0].Aggregate.Count)

	// A straggler for the already-closed window is dropped: not merged,
	// no new window, no reopened window.
	assert.False(t, s.Observe("A", 1000, sampleEvent("late", 0.1, 999)))
	assert.Empty(t, s.CloseExpired())
	assert.Equal(t, 1, s.OpenWindows())

	// Closing the surviving window shows the late event left no trace.
	require.True(t, s.Observe("A", 25000, sampleEvent("c3", 0.5, 50)))
	closed = s.CloseExpired()
	require.Len(t, closed, 1)
	assert.Equal(t, Window{Start: 10000, End: 20000}, closed[0].Window)
	assert.Equal(t, int64(1), closed[0].Aggregate.Count)
	assert.Equal(t, "c2", closed[0].Aggregate.ClientID)
}

func TestStoreKeysAreIsolated(t *testing.T) {
	s := newTestStore()

	require.True(t, s.Observe("A", 1000, sampleEvent("a1", 0.8, 100)))
	require.True(t, s.Observe("B", 2000, sampleEvent("b1", 0.2, 400)))
	require.True(t, s.Observe("A", 5000, sampleEvent("a2", 0.9, 120)))
	require.True(t, s.Observe("B", 6000, sampleEvent("b2", 0.4, 200)))

	// Advancing A's watermark closes A's window only.
	require.True(t, s.Observe("A", 15000, sampleEvent("a3", 0.5, 90)))
	closed := s.CloseExpired()
	require.Len(t, closed, 1)
	assert.Equal(t, "A", closed[0].Key)

	resultA, err := closed[0].Aggregate.Average(time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(2), resultA.Count)
	assert.InDelta(t, 0.85, resultA.AvgAccuracy, 1e-9)

	// B's window is untouched by A's events.
	require.True(t, s.Observe("B", 15000, sampleEvent("b3", 0.6, 50)))
	closed = s.CloseExpired()
	require.Len(t, closed, 1)
	assert.Equal(t, "B", closed[0].Key)

	resultB, err := closed[0].Aggregate.Average(time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(2), resultB.Count)
	assert.InDelta(t, 0.3, resultB.AvgAccuracy, 1e-9)
	assert.InDelta(t, 300.0, resultB.AvgDelay, 1e-9)
}

func TestStoreClosesMultipleWindowsInOrder(t *testing.T) {
	s := newTestStore()

	require.True(t, s.Observe("A", 1000, sampleEvent("a1", 0.8, 100)))
	require.True(t, s.Observe("A", 11000, sampleEvent("a2", 0.9, 120)))
	require.True(t, s.Observe("B", 1000, sampleEvent("b1", 0.4, 300)))

	// One jump far ahead closes both of A's windows at once.
	require.True(t, s.Observe("A", 40000, sampleEvent("a3", 0.5, 90)))
	require.True(t, s.Observe("B", 40000, sampleEvent("b2", 0.6, 50)))

	closed := s.CloseExpired()
	require.Len(t, closed, 3)
	assert.Equal(t, "A", closed[0].Key)
	assert.Equal(t, int64(0), closed[0].Window.Start)
	assert.Equal(t, "A", closed[1].Key)
	assert.Equal(t, int64(10000), closed[1].Window.Start)
	assert.Equal(t, "B", closed[2].Key)
	assert.Equal(t, int64(0), closed[2].Window.Start)
}

func TestStoreOpenWindowCount(t *testing.T) {
	s := newTestStore()
	assert.Equal(t, 0, s.OpenWindows())

	s.Observe("A", 1000, sampleEvent("a1", 0.8, 100))
	s.Observe("B", 1000, sampleEvent("b1", 0.4, 300))
	assert.Equal(t, 2, s.OpenWindows())

	s.Observe("A", 15000, sampleEvent("a2", 0.9, 120))
	s.CloseExpired()
	assert.Equal(t, 2, s.OpenWindows(), "A's [10s,20s) and B's [0,10s)")
}
