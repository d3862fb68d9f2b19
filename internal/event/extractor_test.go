package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExtractNumericTimestamp(t *testing.T) {
	x := NewTimeExtractor()

	// JSON numbers decode as float64.
	ts := x.Extract(&InferenceEvent{Timestamp: float64(1700000000123)})
	assert.Equal(t, int64(1700000000123), ts)
}

func TestExtractStringTimestamp(t *testing.T) {
	x := NewTimeExtractor()

	ts := x.Extract(&InferenceEvent{Timestamp: "1700000000456"})
	assert.Equal(t, int64(1700000000456), ts)
}

func TestExtractFallsBackToPreviousTimestamp(t *testing.T) {
	x := NewTimeExtractor()

	first := x.Extract(&InferenceEvent{Timestamp: float64(1700000000123)})
	assert.Equal(t, int64(1700000000123), first)

	// Missing, unparsable, and non-positive timestamps all reuse the
	// previous one.
	assert.Equal(t, first, x.Extract(&InferenceEvent{Timestamp: nil}))
	assert.Equal(t, first, x.Extract(&InferenceEvent{Timestamp: "not-a-number"}))
	assert.Equal(t, first, x.Extract(&InferenceEvent{Timestamp: float64(-5)}))
}

func TestExtractFallsBackToIngestionTimeWhenNoHistory(t *testing.T) {
	frozen := time.UnixMilli(1700000099000)
	x := &TimeExtractor{now: func() time.Time { return frozen }}

	ts := x.Extract(&InferenceEvent{Timestamp: nil})
	assert.Equal(t, frozen.UnixMilli(), ts)

	// Ingestion-time fallback does not become "previous": only real
	// event timestamps do.
	later := time.UnixMilli(1700000100000)
	x.now = func() time.Time { return later }
	assert.Equal(t, later.UnixMilli(), x.Extract(&InferenceEvent{Timestamp: nil}))
}
