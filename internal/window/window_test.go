package window

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAssignerTumblingBoundaries(t *testing.T) {
	a := NewAssigner(10 * time.Second)

	// Everything inside [0, 10s) maps to the same window.
	assert.Equal(t, Window{Start: 0, End: 10000}, a.Assign(0))
	assert.Equal(t, Window{Start: 0, End: 10000}, a.Assign(1000))
	assert.Equal(t, Window{Start: 0, End: 10000}, a.Assign(9999))

	// The end boundary is exclusive.
	assert.Equal(t, Window{Start: 10000, End: 20000}, a.Assign(10000))
	assert.Equal(t, Window{Start: 10000, End: 20000}, a.Assign(15000))
}

func TestAssignerWindowsAreDisjoint(t *testing.T) {
	a := NewAssigner(5 * time.Second)

	prev := a.Assign(0)
	for ts := int64(1); ts < 20000; ts += 777 {
		w := a.Assign(ts)
		assert.True(t, w.Start <= ts && ts < w.End, "ts %d outside its window %+v", ts, w)
		if w != prev {
			assert.Equal(t, prev.End, w.Start, "windows must tile without gaps")
			prev = w
		}
	}
}

func TestAssignerPreEpochTimestamp(t *testing.T) {
	a := NewAssigner(10 * time.Second)
	assert.Equal(t, Window{Start: -10000, End: 0}, a.Assign(-1))
	assert.Equal(t, Window{Start: -10000, End: 0}, a.Assign(-10000))
}
