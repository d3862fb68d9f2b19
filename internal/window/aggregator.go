package window

import (
	"errors"
	"time"

	"github.com/ckn-edge/qoeflow/internal/event"
)

// ErrEmptyAccumulator reports an accumulator with count == 0 at average
// time. An accumulator only exists because at least one event created it,
// so this can never happen under correct operation; when it does, the
// affected window's emission fails instead of producing NaN averages.
var ErrEmptyAccumulator = errors.New("accumulator has zero count")

// CountSumAggregator is the mutable per (key, window) accumulator: an
// event count, one running sum per metric, and passthrough identity fields
// holding the values of the most recently merged event.
type CountSumAggregator struct {
	Count            int64
	AccuracyTotal    float64
	DelayTotal       float64
	QoETotalSum      float64
	QoEDelayTotal    float64
	QoEAccTotal      float64
	PredAccTotal     float64
	ComputeTimeTotal float64
	ClientID         string
	ServiceID        string
	ServerID         string
	Model            string
}

// Merge folds one event into the accumulator. Identity fields are
// overwritten, not aggregated (last-write-wins), so the passthrough part
// of the result depends on merge order even though the averages do not.
// Downstream consumers rely on "latest event's identity" semantics;
// keep it that way.
func (a *CountSumAggregator) Merge(ev *event.InferenceEvent) {
	a.Count++
	a.AccuracyTotal += ev.Accuracy
	a.DelayTotal += ev.Delay
	a.QoETotalSum += ev.QoETotal
	a.QoEDelayTotal += ev.QoEDelay
	a.QoEAccTotal += ev.QoEAcc
	a.PredAccTotal += ev.PredAcc
	a.ComputeTimeTotal += ev.ComputeTime
	a.ClientID = ev.ClientID
	a.ServiceID = ev.ServiceID
	a.ServerID = ev.ServerID
	a.Model = ev.Model
}

// Average converts the accumulator into the immutable result record,
// dividing each sum by the count and stamping the current wall-clock time.
func (a *CountSumAggregator) Average(now time.Time) (*event.AverageAggregator, error) {
	if a.Count == 0 {
		return nil, ErrEmptyAccumulator
	}
	n := float64(a.Count)
	return &event.AverageAggregator{
		AvgAccuracy:    a.AccuracyTotal / n,
		AvgDelay:       a.DelayTotal / n,
		Count:          a.Count,
		AvgQoETotal:    a.QoETotalSum / n,
		AvgQoEDelay:    a.QoEDelayTotal / n,
		AvgQoEAcc:      a.QoEAccTotal / n,
		AvgPredAcc:     a.PredAccTotal / n,
		AvgComputeTime: a.ComputeTimeTotal / n,
		ClientID:       a.ClientID,
		ServiceID:      a.ServiceID,
		ServerID:       a.ServerID,
		Model:          a.Model,
		ProcessedAt:    now.UnixMilli(),
	}, nil
}
