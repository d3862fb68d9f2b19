package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus Metrics Definition
var (
	eventsConsumed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "qoeflow_events_consumed_total",
			Help: "Total number of records fetched from the input topic.",
		},
	)
	eventsDecodeFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "qoeflow_events_decode_failures_total",
			Help: "Total number of input records skipped because decoding failed.",
		},
	)
	eventsLateDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "qoeflow_events_late_dropped_total",
			Help: "Total number of events dropped because their window had already closed.",
		},
	)
	openWindows = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "qoeflow_open_windows",
			Help: "Number of currently open (not yet closed) windows across all shards.",
		},
	)
	windowsEmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "qoeflow_windows_emitted_total",
			Help: "Total number of closed windows whose averages were emitted.",
		},
	)
	emitFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "qoeflow_emit_failures_total",
			Help: "Total number of results that could not be written to the output topic.",
		},
	)
	emptyAccumulators = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "qoeflow_empty_accumulators_total",
			Help: "Total number of closed windows dropped due to a zero-count accumulator (invariant violation).",
		},
	)
)
