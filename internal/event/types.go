package event

// InferenceEvent is one inference request as produced upstream. Metric
// fields are raw per-request measurements; identity fields describe where
// the request ran. Timestamp is left loosely typed because producers send
// it either as an epoch-millisecond number or as a numeric string; the
// extractor coerces it.
type InferenceEvent struct {
	ClientID    string  `json:"client_id"`
	ServiceID   string  `json:"service_id"`
	ServerID    string  `json:"server_id"`
	Model       string  `json:"model"`
	Accuracy    float64 `json:"accuracy"`
	Delay       float64 `json:"delay"`
	QoETotal    float64 `json:"qoe_total"`
	QoEDelay    float64 `json:"qoe_delay"`
	QoEAcc      float64 `json:"qoe_acc"`
	PredAcc     float64 `json:"pred_acc"`
	ComputeTime float64 `json:"compute_time"`
	Timestamp   any     `json:"timestamp"`
}

// AverageAggregator is the final per-window result record: per-metric
// averages over all events merged into the window, the event count, the
// identity fields of the last merged event, and the wall-clock time the
// result was computed (epoch milliseconds, independent of event time).
type AverageAggregator struct {
	AvgAccuracy    float64 `json:"avg_accuracy"`
	AvgDelay       float64 `json:"avg_delay"`
	Count          int64   `json:"count"`
	AvgQoETotal    float64 `json:"avg_qoe_total"`
	AvgQoEDelay    float64 `json:"avg_qoe_delay"`
	AvgQoEAcc      float64 `json:"avg_qoe_acc"`
	AvgPredAcc     float64 `json:"avg_pred_acc"`
	AvgComputeTime float64 `json:"avg_compute_time"`
	ClientID       string  `json:"client_id"`
	ServiceID      string  `json:"service_id"`
	ServerID       string  `json:"server_id"`
	Model          string  `json:"model"`
	ProcessedAt    int64   `json:"processed_at"`
}
