package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeInferenceEvent(t *testing.T) {
	payload := []byte(`{
		"client_id": "client_1",
		"service_id": "qoe-inference",
		"server_id": "edge_2",
		"model": "resnet50",
		"accuracy": 0.92,
		"delay": 104.5,
		"qoe_total": 0.81,
		"qoe_delay": 0.75,
		"qoe_acc": 0.88,
		"pred_acc": 0.9,
		"compute_time": 31.2,
		"timestamp": 1700000000123
	}`)

	ev, err := Decode(payload)
	require.NoError(t, err)

	assert.Equal(t, "client_1", ev.ClientID)
	assert.Equal(t, "resnet50", ev.Model)
	assert.InDelta(t, 0.92, ev.Accuracy, 1e-9)
	assert.InDelta(t, 104.5, ev.Delay, 1e-9)
	assert.InDelta(t, 31.2, ev.ComputeTime, 1e-9)
	assert.NotNil(t, ev.Timestamp)
}

func TestDecodeRejectsMalformedPayload(t *testing.T) {
	_, err := Decode([]byte(`{"accuracy": `))
	assert.ErrorIs(t, err, ErrDecodeFailed)
}

func TestEncodeResultFieldNames(t *testing.T) {
	data, err := Encode(&AverageAggregator{
		AvgAccuracy: 0.85,
		AvgDelay:    110,
		Count:       2,
		ClientID:    "client_1",
		ProcessedAt: 1700000000999,
	})
	require.NoError(t, err)

	s := string(data)
	assert.Contains(t, s, `"avg_accuracy"`)
	assert.Contains(t, s, `"avg_delay"`)
	assert.Contains(t, s, `"count":2`)
	assert.Contains(t, s, `"client_id":"client_1"`)
	assert.Contains(t, s, `"processed_at":1700000000999`)
}
