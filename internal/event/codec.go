package event

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

var (
	ErrDecodeFailed = errors.New("failed to decode inference event")
	ErrEncodeFailed = errors.New("failed to encode aggregate result")
)

// Decode parses a serialized InferenceEvent payload.
// It returns ErrDecodeFailed (wrapping the original error) if unmarshalling fails.
func Decode(data []byte) (*InferenceEvent, error) {
	var ev InferenceEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeFailed, err)
	}
	return &ev, nil
}

// Encode serializes an AverageAggregator for the output topic.
func Encode(agg *AverageAggregator) ([]byte, error) {
	data, err := json.Marshal(agg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncodeFailed, err)
	}
	return data, nil
}
