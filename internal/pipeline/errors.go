package pipeline

import "errors"

var (
	ErrInvalidKafkaConfig     = errors.New("invalid Kafka configuration provided")
	ErrKafkaFetchFailed       = errors.New("failed to fetch message from Kafka")
	ErrKafkaWriteFailed       = errors.New("failed to write message to Kafka")
	ErrConsumerCreationFailed = errors.New("failed to create consumer")
	ErrEmitterCreationFailed  = errors.New("failed to create emitter")
	ErrConsumerRunFailed      = errors.New("consumer component failed")
	ErrAggregatorRunFailed    = errors.New("aggregator component failed")
	ErrEmitterRunFailed       = errors.New("emitter component failed")
)
