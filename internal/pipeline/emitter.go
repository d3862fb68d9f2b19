package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/ckn-edge/qoeflow/internal/config"
	"github.com/ckn-edge/qoeflow/internal/event"
)

// Emitter writes closed-window results to the output topic, keyed by the
// original request key. Delivery guarantees beyond the write call are the
// broker's concern; there is no retry logic here.
type Emitter struct {
	writer *kafka.Writer
	input  <-chan Result
	logger *zap.Logger
}

// NewEmitter creates and configures a new Kafka emitter instance.
func NewEmitter(cfg config.KafkaConfig, input <-chan Result, logger *zap.Logger) (*Emitter, error) {
	if len(cfg.Brokers) == 0 || cfg.OutputTopic == "" {
		logger.Error("Kafka configuration validation failed",
			zap.Strings("brokers", cfg.Brokers),
			zap.String("topic", cfg.OutputTopic),
		)
		return nil, ErrInvalidKafkaConfig
	}

	w := &kafka.Writer{
		Addr:        kafka.TCP(cfg.Brokers...),
		Topic:       cfg.OutputTopic,
		Balancer:    &kafka.Hash{}, // same key keeps the same partition
		Logger:      kafkaZapLogger{logger.Named("kafka-writer").WithOptions(zap.AddCallerSkip(1))},
		ErrorLogger: kafkaZapErrorLogger{logger.Named("kafka-writer-error").WithOptions(zap.AddCallerSkip(1))},
	}

	logger.Info("Kafka emitter created",
		zap.String("topic", cfg.OutputTopic),
		zap.Strings("brokers", cfg.Brokers),
	)

	return &Emitter{
		writer: w,
		input:  input,
		logger: logger,
	}, nil
}

// Run starts the emitter loop: encode each result and write it out. It
// returns when the input channel closes, the context is cancelled, or a
// write fails.
func (e *Emitter) Run(ctx context.Context) error {
	sugar := e.logger.Sugar()
	sugar.Info("Starting emitter loop...")

	defer func() {
		sugar.Info("Closing Kafka writer...")
		if err := e.writer.Close(); err != nil {
			sugar.Errorw("Failed to close Kafka writer cleanly", zap.Error(err))
		}
		sugar.Info("Emitter loop stopped.")
	}()

	for {
		select {
		case result, ok := <-e.input:
			if !ok {
				sugar.Info("Emitter input channel closed.")
				return nil
			}
			if err := e.emit(ctx, result); err != nil {
				if errors.Is(err, context.Canceled) {
					return context.Canceled
				}
				return err
			}

		case <-ctx.Done():
			sugar.Info("Context cancelled, stopping emitter.")
			return ctx.Err()
		}
	}
}

func (e *Emitter) emit(ctx context.Context, result Result) error {
	payload, err := event.Encode(result.Aggregate)
	if err != nil {
		// Encoding a plain struct does not fail in practice; treat it as a
		// defect and skip the record rather than halting the stream.
		emitFailures.Inc()
		e.logger.Error("Failed to encode result, skipping", zap.String("key", result.Key), zap.Error(err))
		return nil
	}

	err = e.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(result.Key),
		Value: payload,
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return context.Canceled
		}
		emitFailures.Inc()
		e.logger.Error("Failed to write result to Kafka", zap.String("key", result.Key), zap.Error(err))
		return fmt.Errorf("%w: %w", ErrKafkaWriteFailed, err)
	}

	e.logger.Sugar().Infow("Outgoing record",
		zap.String("key", result.Key),
		zap.Int64("window_start", result.Window.Start),
		zap.Int64("window_end", result.Window.End),
		zap.Int64("count", result.Aggregate.Count),
	)
	return nil
}
