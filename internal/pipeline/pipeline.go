package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/ckn-edge/qoeflow/internal/config"
	"github.com/ckn-edge/qoeflow/internal/event"
)

// Pipeline orchestrates the stages: consumer, decoding, windowed
// aggregation, emission.
type Pipeline struct {
	cfg        *config.Config
	consumer   *Consumer
	aggregator *Aggregator
	emitter    *Emitter
	logger     *zap.Logger

	records chan Record
	events  chan KeyedEvent
	results chan Result
}

// New creates and wires up a new processing pipeline.
func New(cfg *config.Config, logger *zap.Logger) (*Pipeline, error) {
	initLogger := logger.Named("pipeline.init")
	initLogger.Debug("Creating pipeline components...")

	const channelBufferSize = 100
	records := make(chan Record, channelBufferSize)
	events := make(chan KeyedEvent, channelBufferSize)
	results := make(chan Result, channelBufferSize)

	consumerInstance, err := NewConsumer(cfg.Kafka, records, logger.Named("consumer"))
	if err != nil {
		initLogger.Error("Failed to create consumer", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrConsumerCreationFailed, err)
	}

	aggregatorInstance := NewAggregator(cfg.Pipeline, events, results, logger.Named("aggregator"))

	emitterInstance, err := NewEmitter(cfg.Kafka, results, logger.Named("emitter"))
	if err != nil {
		initLogger.Error("Failed to create emitter", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrEmitterCreationFailed, err)
	}

	p := &Pipeline{
		cfg:        cfg,
		consumer:   consumerInstance,
		aggregator: aggregatorInstance,
		emitter:    emitterInstance,
		logger:     logger.Named("pipeline"),
		records:    records,
		events:     events,
		results:    results,
	}

	initLogger.Info("Pipeline instance created successfully")
	return p, nil
}

// Run starts all pipeline components and waits for them to complete or
// context cancellation.
func (p *Pipeline) Run(ctx context.Context) error {
	sugar := p.logger.Sugar()
	var wg sync.WaitGroup
	pipelineErr := make(chan error, 4) // consumer, decoder, aggregator, emitter

	sugar.Info("Pipeline Run: Starting components...")

	wg.Add(4)
	go p.runConsumer(ctx, &wg, pipelineErr)
	go p.runDecoder(ctx, &wg)
	go p.runAggregator(ctx, &wg, pipelineErr)
	go p.runEmitter(ctx, &wg, pipelineErr)

	// Wait for context cancellation or the first error from any component
	var firstErr error
	select {
	case <-ctx.Done():
		sugar.Info("Pipeline Run: Context cancelled. Waiting for components to finish...")
		firstErr = ctx.Err()
	case err := <-pipelineErr:
		sugar.Errorw("Pipeline Run: Received error from a component, initiating shutdown...", zap.Error(err))
		firstErr = err
	}

	wg.Wait()
	sugar.Info("Pipeline Run: All components finished.")

	if firstErr != nil && !errors.Is(firstErr, context.Canceled) {
		return firstErr
	}
	return nil
}

// runConsumer executes the consumer component logic in a goroutine.
func (p *Pipeline) runConsumer(ctx context.Context, wg *sync.WaitGroup, errCh chan<- error) {
	defer wg.Done()
	defer func() {
		close(p.records)
		p.logger.Debug("Records channel closed")
	}()

	if err := p.consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		p.logger.Error("Consumer component exited with error", zap.Error(err))
		errCh <- fmt.Errorf("%w: %w", ErrConsumerRunFailed, err)
	} else {
		p.logger.Debug("Consumer goroutine finished")
	}
}

// runDecoder turns raw records into keyed events. Undecodable records are
// skipped with a warning; a broken payload must not stall the stream.
func (p *Pipeline) runDecoder(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()
	defer func() {
		close(p.events)
		p.logger.Debug("Events channel closed")
	}()

	decoderLogger := p.logger.Named("decoder").Sugar()
	decoderLogger.Debug("Starting decoder goroutine...")

	for {
		select {
		case rec, ok := <-p.records:
			if !ok {
				decoderLogger.Debug("Decoder finished (records channel closed).")
				return
			}

			ev, err := event.Decode(rec.Value)
			if err != nil {
				eventsDecodeFailed.Inc()
				decoderLogger.Warnw("Failed to decode record, skipping", "key", rec.Key, zap.Error(err))
				continue
			}

			select {
			case p.events <- KeyedEvent{Key: rec.Key, Event: ev}:
			case <-ctx.Done():
				decoderLogger.Debug("Decoder context cancelled during send.", zap.Error(ctx.Err()))
				return
			}

		case <-ctx.Done():
			decoderLogger.Debug("Decoder context cancelled while waiting for record.", zap.Error(ctx.Err()))
			return
		}
	}
}

// runAggregator executes the aggregator component logic in a goroutine.
func (p *Pipeline) runAggregator(ctx context.Context, wg *sync.WaitGroup, errCh chan<- error) {
	defer wg.Done()
	defer func() {
		close(p.results)
		p.logger.Debug("Results channel closed")
	}()

	if err := p.aggregator.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		p.logger.Error("Aggregator component exited with error", zap.Error(err))
		errCh <- fmt.Errorf("%w: %w", ErrAggregatorRunFailed, err)
	} else {
		p.logger.Debug("Aggregator goroutine finished")
	}
}

// runEmitter executes the emitter component logic in a goroutine.
func (p *Pipeline) runEmitter(ctx context.Context, wg *sync.WaitGroup, errCh chan<- error) {
	defer wg.Done()

	if err := p.emitter.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		p.logger.Error("Emitter component exited with error", zap.Error(err))
		errCh <- fmt.Errorf("%w: %w", ErrEmitterRunFailed, err)
	} else {
		p.logger.Debug("Emitter goroutine finished")
	}
}
