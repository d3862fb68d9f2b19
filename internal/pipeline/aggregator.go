package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/spaolacci/murmur3"
	"go.uber.org/zap"

	"github.com/ckn-edge/qoeflow/internal/config"
	"github.com/ckn-edge/qoeflow/internal/event"
	"github.com/ckn-edge/qoeflow/internal/window"
)

// KeyedEvent is a decoded inference event together with its grouping key.
type KeyedEvent struct {
	Key   string
	Event *event.InferenceEvent
}

// Result is one closed window's averages, keyed by the original request key.
type Result struct {
	Key       string
	Window    window.Window
	Aggregate *event.AverageAggregator
}

// Aggregator owns the windowing core. Incoming events are dispatched by
// key hash to a fixed set of shard workers; each shard exclusively owns
// the accumulators and watermarks of its keys, so no window state is ever
// touched by two goroutines. Within a shard, events are processed in
// arrival order.
//
// Window closure is event-time driven: each event advances its key's
// watermark and may close earlier windows. A periodic tick additionally
// sweeps all shards so closures deferred by a quiet input stream are still
// released.
type Aggregator struct {
	cfg    config.PipelineConfig
	input  <-chan KeyedEvent
	output chan<- Result
	logger *zap.Logger
	shards []*shard
}

// NewAggregator creates an Aggregator with cfg.Shards shard workers.
func NewAggregator(cfg config.PipelineConfig, input <-chan KeyedEvent, output chan<- Result, logger *zap.Logger) *Aggregator {
	shards := make([]*shard, cfg.Shards)
	for i := range shards {
		shards[i] = &shard{
			store:     window.NewStore(cfg.WindowSize, cfg.GracePeriod),
			extractor: event.NewTimeExtractor(),
			input:     make(chan KeyedEvent, shardBufferSize),
			tick:      make(chan struct{}, 1),
			logger:    logger.Named("shard").With(zap.Int("shard", i)),
		}
	}
	logger.Info("Aggregator initialized",
		zap.Duration("window_size", cfg.WindowSize),
		zap.Duration("grace_period", cfg.GracePeriod),
		zap.Int("shards", cfg.Shards),
	)
	return &Aggregator{
		cfg:    cfg,
		input:  input,
		output: output,
		logger: logger,
		shards: shards,
	}
}

const shardBufferSize = 64

// Run starts the shard workers and the dispatch loop. It returns once the
// input channel is closed and all shards have drained, or when the context
// is cancelled.
func (a *Aggregator) Run(ctx context.Context) error {
	sugar := a.logger.Sugar()
	sugar.Info("Starting aggregator dispatch loop...")
	defer sugar.Info("Aggregator dispatch loop stopped.")

	var wg sync.WaitGroup
	wg.Add(len(a.shards))
	for _, s := range a.shards {
		go s.run(ctx, a.output, &wg)
	}

	stopShards := func() {
		for _, s := range a.shards {
			close(s.input)
		}
		wg.Wait()
	}

	ticker := time.NewTicker(a.cfg.WindowSize)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-a.input:
			if !ok {
				sugar.Info("Aggregator input channel closed, draining shards...")
				stopShards()
				return nil
			}
			s := a.shards[a.shardIndex(ev.Key)]
			select {
			case s.input <- ev:
			case <-ctx.Done():
				stopShards()
				return ctx.Err()
			}

		case <-ticker.C:
			for _, s := range a.shards {
				select {
				case s.tick <- struct{}{}:
				default: // shard still busy with the previous tick
				}
			}

		case <-ctx.Done():
			sugar.Info("Context cancelled, stopping aggregator.")
			stopShards()
			return ctx.Err()
		}
	}
}

func (a *Aggregator) shardIndex(key string) int {
	return int(murmur3.Sum32([]byte(key)) % uint32(len(a.shards)))
}

// shard is one single-writer worker: it owns the window store for every
// key hashed to it.
type shard struct {
	store     *window.Store
	extractor *event.TimeExtractor
	input     chan KeyedEvent
	tick      chan struct{}
	logger    *zap.Logger

	lastOpen int
}

func (s *shard) run(ctx context.Context, output chan<- Result, wg *sync.WaitGroup) {
	defer wg.Done()

	for {
		select {
		case ev, ok := <-s.input:
			if !ok {
				s.shutdown()
				return
			}
			s.process(ctx, ev, output)

		case <-s.tick:
			s.release(ctx, output)

		case <-ctx.Done():
			s.shutdown()
			return
		}
	}
}

// process merges one event into its window and releases any windows its
// watermark advance has closed.
func (s *shard) process(ctx context.Context, ev KeyedEvent, output chan<- Result) {
	ts := s.extractor.Extract(ev.Event)
	if !s.store.Observe(ev.Key, ts, ev.Event) {
		eventsLateDropped.Inc()
		s.logger.Debug("Dropped late event",
			zap.String("key", ev.Key),
			zap.Int64("event_time", ts),
		)
		return
	}
	s.release(ctx, output)
}

// release emits every window closed under the current watermarks.
func (s *shard) release(ctx context.Context, output chan<- Result) {
	defer s.reportOpenWindows()

	for _, closed := range s.store.CloseExpired() {
		agg, err := closed.Aggregate.Average(time.Now())
		if err != nil {
			// Zero-count accumulator: a defect, surfaced loudly, and the
			// window's emission fails rather than producing NaN averages.
			emptyAccumulators.Inc()
			s.logger.Error("Dropping window with invalid accumulator",
				zap.String("key", closed.Key),
				zap.Int64("window_start", closed.Window.Start),
				zap.Int64("window_end", closed.Window.End),
				zap.Error(err),
			)
			continue
		}

		select {
		case output <- Result{Key: closed.Key, Window: closed.Window, Aggregate: agg}:
			windowsEmitted.Inc()
		case <-ctx.Done():
			return
		}
	}
}

// shutdown discards whatever is still open. Durable window state across
// restarts is the runtime collaborator's concern, not ours; the discard is
// logged so operators can see what was in flight.
func (s *shard) shutdown() {
	if open := s.store.OpenWindows(); open > 0 {
		s.logger.Info("Discarding open windows at shutdown", zap.Int("open_windows", open))
	}
	openWindows.Sub(float64(s.lastOpen))
	s.lastOpen = 0
}

func (s *shard) reportOpenWindows() {
	cur := s.store.OpenWindows()
	openWindows.Add(float64(cur - s.lastOpen))
	s.lastOpen = cur
}
