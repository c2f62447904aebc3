// Package service wires the inference pipeline, the prediction memo, the
// preset generator and the batch worker pool behind the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	jobqueue "github.com/okian/mobicost/internal/adapters/mq/queue"
	workerpool "github.com/okian/mobicost/internal/adapters/mq/worker"
	"github.com/okian/mobicost/internal/domain/features"
	"github.com/okian/mobicost/internal/domain/inference"
	"github.com/okian/mobicost/internal/domain/memo"
	"github.com/okian/mobicost/internal/domain/model"
	"github.com/okian/mobicost/internal/domain/tier"
	"github.com/okian/mobicost/pkg/logger"
	"github.com/okian/mobicost/pkg/metrics"
)

const (
	defaultQueueSize    = 1024
	defaultMemoSize     = 4096
	defaultMaxBatchSize = 256
	defaultBatchTimeout = 10 * time.Second
)

// Service implements the dependencies of the HTTP API.
type Service struct {
	mu sync.RWMutex
	// enqueueMu makes the capacity check and the enqueue of one batch atomic
	// with respect to other batches.
	enqueueMu sync.Mutex

	pipeline *inference.Pipeline
	memo     memo.Memo
	presets  *tier.Generator
	queue    *jobqueue.InMemoryQueue
	pool     *workerpool.Pool

	workerCount  int
	queueSize    int
	memoSize     int
	maxBatchSize int
	batchTimeout time.Duration
	presetSeed   int64

	started   bool
	startedAt time.Time
	stopCh    chan struct{}

	predictions [tier.Count]atomic.Int64
	failures    atomic.Int64
	memoHits    atomic.Int64
	memoMisses  atomic.Int64
	batches     atomic.Int64
	rejected    atomic.Int64

	logger logger.Logger
}

// New constructs a Service around a loaded pipeline. Single predictions work
// immediately; batch inference needs Start.
func New(p *inference.Pipeline, opts ...Option) *Service {
	s := &Service{
		pipeline:     p,
		workerCount:  runtime.NumCPU(),
		queueSize:    defaultQueueSize,
		memoSize:     defaultMemoSize,
		maxBatchSize: defaultMaxBatchSize,
		batchTimeout: defaultBatchTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.memo = memo.New(memo.WithMaxSize(s.memoSize))
	s.presets = tier.NewGenerator(s.presetSeed)
	return s
}

// Start launches the batch queue, the worker pool and the runtime sampler.
// Cancelling ctx does not stop them; Stop drains the queue and ends them.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.pipeline == nil {
		return fmt.Errorf("start: %w", inference.ErrMissingArtifact)
	}

	s.logger.Info(ctx, "starting prediction service...")

	runCtx := context.WithoutCancel(ctx)
	s.stopCh = make(chan struct{})
	s.queue = jobqueue.NewInMemoryQueue(jobqueue.WithCapacity(s.queueSize))
	s.pool = workerpool.NewPool(s.workerCount, s.queue, s)
	s.pool.Start(runCtx)
	go s.sampleRuntime(runCtx, s.stopCh)

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "prediction service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("memoSize", s.memoSize),
		logger.String("classifier", s.pipeline.ClassifierKind()),
		logger.String("scaler", s.pipeline.ScalerKind()),
	)
	return nil
}

// Stop closes the queue, drains the workers and stops background loops.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping prediction service...")

	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool shutdown", logger.Error(err))
	}
	close(s.stopCh)

	s.started = false
	s.logger.Info(ctx, "prediction service stopped")
}

// Predict runs the pipeline for one spec, consulting the memo first.
func (s *Service) Predict(ctx context.Context, spec model.RawSpec) (model.Prediction, error) {
	start := time.Now()
	p, err := s.predict(ctx, spec)
	if err != nil {
		s.failures.Add(1)
		kind := inference.ErrorKind(err)
		metrics.RecordPredictionError(kind)
		metrics.RecordErrorByComponent("pipeline", kind)
		return model.Prediction{}, err
	}
	s.predictions[p.Tier].Add(1)
	metrics.RecordPrediction(p.Label, p.Confidence, float64(time.Since(start).Microseconds())/1000)
	return p, nil
}

func (s *Service) predict(ctx context.Context, spec model.RawSpec) (model.Prediction, error) {
	if s.pipeline == nil {
		return model.Prediction{}, inference.ErrMissingArtifact
	}
	v, err := features.Assemble(spec)
	if err != nil {
		return model.Prediction{}, err
	}
	key := v.Key()
	if p, ok := s.memo.Get(ctx, key); ok {
		s.memoHits.Add(1)
		metrics.RecordMemoHit()
		return p, nil
	}
	s.memoMisses.Add(1)
	metrics.RecordMemoMiss()

	p, err := s.pipeline.PredictVector(ctx, v)
	if err != nil {
		return model.Prediction{}, err
	}
	s.memo.Put(ctx, key, p)
	return p, nil
}

// PredictBatch runs the pipeline for every spec on the worker pool and
// returns one outcome per spec, in input order. Item failures are reported
// per item; the returned error covers the batch as a whole.
func (s *Service) PredictBatch(ctx context.Context, specs []model.RawSpec) ([]model.Outcome, error) {
	switch {
	case len(specs) == 0:
		return nil, ErrEmptyBatch
	case len(specs) > s.maxBatchSize:
		return nil, fmt.Errorf("%w: %d items, max %d", ErrBatchTooLarge, len(specs), s.maxBatchSize)
	}

	s.mu.RLock()
	started, q := s.started, s.queue
	s.mu.RUnlock()
	if !started {
		return nil, ErrNotStarted
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	batchID := uuid.NewString()
	reply := make(chan model.Outcome, len(specs))
	if err := s.enqueue(ctx, q, batchID, specs, reply); err != nil {
		return nil, err
	}
	s.batches.Add(1)
	metrics.RecordBatchSize(len(specs))

	wctx, cancel := context.WithTimeout(ctx, s.batchTimeout)
	defer cancel()

	out := make([]model.Outcome, len(specs))
	answered := make([]bool, len(specs))
	for remaining := len(specs); remaining > 0; remaining-- {
		select {
		case o := <-reply:
			out[o.Index] = o
			answered[o.Index] = true
		case <-wctx.Done():
			for i := range out {
				if !answered[i] {
					out[i] = model.Outcome{Index: i, Err: fmt.Errorf("%w: %w", ErrBatchTimeout, wctx.Err())}
				}
			}
			s.logger.Warn(ctx, "batch timed out",
				logger.String("batch_id", batchID),
				logger.Int("unanswered", remaining),
			)
			return out, nil
		}
	}
	return out, nil
}

// enqueue queues every spec of a batch or, when the queue lacks room for all
// of them, none. Workers only free slots, so holding enqueueMu keeps the
// capacity check valid until the last job is in.
func (s *Service) enqueue(ctx context.Context, q *jobqueue.InMemoryQueue, batchID string, specs []model.RawSpec, reply chan model.Outcome) error {
	s.enqueueMu.Lock()
	defer s.enqueueMu.Unlock()

	if free := q.Cap() - q.Len(ctx); free < len(specs) {
		return s.backpressure(ctx, len(specs), free)
	}
	qctx := context.WithoutCancel(ctx)
	for i, spec := range specs {
		if !q.Enqueue(qctx, model.Job{BatchID: batchID, Index: i, Spec: spec, Reply: reply}) {
			// Only a concurrent Stop closes the queue here. Items already
			// queued are drained; their answers land in the buffered reply
			// channel and are discarded.
			return fmt.Errorf("%w: queue closed after %d of %d items", ErrNotStarted, i, len(specs))
		}
	}
	return nil
}

func (s *Service) backpressure(ctx context.Context, size, free int) error {
	s.rejected.Add(1)
	metrics.RecordBatchBackpressure()
	s.logger.Warn(ctx, "batch rejected", logger.Int("items", size), logger.Int("free", free))
	return fmt.Errorf("%w: %d items, %d free slots", ErrBackpressure, size, free)
}

// Preset generates a quick-start spec for the tier named by id.
func (s *Service) Preset(_ context.Context, id string) (tier.Tier, model.RawSpec, error) {
	t, err := tier.Parse(id)
	if err != nil {
		return tier.Tier{}, model.RawSpec{}, err
	}
	spec, err := s.presets.Preset(t.Index)
	if err != nil {
		return tier.Tier{}, model.RawSpec{}, err
	}
	metrics.RecordPresetGenerated(t.Label)
	return t, spec, nil
}

// Ready reports the artifact kinds and whether batch inference is running.
func (s *Service) Ready() model.Readiness {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r := model.Readiness{Ready: s.pipeline != nil && s.started}
	if s.pipeline != nil {
		r.Classifier = s.pipeline.ClassifierKind()
		r.Scaler = s.pipeline.ScalerKind()
	}
	if s.pool != nil && s.started {
		r.Workers = s.pool.Size()
	}
	return r
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byTier := make(map[string]int64, tier.Count)
	for i := range s.predictions {
		byTier[tier.Label(i)] = s.predictions[i].Load()
	}
	stats := map[string]interface{}{
		"started":         s.started,
		"workerCount":     s.workerCount,
		"queueSize":       s.queueSize,
		"memoSize":        s.memoSize,
		"maxBatchSize":    s.maxBatchSize,
		"predictions":     byTier,
		"failures":        s.failures.Load(),
		"memoHits":        s.memoHits.Load(),
		"memoMisses":      s.memoMisses.Load(),
		"memoEntries":     s.memo.Size(),
		"batches":         s.batches.Load(),
		"batchesRejected": s.rejected.Load(),
		"classifierKind":  "",
		"scalerKind":      "",
		"uptimeSeconds":   0.0,
		"queueLength":     0,
	}
	if s.pipeline != nil {
		stats["classifierKind"] = s.pipeline.ClassifierKind()
		stats["scalerKind"] = s.pipeline.ScalerKind()
	}
	if s.started {
		stats["queueLength"] = s.queue.Len(context.Background())
		stats["uptimeSeconds"] = time.Since(s.startedAt).Seconds()
	}
	metrics.UpdateMemoEntries(s.memo.Size())
	return stats
}

// sampleRuntime publishes runtime gauges until the service stops.
func (s *Service) sampleRuntime(ctx context.Context, stop <-chan struct{}) {
	ticker := time.NewTicker(metrics.RefreshInterval())
	defer ticker.Stop()

	var lastGC uint32
	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			var ms runtime.MemStats
			runtime.ReadMemStats(&ms)
			metrics.UpdateSystemMemoryUsage(ms.Alloc)
			metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
			metrics.UpdateMemoEntries(s.memo.Size())
			if ms.NumGC != lastGC {
				pause := ms.PauseNs[(ms.NumGC+255)%256]
				metrics.RecordSystemGCPauseTime(float64(pause) / float64(time.Millisecond))
				lastGC = ms.NumGC
			}
		}
	}
}

// IsBadInput reports whether err was caused by the caller's input rather
// than the service.
func IsBadInput(err error) bool {
	return errors.Is(err, inference.ErrInvalidFeatureVector) ||
		errors.Is(err, inference.ErrTransformFailure) ||
		errors.Is(err, ErrEmptyBatch) ||
		errors.Is(err, ErrBatchTooLarge)
}
