// Package worker scores queued attempts and applies the outcomes.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/voicepartner/internal/adapters/repository"
	"github.com/okian/voicepartner/internal/domain/model"
	"github.com/okian/voicepartner/internal/domain/progress"
	"github.com/okian/voicepartner/internal/domain/scoring"
	"github.com/okian/voicepartner/pkg/logger"
	"github.com/okian/voicepartner/pkg/metrics"
)

const poolShutdownTimeout = 30 * time.Second

// Attempt is what workers read off the queue.
type Attempt = model.Attempt

// Updater records a line's best score.
type Updater interface {
	UpdateBest(ctx context.Context, b repository.Best) (bool, error)
}

// Recorder accumulates the learner's progress.
type Recorder interface {
	Record(o model.Outcome) []progress.Achievement
	Snapshot() progress.Snapshot
}

// Queue defines how workers receive attempts.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Attempt
}

// Worker processes attempts until its queue closes or it is stopped.
type Worker interface {
	Run(ctx context.Context)
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue    Queue
	scorer   scoring.Scorer
	updater  Updater
	recorder Recorder
	name     string

	processed atomic.Int64

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// Compile-time interface assertion.
var _ Worker = (*InMemoryWorker)(nil)

// NewInMemoryWorker creates a worker. recorder may be nil.
func NewInMemoryWorker(queue Queue, scorer scoring.Scorer, updater Updater, recorder Recorder, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    queue,
		scorer:   scorer,
		updater:  updater,
		recorder: recorder,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run processes attempts until the queue channel closes, ctx is done or
// Shutdown is called.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	attempts := w.queue.Dequeue(ctx)
	for {
		// A cancelled ctx wins over a ready attempt, which stays queued.
		if ctx.Err() != nil {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case a, ok := <-attempts:
			if !ok {
				return
			}
			metrics.RecordQueueDequeue()
			if err := w.process(ctx, a); err != nil {
				w.logger.Error(ctx, "error processing attempt", logger.Error(err))
			}
		}
	}
}

// Shutdown stops the worker without draining the queue.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Processed returns how many attempts this worker has scored.
func (w *InMemoryWorker) Processed() int64 {
	return w.processed.Load()
}

func (w *InMemoryWorker) process(ctx context.Context, a Attempt) error { //nolint:gocritic // hugeParam: passed by value for channel semantics
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	scoreStart := time.Now()
	res, err := w.scorer.Score(ctx, scoring.Input{AttemptID: a.AttemptID, Target: a.Target, Transcript: a.Transcript})
	metrics.RecordScoringLatency(float64(time.Since(scoreStart).Microseconds()) / 1000)
	if err != nil {
		metrics.RecordScoringError()
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "scoring_error")
		return fmt.Errorf("score attempt %s: %w", a.AttemptID, err)
	}
	metrics.RecordAttemptScored(res.Score)

	ts := a.TS
	if ts.IsZero() {
		ts = time.Now()
	}
	improved, err := w.updater.UpdateBest(ctx, repository.Best{
		LineID:    a.LineID,
		Score:     res.Score,
		AttemptID: a.AttemptID,
		Target:    a.Target,
		TS:        ts,
	})
	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "line_board_error")
		return fmt.Errorf("update line %s: %w", a.LineID, err)
	}

	if w.recorder != nil {
		unlocked := w.recorder.Record(model.Outcome{AttemptID: a.AttemptID, LineID: a.LineID, Score: res.Score, TS: ts})
		for _, ach := range unlocked {
			w.logger.Info(ctx, "achievement unlocked", logger.String("achievement", string(ach.ID)))
		}
		snap := w.recorder.Snapshot()
		metrics.UpdateLearnerProgress(snap.XP, snap.Streak)
	}

	w.processed.Add(1)
	w.logger.Debug(ctx, "attempt scored",
		logger.String("attempt_id", a.AttemptID),
		logger.String("line_id", a.LineID),
		logger.Int("score", res.Score),
		logger.Bool("new_best", improved),
	)
	return nil
}

// Pool manages multiple workers over one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	started atomic.Bool
	logger  logger.Logger
}

// NewPool creates a pool of workerCount workers, defaulting to one per CPU.
func NewPool(workerCount int, queue Queue, scorer scoring.Scorer, updater Updater, recorder Recorder) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}
	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   queue,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		p.workers[i] = NewInMemoryWorker(queue, scorer, updater, recorder, WithName("worker-"+strconv.Itoa(i)))
	}
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Processed returns the number of attempts scored by all workers.
func (p *Pool) Processed() int64 {
	var n int64
	for _, w := range p.workers {
		n += w.Processed()
	}
	return n
}

// Start runs every worker in its own goroutine.
func (p *Pool) Start(ctx context.Context) {
	if !p.started.CompareAndSwap(false, true) {
		return
	}
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	metrics.UpdateWorkerCount(len(p.workers))
}

// Stop stops every worker immediately, leaving any backlog queued.
func (p *Pool) Stop() {
	if !p.started.Load() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), poolShutdownTimeout)
	defer cancel()
	for _, w := range p.workers {
		_ = w.Shutdown(ctx)
	}
	metrics.UpdateWorkerCount(0)
}

// Shutdown closes the queue and waits for workers to drain the backlog. If
// ctx ends first the remaining workers are stopped and ctx's error returned.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}
	if !p.started.Load() {
		return nil
	}
	defer metrics.UpdateWorkerCount(0)

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-ctx.Done():
			p.logger.Warn(ctx, "worker drain timed out", logger.Int("worker_id", i))
			p.Stop()
			return fmt.Errorf("pool shutdown: %w", ctx.Err())
		}
	}
	return nil
}
