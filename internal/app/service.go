// Package service wires the practice components together and implements the
// dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	attemptqueue "github.com/okian/voicepartner/internal/adapters/mq/queue"
	workerpool "github.com/okian/voicepartner/internal/adapters/mq/worker"
	"github.com/okian/voicepartner/internal/adapters/repository"
	"github.com/okian/voicepartner/internal/adapters/speech"
	"github.com/okian/voicepartner/internal/domain/dedupe"
	"github.com/okian/voicepartner/internal/domain/model"
	"github.com/okian/voicepartner/internal/domain/progress"
	"github.com/okian/voicepartner/internal/domain/scoring"
	"github.com/okian/voicepartner/internal/domain/settings"
	"github.com/okian/voicepartner/internal/domain/types"
	"github.com/okian/voicepartner/pkg/logger"
	"github.com/okian/voicepartner/pkg/metrics"
)

// Line board orderings.
const (
	OrderBest  = "best"
	OrderWorst = "worst"
)

// Service implements the API dependencies for the practice system.
type Service struct {
	mu sync.RWMutex

	lines      *repository.TreapStore
	deduper    dedupe.Deduper
	queue      *attemptqueue.InMemoryQueue
	scorer     scoring.Scorer
	workerPool *workerpool.Pool
	tracker    *progress.Tracker
	settings   *settings.Store
	synth      speech.Synthesizer

	workerCount     int
	queueSize       int
	dedupeSize      int
	xpPerLevel      int
	defaultLocale   string
	initial         settings.Settings
	shutdownTimeout time.Duration

	started   bool
	startedAt time.Time
	// stopRun cancels the context workers and the line board run on.
	stopRun context.CancelFunc

	logger logger.Logger
}

// New constructs a Service. Components are created here so read paths work
// before Start; Start only launches the workers.
func New(opts ...Option) (*Service, error) {
	s := &Service{
		workerCount:     runtime.NumCPU(),
		queueSize:       10_000,
		dedupeSize:      50_000,
		xpPerLevel:      500,
		defaultLocale:   speech.DefaultLocale,
		initial:         settings.Defaults(),
		shutdownTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	store, err := settings.NewStore(s.initial)
	if err != nil {
		return nil, fmt.Errorf("initial settings: %w", err)
	}
	s.settings = store
	s.tracker = progress.NewTracker(
		progress.WithXPPerLevel(s.xpPerLevel),
		progress.WithDailyGoal(func() int { return store.Get().DailyGoal }),
	)
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = attemptqueue.NewInMemoryQueue(attemptqueue.WithCapacity(s.queueSize))
	if s.scorer == nil {
		s.scorer = scoring.NewHeuristicScorer()
	}
	if s.synth == nil {
		s.synth = speech.NewLogSynthesizer(s.logger.Named("partner"))
	}
	return s, nil
}

// Start creates the line board and starts the worker pool. Workers outlive
// ctx: cancelling it does not stop them, only Stop does.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.logger.Info(ctx, "starting practice service...")

	if s.queue.IsClosed() {
		s.queue = attemptqueue.NewInMemoryQueue(attemptqueue.WithCapacity(s.queueSize))
	}
	runCtx, stopRun := context.WithCancel(context.WithoutCancel(ctx))
	s.stopRun = stopRun
	s.lines = repository.NewTreapStore(runCtx)
	s.workerPool = workerpool.NewPool(s.workerCount, s.queue, s.scorer, s.lines, s.tracker)
	s.workerPool.Start(runCtx)

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "practice service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queue_size", s.queueSize),
		logger.Int("dedupe_size", s.dedupeSize),
	)
	return nil
}

// Stop closes the queue and lets workers drain the backlog for up to the
// shutdown timeout; cancellation of ctx does not cut the drain short.
// Attempts still queued when the timeout expires are dropped and their IDs
// forgotten so clients can resubmit them.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping practice service...", logger.Int("backlog", s.queue.Len(ctx)))

	drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
	defer cancel()
	// Past the deadline, abort in-flight scoring too.
	context.AfterFunc(drainCtx, s.stopRun)
	err := s.workerPool.Shutdown(drainCtx)
	s.stopRun()
	if dropped := s.forgetBacklog(ctx); dropped > 0 {
		s.logger.Warn(ctx, "queued attempts dropped at shutdown", logger.Int("dropped", dropped))
	}
	if closeErr := s.lines.Close(); closeErr != nil {
		err = errors.Join(err, closeErr)
	}

	s.started = false
	s.logger.Info(ctx, "practice service stopped", logger.Bool("clean", err == nil))
	return err
}

// forgetBacklog empties the closed queue and unrecords each attempt ID left
// in it. Caller holds s.mu.
func (s *Service) forgetBacklog(ctx context.Context) int {
	_ = s.queue.Close()
	dropped := 0
	for a := range s.queue.Dequeue(ctx) {
		s.deduper.Unrecord(ctx, a.AttemptID)
		dropped++
	}
	return dropped
}

// SeenAndRecord atomically checks if an attempt ID was seen and records it
// if not.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordAttemptDuplicate()
	}
	return seen
}

// Unrecord forgets an attempt ID so a rejected submission can be retried.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Size returns the number of remembered attempt IDs.
func (s *Service) Size() int64 {
	return s.deduper.Size()
}

// Enqueue submits an attempt for asynchronous scoring. It fills in the line
// ID, locale and timestamp when the caller left them empty.
func (s *Service) Enqueue(ctx context.Context, a model.Attempt) error {
	if a.LineID == "" {
		a.LineID = scoring.LineKey(a.Target)
	}
	if a.Locale == "" {
		a.Locale = s.defaultLocale
	}
	if a.TS.IsZero() {
		a.TS = time.Now().UTC()
	}

	s.mu.RLock()
	started, q := s.started, s.queue
	s.mu.RUnlock()
	if !started {
		return ErrNotStarted
	}

	if err := q.Enqueue(ctx, a); err != nil {
		if errors.Is(err, attemptqueue.ErrQueueFull) || errors.Is(err, attemptqueue.ErrQueueClosed) {
			return fmt.Errorf("%w: %w", ErrBackpressure, err)
		}
		return err
	}
	s.logger.Debug(ctx, "attempt queued",
		logger.String("attempt_id", a.AttemptID),
		logger.String("line_id", a.LineID),
	)
	return nil
}

// ScoreNow scores an attempt synchronously without touching the line board
// or progress.
func (s *Service) ScoreNow(ctx context.Context, target, attempt string) (scoring.Result, error) {
	start := time.Now()
	res, err := s.scorer.Score(ctx, scoring.Input{Target: target, Transcript: attempt})
	metrics.RecordScoringLatency(float64(time.Since(start).Microseconds()) / 1000)
	if err != nil {
		metrics.RecordScoringError()
		return scoring.Result{}, err
	}
	return res, nil
}

// Lines returns up to n board rows, strongest first for OrderBest and
// weakest first for OrderWorst.
func (s *Service) Lines(ctx context.Context, n int, order string) ([]types.LineEntry, error) {
	board, err := s.board()
	if err != nil {
		return nil, err
	}
	var entries []repository.Entry
	switch order {
	case "", OrderBest:
		entries, err = board.TopN(ctx, n)
	case OrderWorst:
		entries, err = board.BottomN(ctx, n)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownOrder, order)
	}
	if err != nil {
		return nil, err
	}
	out := make([]types.LineEntry, len(entries))
	for i, e := range entries {
		out[i] = toLineEntry(e)
	}
	return out, nil
}

// Line returns the board row of one line.
func (s *Service) Line(ctx context.Context, lineID string) (types.LineEntry, error) {
	board, err := s.board()
	if err != nil {
		return types.LineEntry{}, err
	}
	e, err := board.Rank(ctx, lineID)
	if err != nil {
		return types.LineEntry{}, err
	}
	return toLineEntry(e), nil
}

// Progress returns the learner's progress.
func (s *Service) Progress(ctx context.Context) progress.Snapshot {
	return s.tracker.Snapshot()
}

// Settings returns the current settings.
func (s *Service) Settings(ctx context.Context) settings.Settings {
	return s.settings.Get()
}

// UpdateSettings applies p and returns the stored result.
func (s *Service) UpdateSettings(ctx context.Context, p settings.Patch) (settings.Settings, error) {
	next, err := s.settings.Apply(p)
	if err != nil {
		return settings.Settings{}, err
	}
	metrics.RecordSettingsUpdate()
	s.logger.Info(ctx, "settings updated", logger.String("accent", next.Accent), logger.String("persona", next.Persona))
	return next, nil
}

// ExportSettings encodes the current settings.
func (s *Service) ExportSettings(ctx context.Context, format string) ([]byte, error) {
	return s.settings.Get().Export(format)
}

// ImportSettings replaces the settings with a decoded document.
func (s *Service) ImportSettings(ctx context.Context, data []byte, format string) (settings.Settings, error) {
	next, err := settings.Import(data, format)
	if err != nil {
		return settings.Settings{}, err
	}
	if err := s.settings.Replace(next); err != nil {
		return settings.Settings{}, err
	}
	metrics.RecordSettingsUpdate()
	s.logger.Info(ctx, "settings imported", logger.String("format", format))
	return next, nil
}

// Speak has the partner say text with the current settings.
func (s *Service) Speak(ctx context.Context, text string) (settings.Utterance, error) {
	var voices []settings.Voice
	if lister, ok := s.synth.(speech.VoiceLister); ok {
		v, err := lister.Voices(ctx)
		if err != nil {
			s.logger.Warn(ctx, "voice list unavailable", logger.Error(err))
		}
		voices = v
	}
	u, ok := s.settings.Get().Utterance(text, voices)
	if !ok {
		return settings.Utterance{}, ErrEmptyText
	}
	if err := s.synth.Speak(ctx, u); err != nil {
		return settings.Utterance{}, fmt.Errorf("speak: %w", err)
	}
	return u, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":      s.started,
		"worker_count": s.workerCount,
		"queue_size":   s.queueSize,
		"dedupe_size":  s.dedupeSize,
		"dedupe_len":   s.deduper.Size(),
	}
	if s.started {
		stats["queue_length"] = s.queue.Len(ctx)
		stats["lines"] = s.lines.Count(ctx)
		stats["processed"] = s.workerPool.Processed()
		stats["uptime_seconds"] = int64(time.Since(s.startedAt).Seconds())
	}
	return stats
}

func (s *Service) board() (*repository.TreapStore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lines == nil {
		return nil, ErrNotStarted
	}
	return s.lines, nil
}

func toLineEntry(e repository.Entry) types.LineEntry {
	return types.LineEntry{
		Rank:      e.Rank,
		LineID:    e.LineID,
		Score:     e.Score,
		AttemptID: e.AttemptID,
		Target:    e.Target,
	}
}
