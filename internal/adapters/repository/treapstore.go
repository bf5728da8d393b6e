package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/okian/voicepartner/pkg/metrics"
)

// Treap-based, in-memory Store implementation.
//
// Ordering: score DESC, then lineID ASC. "less" means ranks earlier, so an
// in-order walk yields the board from strongest to weakest line. Node
// priorities are a hash of the line ID, which keeps the tree balanced in
// expectation whatever order lines arrive in.

const (
	minScore = 0
	maxScore = 100
)

type record struct {
	score     int
	attemptID string
	target    string
	updatedAt time.Time
}

type node struct {
	id    string
	score int
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less returns true if (aScore, aID) appears before (bScore, bID).
func less(aScore int, aID string, bScore int, bID string) bool {
	if aScore != bScore {
		return aScore > bScore
	}
	return aID < bID
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

func insert(n *node, id string, score int) *node {
	if n == nil {
		return &node{id: id, score: score, prio: xxhash.Sum64String(id), size: 1}
	}
	if less(score, id, n.score, n.id) {
		n.left = insert(n.left, id, score)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, id, score)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, id string, score int) *node {
	if n == nil {
		return nil
	}
	switch {
	case score == n.score && id == n.id:
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, id, score)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, id, score)
		}
	case less(score, id, n.score, n.id):
		n.left = deleteNode(n.left, id, score)
	default:
		n.right = deleteNode(n.right, id, score)
	}
	fix(n)
	return n
}

// walk visits nodes in board order, or reverse board order, until visit
// returns false.
func walk(n *node, reverse bool, visit func(*node) bool) bool {
	if n == nil {
		return true
	}
	first, second := n.left, n.right
	if reverse {
		first, second = n.right, n.left
	}
	return walk(first, reverse, visit) && visit(n) && walk(second, reverse, visit)
}

// TreapStore is the in-memory line board.
type TreapStore struct {
	mu   sync.RWMutex
	root *node
	byID map[string]record
	// linesAt counts lines per score, for dense ranks without a walk.
	linesAt [maxScore + 1]int

	metricsUpdateInterval time.Duration
	now                   func() time.Time

	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

// Compile-time interface assertion.
var _ Store = (*TreapStore)(nil)

// NewTreapStore constructs a store and starts its metrics updater, which
// runs until ctx is done or Close is called.
func NewTreapStore(ctx context.Context, opts ...Option) *TreapStore {
	s := &TreapStore{
		byID:                  make(map[string]record),
		metricsUpdateInterval: 5 * time.Second,
		now:                   time.Now,
		stopChan:              make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.startMetricsUpdater(ctx)
	return s
}

// Close stops the background metrics updater.
func (s *TreapStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

// UpdateBest implements Store.UpdateBest in O(log n) expected time. A score
// equal to the current best leaves the line unchanged.
func (s *TreapStore) UpdateBest(ctx context.Context, b Best) (bool, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if b.LineID == "" {
		metrics.RecordErrorByComponent("repository", "invalid_line")
		return false, fmt.Errorf("%w: empty line id", ErrInvalidLine)
	}
	if b.Score < minScore || b.Score > maxScore {
		metrics.RecordErrorByComponent("repository", "invalid_line")
		return false, fmt.Errorf("%w: score %d outside [%d, %d]", ErrInvalidLine, b.Score, minScore, maxScore)
	}
	ts := b.TS
	if ts.IsZero() {
		ts = s.now()
	}

	s.mu.Lock()
	old, exists := s.byID[b.LineID]
	if exists {
		if b.Score <= old.score {
			s.mu.Unlock()
			return false, nil
		}
		s.root = deleteNode(s.root, b.LineID, old.score)
		s.linesAt[old.score]--
	}
	s.byID[b.LineID] = record{score: b.Score, attemptID: b.AttemptID, target: b.Target, updatedAt: ts}
	s.root = insert(s.root, b.LineID, b.Score)
	s.linesAt[b.Score]++
	count := len(s.byID)
	s.mu.Unlock()

	metrics.RecordLineBoardUpdate()
	if !exists {
		metrics.UpdateLineBoardLines(count)
	}
	return true, nil
}

// Rank returns a line's dense rank: one plus the number of distinct better
// scores on the board.
func (s *TreapStore) Rank(ctx context.Context, lineID string) (Entry, error) {
	defer s.observeQuery(time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byID[lineID]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return Entry{}, ErrNotFound
	}
	return s.entry(lineID, rec), nil
}

// TopN returns the n strongest lines ordered by score desc, line ID asc.
func (s *TreapStore) TopN(ctx context.Context, n int) ([]Entry, error) {
	return s.collect(n, false)
}

// BottomN returns the n weakest lines, the exact reverse of board order.
func (s *TreapStore) BottomN(ctx context.Context, n int) ([]Entry, error) {
	return s.collect(n, true)
}

func (s *TreapStore) collect(n int, reverse bool) ([]Entry, error) {
	defer s.observeQuery(time.Now())

	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, min(n, len(s.byID)))
	walk(s.root, reverse, func(nd *node) bool {
		out = append(out, s.entry(nd.id, s.byID[nd.id]))
		return len(out) < n
	})
	return out, nil
}

// Count returns the number of lines on the board.
func (s *TreapStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// entry builds a board row. Caller holds s.mu.
func (s *TreapStore) entry(lineID string, rec record) Entry {
	rank := 1
	for score := rec.score + 1; score <= maxScore; score++ {
		if s.linesAt[score] > 0 {
			rank++
		}
	}
	return Entry{
		Rank:      rank,
		LineID:    lineID,
		Score:     rec.score,
		AttemptID: rec.attemptID,
		Target:    rec.target,
		UpdatedAt: rec.updatedAt,
	}
}

func (s *TreapStore) observeQuery(start time.Time) {
	metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
}

func (s *TreapStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				metrics.UpdateLineBoardLines(s.Count(ctx))
			}
		}
	}()
}
