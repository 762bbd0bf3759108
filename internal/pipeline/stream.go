package pipeline

import (
	"context"
	"errors"
	"iter"
	"log/slog"
	"slices"

	"github.com/kamusis/brewq/internal/match"
)

type streamState int

const (
	stateInit streamState = iota
	stateBatching
	stateDone
)

// Stream yields the result batches of one query, best matches first. It is
// not safe for concurrent use.
type Stream struct {
	ctx   context.Context
	h     *Handler
	query string
	state streamState

	// pending is ranked worst first; batches are taken from the end.
	pending []match.RankedMatch
	seen    map[string]struct{}
	errs    []error
}

// Next produces the next batch. ok is false once the stream is exhausted or
// its context was cancelled. Returned batches are never empty.
func (s *Stream) Next() (items []Item, ok bool) {
	for {
		switch s.state {
		case stateInit:
			if s.ctx.Err() != nil {
				s.state = stateDone
				continue
			}
			if s.query == "" {
				queryCounter.WithLabelValues("update").Inc()
				s.state = stateDone
				return []Item{s.h.updateItem()}, true
			}
			queryCounter.WithLabelValues("search").Inc()
			s.rank()
			s.state = stateBatching

		case stateBatching:
			if len(s.pending) == 0 {
				s.state = stateDone
				continue
			}
			if s.ctx.Err() != nil {
				batchCounter.WithLabelValues("cancelled").Inc()
				s.state = stateDone
				continue
			}
			if items, ok := s.nextBatch(); ok {
				return items, true
			}

		default:
			return nil, false
		}
	}
}

// rank snapshots and scores the cached names under the cache lock.
func (s *Stream) rank() {
	m := match.New(s.query, match.Fuzzy(s.h.fuzzy))
	s.h.names.WithNames(s.ctx, func(names []string) {
		s.pending = match.RankAll(m, names)
	})
	slices.Reverse(s.pending)
	slog.DebugContext(s.ctx, "ranked package names", "query", s.query, "matches", len(s.pending))
}

// nextBatch fetches the best remaining names. ok is false when the batch
// produced nothing to emit.
func (s *Stream) nextBatch() ([]Item, bool) {
	n := min(s.h.batchSize, len(s.pending))
	tail := s.pending[len(s.pending)-n:]
	names := make([]string, 0, n)
	for i := len(tail) - 1; i >= 0; i-- {
		names = append(names, tail[i].Name)
	}

	items, err := s.h.fetchBatch(s.ctx, names)
	if s.ctx.Err() != nil {
		batchCounter.WithLabelValues("cancelled").Inc()
		s.state = stateDone
		return nil, false
	}
	s.pending = s.pending[:len(s.pending)-n]
	if err != nil {
		slog.WarnContext(s.ctx, "skipping batch", "names", names, "reason", err)
		batchCounter.WithLabelValues("failed").Inc()
		s.errs = append(s.errs, err)
		return nil, false
	}

	items = slices.DeleteFunc(items, func(it Item) bool {
		if _, dup := s.seen[it.ID]; dup {
			return true
		}
		s.seen[it.ID] = struct{}{}
		return false
	})
	if len(items) == 0 {
		batchCounter.WithLabelValues("skipped").Inc()
		return nil, false
	}
	batchCounter.WithLabelValues("emitted").Inc()
	return items, true
}

// All adapts the stream to a range-over-func iterator.
func (s *Stream) All() iter.Seq[[]Item] {
	return func(yield func([]Item) bool) {
		for {
			items, ok := s.Next()
			if !ok || !yield(items) {
				return
			}
		}
	}
}

// Err reports the batches that were skipped because brew failed. Cancellation
// is never reported.
func (s *Stream) Err() error {
	return errors.Join(s.errs...)
}
