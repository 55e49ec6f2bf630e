package dispatch

import (
	"context"
	"sync/atomic"
	"time"
)

// Sequencer executes ordered handler chains in the caller's goroutine.
// Emissions are a direct fan-out call: every handler runs sequentially,
// which is what preserves priority ordering across mixed subscriber sets.
type Sequencer struct {
	executor *Executor

	// Stats
	dispatched  atomic.Uint64
	succeeded   atomic.Uint64
	failed      atomic.Uint64
	panicked    atomic.Uint64
	skipped     atomic.Uint64
	totalTimeNs atomic.Int64
}

// NewSequencer creates a new sequential dispatcher.
func NewSequencer(opts ...SequencerOption) *Sequencer {
	s := &Sequencer{
		executor: NewExecutor(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SequencerOption configures a Sequencer.
type SequencerOption func(*Sequencer)

// WithSequencerPanicHandler sets the panic handler for handler execution.
func WithSequencerPanicHandler(h PanicHandler) SequencerOption {
	return func(s *Sequencer) {
		s.executor = NewExecutor(WithPanicHandler(h))
	}
}

// Dispatch executes a single handler and records its outcome.
// It blocks until the handler completes or panics.
func (s *Sequencer) Dispatch(ctx context.Context, event any, handler Handler) Result {
	s.dispatched.Add(1)

	result := s.executor.Execute(ctx, event, handler)

	s.totalTimeNs.Add(result.Duration.Nanoseconds())

	switch {
	case result.Skipped:
		s.skipped.Add(1)
	case result.Panicked:
		s.panicked.Add(1)
	case result.Error != nil:
		s.failed.Add(1)
	case result.Success:
		s.succeeded.Add(1)
	}

	return result
}

// DispatchUntilError executes handlers in order until one returns an error
// or panics. Returns the results up to and including the failure, or all
// results if every handler succeeded.
func (s *Sequencer) DispatchUntilError(ctx context.Context, event any, handlers []Handler) []Result {
	var results []Result

	for _, handler := range handlers {
		result := s.Dispatch(ctx, event, handler)
		results = append(results, result)

		if !result.IsSuccess() {
			break
		}
	}

	return results
}

// Stats returns dispatch statistics.
// Note: Stats are read without a mutex, so values may be slightly
// inconsistent if stats are being updated concurrently.
func (s *Sequencer) Stats() SequencerStats {
	dispatched := s.dispatched.Load()
	totalNs := s.totalTimeNs.Load()

	var avgNs int64
	if dispatched > 0 {
		avgNs = totalNs / int64(dispatched)
	}

	return SequencerStats{
		Dispatched:    dispatched,
		Succeeded:     s.succeeded.Load(),
		Failed:        s.failed.Load(),
		Panicked:      s.panicked.Load(),
		Skipped:       s.skipped.Load(),
		TotalDuration: time.Duration(totalNs),
		AvgDuration:   time.Duration(avgNs),
	}
}

// SequencerStats contains statistics for a sequencer.
type SequencerStats struct {
	// Dispatched is the total number of dispatch calls.
	Dispatched uint64

	// Succeeded is the number of successful handler executions.
	Succeeded uint64

	// Failed is the number of handlers that returned errors.
	Failed uint64

	// Panicked is the number of handlers that panicked.
	Panicked uint64

	// Skipped is the number of handlers skipped (context cancelled).
	Skipped uint64

	// TotalDuration is the cumulative time spent in handlers.
	TotalDuration time.Duration

	// AvgDuration is the average handler execution time.
	AvgDuration time.Duration
}
