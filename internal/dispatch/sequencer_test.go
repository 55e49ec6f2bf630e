package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestSequencer_Dispatch_Success(t *testing.T) {
	seq := NewSequencer()

	handler := newTestHandler(func(ctx context.Context, event any) error {
		return nil
	})

	result := seq.Dispatch(context.Background(), "test-event", handler)

	if !result.IsSuccess() {
		t.Errorf("expected success, got %+v", result)
	}

	stats := seq.Stats()
	if stats.Dispatched != 1 {
		t.Errorf("expected 1 dispatched, got %d", stats.Dispatched)
	}
	if stats.Succeeded != 1 {
		t.Errorf("expected 1 succeeded, got %d", stats.Succeeded)
	}
}

func TestSequencer_Dispatch_Error(t *testing.T) {
	seq := NewSequencer()
	expectedErr := errors.New("test error")

	handler := newTestHandler(func(ctx context.Context, event any) error {
		return expectedErr
	})

	result := seq.Dispatch(context.Background(), "test-event", handler)

	if result.IsSuccess() {
		t.Error("expected failure")
	}
	if result.Error != expectedErr {
		t.Errorf("expected error %v, got %v", expectedErr, result.Error)
	}

	stats := seq.Stats()
	if stats.Failed != 1 {
		t.Errorf("expected 1 failed, got %d", stats.Failed)
	}
}

func TestSequencer_Dispatch_Panic(t *testing.T) {
	var panicHandlerCalled bool

	seq := NewSequencer(
		WithSequencerPanicHandler(func(event any, panicValue any, stack []byte) {
			panicHandlerCalled = true
		}),
	)

	handler := newTestHandler(func(ctx context.Context, event any) error {
		panic("boom")
	})

	result := seq.Dispatch(context.Background(), "test-event", handler)

	if result.IsSuccess() {
		t.Error("expected failure")
	}
	if !result.Panicked {
		t.Error("expected panic")
	}
	if !panicHandlerCalled {
		t.Error("panic handler was not called")
	}

	stats := seq.Stats()
	if stats.Panicked != 1 {
		t.Errorf("expected 1 panicked, got %d", stats.Panicked)
	}
}

func TestSequencer_DispatchUntilError(t *testing.T) {
	seq := NewSequencer()
	expectedErr := errors.New("stop here")

	callCount := 0
	handlers := []Handler{
		newTestHandler(func(ctx context.Context, event any) error {
			callCount++
			return nil
		}),
		newTestHandler(func(ctx context.Context, event any) error {
			callCount++
			return expectedErr
		}),
		newTestHandler(func(ctx context.Context, event any) error {
			callCount++
			return nil
		}),
	}

	results := seq.DispatchUntilError(context.Background(), "test-event", handlers)

	if len(results) != 2 {
		t.Errorf("expected 2 results, got %d", len(results))
	}
	if callCount != 2 {
		t.Errorf("expected 2 handlers called, got %d", callCount)
	}
	if results[1].Error != expectedErr {
		t.Errorf("expected error %v, got %v", expectedErr, results[1].Error)
	}
}

func TestSequencer_DispatchUntilError_PanicStops(t *testing.T) {
	seq := NewSequencer()

	callCount := 0
	handlers := []Handler{
		newTestHandler(func(ctx context.Context, event any) error {
			callCount++
			panic("boom")
		}),
		newTestHandler(func(ctx context.Context, event any) error {
			callCount++
			return nil
		}),
	}

	results := seq.DispatchUntilError(context.Background(), "test-event", handlers)

	if len(results) != 1 {
		t.Errorf("expected 1 result, got %d", len(results))
	}
	if callCount != 1 {
		t.Errorf("expected 1 handler called, got %d", callCount)
	}
	if !results[0].Panicked {
		t.Error("expected panic result")
	}
}

func TestSequencer_Stats(t *testing.T) {
	seq := NewSequencer()

	// Successful dispatch
	seq.Dispatch(context.Background(), "event",
		newTestHandler(func(ctx context.Context, event any) error { return nil }))

	// Failed dispatch
	seq.Dispatch(context.Background(), "event",
		newTestHandler(func(ctx context.Context, event any) error { return errors.New("error") }))

	// Panic dispatch
	seq.Dispatch(context.Background(), "event",
		newTestHandler(func(ctx context.Context, event any) error { panic("panic") }))

	// Skipped dispatch (cancelled context)
	cancelledCtx, cancel := context.WithCancel(context.Background())
	cancel()
	seq.Dispatch(cancelledCtx, "event",
		newTestHandler(func(ctx context.Context, event any) error { return nil }))

	stats := seq.Stats()

	if stats.Dispatched != 4 {
		t.Errorf("expected 4 dispatched, got %d", stats.Dispatched)
	}
	if stats.Succeeded != 1 {
		t.Errorf("expected 1 succeeded, got %d", stats.Succeeded)
	}
	if stats.Failed != 1 {
		t.Errorf("expected 1 failed, got %d", stats.Failed)
	}
	if stats.Panicked != 1 {
		t.Errorf("expected 1 panicked, got %d", stats.Panicked)
	}
	if stats.Skipped != 1 {
		t.Errorf("expected 1 skipped, got %d", stats.Skipped)
	}
	if stats.TotalDuration == 0 {
		t.Error("expected non-zero total duration")
	}
}

func TestSequencer_Concurrent(t *testing.T) {
	seq := NewSequencer()

	var wg sync.WaitGroup
	iterations := 100

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				seq.Dispatch(context.Background(), "event",
					newTestHandler(func(ctx context.Context, event any) error { return nil }))
			}
		}()
	}

	wg.Wait()

	stats := seq.Stats()
	expected := uint64(10 * iterations)
	if stats.Dispatched != expected {
		t.Errorf("expected %d dispatched, got %d", expected, stats.Dispatched)
	}
	if stats.Succeeded != expected {
		t.Errorf("expected %d succeeded, got %d", expected, stats.Succeeded)
	}
}

func BenchmarkSequencer_Dispatch(b *testing.B) {
	seq := NewSequencer()
	handler := newTestHandler(func(ctx context.Context, event any) error {
		return nil
	})
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = seq.Dispatch(ctx, "event", handler)
	}
}
