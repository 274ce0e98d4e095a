package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// TimeoutError reports a segmentation call that exceeded its budget.
type TimeoutError struct {
	Budget time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("image processing exceeded time limit (%s budget)", e.Budget)
}

// EngineError reports a failure raised by the segmentation capability itself.
type EngineError struct {
	Kind    string // Go type of the underlying error
	Message string
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("background removal failed internally: %s", e.Message)
}

// Executor runs segmentation calls under a wall-clock budget, isolating
// engine exceptions and hangs from the caller.
type Executor struct {
	segmenter Segmenter
	budget    time.Duration
	opts      Options
}

// NewExecutor wraps segmenter with the given budget and quality options.
func NewExecutor(segmenter Segmenter, budget time.Duration, opts Options) *Executor {
	return &Executor{
		segmenter: segmenter,
		budget:    budget,
		opts:      opts,
	}
}

// Budget returns the configured wall-clock budget.
func (e *Executor) Budget() time.Duration {
	return e.budget
}

type outcome struct {
	data []byte
	err  error
}

// Run dispatches the segmentation call on its own goroutine and waits up to
// the budget for completion. The caller observes exactly one of success,
// engine error, or timeout.
//
// Cancellation is cooperative: on timeout the engine's context is cancelled,
// but a worker that ignores it keeps running until its call returns. The
// completion channel is buffered so a late result is dropped, never
// delivered — a timeout is final even if the engine finishes afterwards.
func (e *Executor) Run(ctx context.Context, data []byte) ([]byte, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan outcome, 1)
	start := time.Now()
	go func() {
		out, err := e.segmenter.Segment(ctx, data, e.opts)
		done <- outcome{data: out, err: err}
	}()

	timer := time.NewTimer(e.budget)
	defer timer.Stop()

	select {
	case res := <-done:
		if res.err != nil {
			slog.Error("segmentation_failed", "error", res.err, "elapsed", time.Since(start))
			return nil, &EngineError{Kind: fmt.Sprintf("%T", res.err), Message: res.err.Error()}
		}
		if len(res.data) == 0 {
			slog.Error("segmentation_empty_output", "elapsed", time.Since(start))
			return nil, &EngineError{Kind: "empty_output", Message: "segmentation engine returned no output"}
		}
		slog.Info("segmentation_complete", "output_bytes", len(res.data), "elapsed", time.Since(start))
		return res.data, nil
	case <-timer.C:
		slog.Error("segmentation_timeout", "budget", e.budget)
		return nil, &TimeoutError{Budget: e.budget}
	}
}
