package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/coolprogrammerarpit007/bg-remover/pkg/engine"
	"github.com/coolprogrammerarpit007/bg-remover/pkg/imaging"
)

// Processor is the pipeline entry point. One instance is safe for concurrent
// use; each Process call is an independent sequential flow with no shared
// mutable state. Dependencies are injected, never global.
type Processor struct {
	executor *engine.Executor
	pre      *imaging.Preprocessor
	post     *imaging.Postprocessor
}

func New(executor *engine.Executor, pre *imaging.Preprocessor, post *imaging.Postprocessor) *Processor {
	return &Processor{
		executor: executor,
		pre:      pre,
		post:     post,
	}
}

// Process runs validation, preprocessing, the bounded engine call, and
// postprocessing, and reports the outcome. It always returns a structured
// Result; panics are converted into the uncategorized-failure path.
func (p *Processor) Process(ctx context.Context, raw []byte) (res Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			slog.Error("pipeline_panic", "panic", r)
			res = report(outcome{
				err:       fmt.Errorf("panic: %v", r),
				inputSize: len(raw),
				stack:     debug.Stack(),
			})
		}
	}()

	meta, err := imaging.Validate(raw)
	if err != nil {
		slog.Info("pipeline_validation_failed", "error", err, "size_bytes", len(raw))
		return report(outcome{err: err, inputSize: len(raw)})
	}
	slog.Info("pipeline_validated", "format", meta.Format, "width", meta.Width, "height", meta.Height)

	prepped := p.pre.Preprocess(raw)

	segmented, err := p.executor.Run(ctx, prepped)
	if err != nil {
		return report(outcome{err: err, meta: meta, inputSize: len(raw)})
	}

	refined := p.post.Postprocess(segmented)

	slog.Info("pipeline_complete", "elapsed", time.Since(start), "output_bytes", len(refined))
	return report(outcome{
		payload:   refined,
		meta:      meta,
		elapsed:   time.Since(start),
		inputSize: len(raw),
	})
}
