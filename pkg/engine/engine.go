// Package engine wraps the external segmentation capability: an untrusted
// bytes-in/bytes-out service that may fail arbitrarily or hang. The Executor
// bounds every invocation with a wall-clock budget so neither failure mode
// reaches the caller raw.
package engine

import "context"

// Options tunes segmentation quality. The Executor passes them through
// unchanged; they never affect its control logic.
type Options struct {
	Model               string
	AlphaMatting        bool
	ForegroundThreshold int
	BackgroundThreshold int
}

// Segmenter separates foreground from background in an image. Implementations
// are treated as untrusted regarding latency and failure modes: callers must
// assume Segment can return any error or block past ctx cancellation.
type Segmenter interface {
	Segment(ctx context.Context, data []byte, opts Options) ([]byte, error)
}
