package pipeline

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coolprogrammerarpit007/bg-remover/pkg/engine"
	"github.com/coolprogrammerarpit007/bg-remover/pkg/imaging"
)

type fakeSegmenter struct {
	fn func(ctx context.Context, data []byte, opts engine.Options) ([]byte, error)
}

func (f *fakeSegmenter) Segment(ctx context.Context, data []byte, opts engine.Options) ([]byte, error) {
	return f.fn(ctx, data, opts)
}

func newProcessor(seg engine.Segmenter, budget time.Duration) *Processor {
	return New(
		engine.NewExecutor(seg, budget, engine.Options{}),
		imaging.NewPreprocessor(1920, 1.2, 1.1),
		imaging.NewPostprocessor(),
	)
}

func validPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 40, 40))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestProcessSuccess(t *testing.T) {
	seg := &fakeSegmenter{fn: func(ctx context.Context, data []byte, opts engine.Options) ([]byte, error) {
		// Echo the preprocessed image back as the "segmented" result.
		return data, nil
	}}
	p := newProcessor(seg, time.Second)

	res := p.Process(context.Background(), validPNG(t))

	assert.True(t, res.Succeeded)
	assert.Equal(t, "Background removed successfully", res.Message)
	assert.NotEmpty(t, res.Payload)
	assert.Equal(t, "PNG", res.Diagnostics["image_format"])
	assert.Contains(t, res.Diagnostics, "processing_time_seconds")
	assert.Contains(t, res.Diagnostics, "image_size_bytes")
}

func TestProcessRejectsTinyPayload(t *testing.T) {
	seg := &fakeSegmenter{fn: func(ctx context.Context, data []byte, opts engine.Options) ([]byte, error) {
		t.Error("engine must not be called for invalid input")
		return nil, nil
	}}
	p := newProcessor(seg, time.Second)

	res := p.Process(context.Background(), []byte("tiny"))

	assert.False(t, res.Succeeded)
	assert.Equal(t, "Invalid or empty image data", res.Message)
	assert.Equal(t, 4, res.Diagnostics["received_size_bytes"])
}

func TestProcessRejectsCorruptPayload(t *testing.T) {
	p := newProcessor(&fakeSegmenter{fn: func(ctx context.Context, data []byte, opts engine.Options) ([]byte, error) {
		t.Error("engine must not be called for invalid input")
		return nil, nil
	}}, time.Second)

	res := p.Process(context.Background(), bytes.Repeat([]byte("junk"), 100))

	assert.False(t, res.Succeeded)
	assert.Equal(t, "Unsupported or corrupted image format", res.Message)
	assert.Contains(t, res.Diagnostics, "format_hint")
}

func TestProcessTimeout(t *testing.T) {
	seg := &fakeSegmenter{fn: func(ctx context.Context, data []byte, opts engine.Options) ([]byte, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	p := newProcessor(seg, time.Second)

	res := p.Process(context.Background(), validPNG(t))

	assert.False(t, res.Succeeded)
	assert.Equal(t, "Image processing exceeded time limit", res.Message)
	assert.Equal(t, 1, res.Diagnostics["timeout_seconds"])
}

func TestProcessEngineFailure(t *testing.T) {
	seg := &fakeSegmenter{fn: func(ctx context.Context, data []byte, opts engine.Options) ([]byte, error) {
		return nil, errors.New("CUDA out of memory")
	}}
	p := newProcessor(seg, time.Second)

	res := p.Process(context.Background(), validPNG(t))

	assert.False(t, res.Succeeded)
	assert.Equal(t, "Background removal failed internally", res.Message)
	assert.Equal(t, "CUDA out of memory", res.Diagnostics["error_message"])
}

func TestProcessConcurrentCalls(t *testing.T) {
	seg := &fakeSegmenter{fn: func(ctx context.Context, data []byte, opts engine.Options) ([]byte, error) {
		return data, nil
	}}
	p := newProcessor(seg, time.Second)
	input := validPNG(t)

	done := make(chan Result, 8)
	for i := 0; i < 8; i++ {
		go func() {
			done <- p.Process(context.Background(), input)
		}()
	}
	for i := 0; i < 8; i++ {
		res := <-done
		assert.True(t, res.Succeeded)
	}
}
