package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostprocessGarbageDegradesToInput(t *testing.T) {
	p := NewPostprocessor()
	garbage := []byte("segmentation output that is not an image")

	out := p.Postprocess(garbage)
	assert.Equal(t, garbage, out)
}

func TestPostprocessOpaquePassthrough(t *testing.T) {
	p := NewPostprocessor()
	data := pngBytes(t, 30, 30)

	out := p.Postprocess(data)
	assert.Equal(t, data, out)
}

func TestPostprocessRefinesAlpha(t *testing.T) {
	// Opaque square on a transparent field with a single speckle pixel.
	img := image.NewNRGBA(image.Rect(0, 0, 20, 20))
	for y := 5; y < 15; y++ {
		for x := 5; x < 15; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 200, G: 50, B: 50, A: 255})
		}
	}
	img.SetNRGBA(1, 1, color.NRGBA{R: 200, G: 50, B: 50, A: 255})

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	p := NewPostprocessor()
	out := p.Postprocess(buf.Bytes())
	require.NotEqual(t, buf.Bytes(), out)

	refined, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 20, refined.Bounds().Dx())

	// The isolated speckle's alpha collapses under the median filter.
	_, _, _, speckle := refined.At(1, 1).RGBA()
	assert.Zero(t, speckle)

	// The interior of the square stays essentially opaque.
	_, _, _, interior := refined.At(10, 10).RGBA()
	assert.Greater(t, interior, uint32(0xf000))
}

func TestPostprocessAppliedTwice(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	for y := 4; y < 12; y++ {
		for x := 4; x < 12; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	p := NewPostprocessor()
	once := p.Postprocess(buf.Bytes())
	twice := p.Postprocess(once)

	_, err := png.Decode(bytes.NewReader(twice))
	require.NoError(t, err)
}

func TestMedianFilterRemovesIsolatedPixel(t *testing.T) {
	plane := make([]uint8, 5*5)
	plane[12] = 255 // center of a 5x5 zero field

	out := medianFilter3(plane, 5, 5)
	assert.Equal(t, uint8(0), out[12])
}

func TestGaussianBlurPreservesUniformPlane(t *testing.T) {
	plane := make([]uint8, 8*8)
	for i := range plane {
		plane[i] = 200
	}

	out := gaussianBlur3(plane, 8, 8)
	for i := range out {
		assert.Equal(t, uint8(200), out[i])
	}
}
