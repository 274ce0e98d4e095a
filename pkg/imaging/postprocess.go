package imaging

import (
	"bytes"
	"image"
	"image/png"
	"log/slog"
)

// Postprocessor refines the alpha channel of the engine output: a median
// filter removes speckle noise, a light Gaussian blur smooths jagged edges.
// Results without transparency pass through unchanged.
//
// Like the Preprocessor it never fails visibly; every error degrades to
// returning the input unchanged.
type Postprocessor struct{}

func NewPostprocessor() *Postprocessor {
	return &Postprocessor{}
}

// Postprocess returns the refined, losslessly re-encoded payload, or data
// unchanged when the result carries no alpha or any step fails.
func (p *Postprocessor) Postprocess(data []byte) (out []byte) {
	out = data
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("postprocess_panic_degraded", "panic", r)
			out = data
		}
	}()

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		slog.Warn("postprocess_decode_failed_degraded", "error", err)
		return data
	}

	nrgba := toNRGBA(img)
	if !hasUsefulAlpha(nrgba) {
		return data
	}

	w, h := nrgba.Bounds().Dx(), nrgba.Bounds().Dy()
	alpha := make([]uint8, w*h)
	for i := 0; i < w*h; i++ {
		alpha[i] = nrgba.Pix[i*4+3]
	}

	alpha = medianFilter3(alpha, w, h)
	alpha = gaussianBlur3(alpha, w, h)

	for i := 0; i < w*h; i++ {
		nrgba.Pix[i*4+3] = alpha[i]
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, nrgba); err != nil {
		slog.Warn("postprocess_encode_failed_degraded", "error", err)
		return data
	}
	return buf.Bytes()
}
