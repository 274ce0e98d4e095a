package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"log/slog"

	"github.com/nfnt/resize"
)

// Preprocessor normalizes uploads before segmentation: transparency is
// flattened over white, oversized images are downscaled, and mild contrast
// and sharpness boosts stabilize the engine's edge detection.
//
// Preprocessing is best-effort enhancement, not a correctness requirement:
// every failure degrades to returning the input unchanged.
type Preprocessor struct {
	maxDimension int
	contrast     float64
	sharpness    float64
}

// NewPreprocessor builds a Preprocessor. The constants come from
// configuration, never derived from the input.
func NewPreprocessor(maxDimension int, contrast, sharpness float64) *Preprocessor {
	return &Preprocessor{
		maxDimension: maxDimension,
		contrast:     contrast,
		sharpness:    sharpness,
	}
}

// Preprocess returns the enhanced, losslessly re-encoded payload, or data
// unchanged when any step fails.
func (p *Preprocessor) Preprocess(data []byte) (out []byte) {
	out = data
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("preprocess_panic_degraded", "panic", r)
			out = data
		}
	}()

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		slog.Warn("preprocess_decode_failed_degraded", "error", err)
		return data
	}

	flat := flattenOverWhite(img)

	w, h := flat.Bounds().Dx(), flat.Bounds().Dy()
	if longest := max(w, h); longest > p.maxDimension {
		scale := float64(p.maxDimension) / float64(longest)
		nw := int(float64(w) * scale)
		nh := int(float64(h) * scale)
		flat = toNRGBA(resize.Resize(uint(nw), uint(nh), flat, resize.Lanczos3))
		slog.Debug("preprocess_downscaled", "from_width", w, "from_height", h, "to_width", nw, "to_height", nh)
	}

	adjustContrast(flat, p.contrast)
	sharpen(flat, p.sharpness)

	var buf bytes.Buffer
	if err := png.Encode(&buf, flat); err != nil {
		slog.Warn("preprocess_encode_failed_degraded", "error", err)
		return data
	}
	return buf.Bytes()
}

// flattenOverWhite composites transparency over an opaque white background,
// producing a canonical 3-channel representation.
func flattenOverWhite(img image.Image) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Over)
	return dst
}

// adjustContrast stretches each color channel around the midpoint in place.
func adjustContrast(img *image.NRGBA, factor float64) {
	var lut [256]uint8
	for i := 0; i < 256; i++ {
		lut[i] = clampUint8(128 + factor*(float64(i)-128))
	}
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = lut[img.Pix[i]]
		img.Pix[i+1] = lut[img.Pix[i+1]]
		img.Pix[i+2] = lut[img.Pix[i+2]]
	}
}

// sharpen applies an unsharp mask: each channel moves away from its blurred
// neighborhood by (factor-1).
func sharpen(img *image.NRGBA, factor float64) {
	amount := factor - 1
	if amount <= 0 {
		return
	}
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	plane := make([]uint8, w*h)
	for c := 0; c < 3; c++ {
		for i := 0; i < w*h; i++ {
			plane[i] = img.Pix[i*4+c]
		}
		blurred := gaussianBlur3(plane, w, h)
		for i := 0; i < w*h; i++ {
			v := float64(plane[i])
			img.Pix[i*4+c] = clampUint8(v + amount*(v-float64(blurred[i])))
		}
	}
}
