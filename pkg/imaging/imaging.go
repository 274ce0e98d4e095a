package imaging

import (
	"image"
	"image/draw"
)

func toNRGBA(img image.Image) *image.NRGBA {
	if nrgba, ok := img.(*image.NRGBA); ok {
		return nrgba
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// hasUsefulAlpha reports whether the alpha channel carries real transparency.
// Any pixel below fully opaque counts.
func hasUsefulAlpha(img *image.NRGBA) bool {
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 255 {
			return true
		}
	}
	return false
}

func clampUint8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// gaussianBlur3 applies a 3x3 Gaussian kernel to a single-channel plane.
// Edges are handled by clamping coordinates.
func gaussianBlur3(plane []uint8, w, h int) []uint8 {
	kernel := [3][3]int{
		{1, 2, 1},
		{2, 4, 2},
		{1, 2, 1},
	}
	out := make([]uint8, len(plane))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sum := 0
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					sx := clampInt(x+kx, 0, w-1)
					sy := clampInt(y+ky, 0, h-1)
					sum += int(plane[sy*w+sx]) * kernel[ky+1][kx+1]
				}
			}
			out[y*w+x] = uint8(sum >> 4)
		}
	}
	return out
}

// medianFilter3 applies a 3x3 median filter to a single-channel plane,
// removing speckle noise without softening edges.
func medianFilter3(plane []uint8, w, h int) []uint8 {
	out := make([]uint8, len(plane))
	var window [9]uint8
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			n := 0
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					sx := clampInt(x+kx, 0, w-1)
					sy := clampInt(y+ky, 0, h-1)
					window[n] = plane[sy*w+sx]
					n++
				}
			}
			// insertion sort, the window is tiny
			for i := 1; i < 9; i++ {
				for j := i; j > 0 && window[j-1] > window[j]; j-- {
					window[j-1], window[j] = window[j], window[j-1]
				}
			}
			out[y*w+x] = window[4]
		}
	}
	return out
}
