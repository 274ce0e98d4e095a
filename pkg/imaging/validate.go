// Package imaging implements the image-side stages of the background removal
// pipeline: payload validation, pre-segmentation enhancement, and alpha-mask
// cleanup of the engine output.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"net/http"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// MinPayloadSize is a cheap corruption heuristic, not a format guarantee:
// no real image encoding fits under this many bytes.
const MinPayloadSize = 50

// Validation failure reasons.
const (
	ReasonEmptyOrTooSmall      = "empty_or_too_small"
	ReasonUnsupportedOrCorrupt = "unsupported_or_corrupt"
)

// ValidationError reports a payload that cannot enter the pipeline.
type ValidationError struct {
	Reason     string
	Size       int    // received byte count, set for size failures
	FormatHint string // sniffed content type, set for decode failures
}

func (e *ValidationError) Error() string {
	if e.Reason == ReasonEmptyOrTooSmall {
		return fmt.Sprintf("invalid or empty image data (%d bytes)", e.Size)
	}
	return fmt.Sprintf("unsupported or corrupted image format (detected %q)", e.FormatHint)
}

// Metadata describes a validated payload.
type Metadata struct {
	Format string // declared format, uppercased: PNG, JPEG, ...
	Width  int
	Height int
}

// Validate confirms data decodes as a supported image and extracts format
// metadata. Only the header is decoded; pixel data is never materialized.
// It has no side effects.
func Validate(data []byte) (Metadata, error) {
	if len(data) < MinPayloadSize {
		return Metadata{}, &ValidationError{Reason: ReasonEmptyOrTooSmall, Size: len(data)}
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Metadata{}, &ValidationError{
			Reason:     ReasonUnsupportedOrCorrupt,
			FormatHint: http.DetectContentType(data),
		}
	}

	return Metadata{
		Format: strings.ToUpper(format),
		Width:  cfg.Width,
		Height: cfg.Height,
	}, nil
}
