package pipeline

import (
	"errors"
	"math"
	"time"

	"github.com/coolprogrammerarpit007/bg-remover/pkg/engine"
	"github.com/coolprogrammerarpit007/bg-remover/pkg/imaging"
)

// outcome carries everything the reporter needs to build a Result. It is
// assembled by Process; report itself performs no I/O.
type outcome struct {
	err       error
	payload   []byte
	meta      imaging.Metadata
	elapsed   time.Duration
	inputSize int
	stack     []byte
}

// report is a pure transformation from outcome to Result. Every execution
// path lands on one of five shapes: validation failure, timeout, engine
// failure, uncategorized failure, or success.
func report(o outcome) Result {
	if o.err == nil {
		return Result{
			Succeeded: true,
			Message:   msgSuccess,
			Payload:   o.payload,
			Diagnostics: map[string]any{
				"processing_time_seconds": math.Round(o.elapsed.Seconds()*100) / 100,
				"image_format":            o.meta.Format,
				"image_size_bytes":        o.inputSize,
			},
		}
	}

	var vErr *imaging.ValidationError
	if errors.As(o.err, &vErr) {
		if vErr.Reason == imaging.ReasonEmptyOrTooSmall {
			return Result{
				Message: msgInvalidData,
				Diagnostics: map[string]any{
					"reason":              vErr.Reason,
					"received_size_bytes": vErr.Size,
					"hint":                "Ensure you're sending a valid image file.",
				},
			}
		}
		return Result{
			Message: msgUnsupported,
			Diagnostics: map[string]any{
				"reason":      vErr.Reason,
				"format_hint": vErr.FormatHint,
				"hint":        "Image format not recognized. Try PNG or JPG.",
			},
		}
	}

	var tErr *engine.TimeoutError
	if errors.As(o.err, &tErr) {
		return Result{
			Message: msgTimeout,
			Diagnostics: map[string]any{
				"timeout_seconds": int(tErr.Budget.Seconds()),
				"hint":            "The engine may be stuck on complex background segmentation.",
				"suggestion":      "Downscale the image below 1500px width before retrying.",
			},
		}
	}

	var eErr *engine.EngineError
	if errors.As(o.err, &eErr) {
		return Result{
			Message: msgEngineFailure,
			Diagnostics: map[string]any{
				"error_type":    eErr.Kind,
				"error_message": eErr.Message,
				"suggestion":    "The engine may be misconfigured or the image unclear; retry may succeed.",
			},
		}
	}

	return Result{
		Message: msgUnknownPrefix + o.err.Error(),
		Diagnostics: map[string]any{
			"error_message": o.err.Error(),
			"stack":         string(o.stack),
			"suggestion":    "Check server logs; this failure was not categorized.",
		},
	}
}
