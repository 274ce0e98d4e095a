// Package pipeline composes the background removal stages into a single
// entry point and converts every outcome, success or failure, into a
// stable-shaped Result. No raw error or panic ever crosses its boundary.
package pipeline

// Result is the transient outcome of one processing run. Payload is
// non-empty if and only if Succeeded; Diagnostics is always present.
type Result struct {
	Succeeded   bool           `json:"succeeded"`
	Message     string         `json:"message"`
	Payload     []byte         `json:"-"`
	Diagnostics map[string]any `json:"diagnostics"`
}

// Outcome messages, stable across releases; operators grep for these.
const (
	msgInvalidData   = "Invalid or empty image data"
	msgUnsupported   = "Unsupported or corrupted image format"
	msgTimeout       = "Image processing exceeded time limit"
	msgEngineFailure = "Background removal failed internally"
	msgSuccess       = "Background removed successfully"
	msgUnknownPrefix = "Unhandled processing error: "
)
