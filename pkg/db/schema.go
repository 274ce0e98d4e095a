package db

import "time"

// Schema defines the SQLite schema for image records. Status values are
// constrained at the database level so an out-of-band writer cannot put a
// record into an unknown state.
const Schema = `
CREATE TABLE IF NOT EXISTS images (
    id TEXT PRIMARY KEY,
    original_filename TEXT NOT NULL,
    original_path TEXT NOT NULL,
    processed_filename TEXT,
    processed_path TEXT,
    status TEXT NOT NULL CHECK(status IN ('uploaded', 'processing', 'done', 'failed')),
    error_message TEXT,
    created_at TIMESTAMP NOT NULL,
    processed_at TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_images_status ON images(status);
CREATE INDEX IF NOT EXISTS idx_images_created_at ON images(created_at);
`

// Lifecycle states. Transitions are monotonic and one-directional:
// uploaded -> processing -> done | failed.
const (
	StatusUploaded   = "uploaded"
	StatusProcessing = "processing"
	StatusDone       = "done"
	StatusFailed     = "failed"
)

// ImageRecord is the persisted entity tracking one image's
// upload-to-completion lifecycle. ProcessedFilename, ProcessedPath and
// ProcessedAt are set if and only if Status is done.
type ImageRecord struct {
	ID                string     `json:"id"`
	OriginalFilename  string     `json:"original_filename"`
	OriginalPath      string     `json:"original_path"`
	ProcessedFilename string     `json:"processed_filename,omitempty"`
	ProcessedPath     string     `json:"processed_path,omitempty"`
	Status            string     `json:"status"`
	ErrorMessage      string     `json:"error_message,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	ProcessedAt       *time.Time `json:"processed_at,omitempty"`
}
