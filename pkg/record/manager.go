// Package record drives the persisted per-image status state machine:
// uploaded -> processing -> done | failed. The Manager is the sole mutator
// of record state; callers trigger transitions, never write fields directly.
package record

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/coolprogrammerarpit007/bg-remover/pkg/db"
	"github.com/coolprogrammerarpit007/bg-remover/pkg/errors"
	"github.com/segmentio/ksuid"
)

// ErrIllegalTransition is returned when a caller attempts a transition the
// state machine does not allow. Records never regress.
var ErrIllegalTransition = fmt.Errorf("illegal record status transition")

// Store is the subset of the record store the Manager needs.
type Store interface {
	Insert(rec *db.ImageRecord) error
	UpdateStatus(id, from, to, errorMessage string) (bool, error)
	UpdateProcessed(id, from, processedFilename, processedPath string, processedAt time.Time) (bool, error)
}

// Manager owns every status mutation of image records.
type Manager struct {
	store Store
}

func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

// Create persists a new record in the uploaded state with processed fields
// unset.
func (m *Manager) Create(originalFilename, originalPath string) (*db.ImageRecord, error) {
	rec := &db.ImageRecord{
		ID:               ksuid.New().String(),
		OriginalFilename: originalFilename,
		OriginalPath:     originalPath,
		Status:           db.StatusUploaded,
		CreatedAt:        time.Now().UTC(),
	}
	if err := m.store.Insert(rec); err != nil {
		return nil, errors.Wrap(err, "failed to create record")
	}
	slog.Info("record_created", "record_id", rec.ID, "original_filename", originalFilename)
	return rec, nil
}

// MarkProcessing transitions uploaded -> processing. Calling it on a record
// in any other state is a caller bug and is rejected.
func (m *Manager) MarkProcessing(rec *db.ImageRecord) error {
	if rec.Status != db.StatusUploaded {
		slog.Error("record_illegal_transition", "record_id", rec.ID, "from", rec.Status, "to", db.StatusProcessing)
		return fmt.Errorf("%w: %s -> %s for record %s", ErrIllegalTransition, rec.Status, db.StatusProcessing, rec.ID)
	}

	ok, err := m.store.UpdateStatus(rec.ID, db.StatusUploaded, db.StatusProcessing, "")
	if err != nil {
		return errors.Wrap(err, "failed to mark processing")
	}
	if !ok {
		return fmt.Errorf("%w: record %s no longer in %s", ErrIllegalTransition, rec.ID, db.StatusUploaded)
	}

	rec.Status = db.StatusProcessing
	slog.Info("record_processing", "record_id", rec.ID)
	return nil
}

// MarkDone transitions processing -> done, setting the processed fields and
// timestamp. Only done records carry processed fields.
func (m *Manager) MarkDone(rec *db.ImageRecord, processedFilename, processedPath string) error {
	if rec.Status != db.StatusProcessing {
		slog.Error("record_illegal_transition", "record_id", rec.ID, "from", rec.Status, "to", db.StatusDone)
		return fmt.Errorf("%w: %s -> %s for record %s", ErrIllegalTransition, rec.Status, db.StatusDone, rec.ID)
	}

	now := time.Now().UTC()
	ok, err := m.store.UpdateProcessed(rec.ID, db.StatusProcessing, processedFilename, processedPath, now)
	if err != nil {
		return errors.Wrap(err, "failed to mark done")
	}
	if !ok {
		return fmt.Errorf("%w: record %s no longer in %s", ErrIllegalTransition, rec.ID, db.StatusProcessing)
	}

	rec.Status = db.StatusDone
	rec.ProcessedFilename = processedFilename
	rec.ProcessedPath = processedPath
	rec.ProcessedAt = &now
	slog.Info("record_done", "record_id", rec.ID, "processed_filename", processedFilename)
	return nil
}

// MarkFailed transitions processing -> failed, recording the failure summary.
// Processed fields remain unset.
func (m *Manager) MarkFailed(rec *db.ImageRecord, errorSummary string) error {
	if rec.Status != db.StatusProcessing {
		slog.Error("record_illegal_transition", "record_id", rec.ID, "from", rec.Status, "to", db.StatusFailed)
		return fmt.Errorf("%w: %s -> %s for record %s", ErrIllegalTransition, rec.Status, db.StatusFailed, rec.ID)
	}

	ok, err := m.store.UpdateStatus(rec.ID, db.StatusProcessing, db.StatusFailed, errorSummary)
	if err != nil {
		return errors.Wrap(err, "failed to mark failed")
	}
	if !ok {
		return fmt.Errorf("%w: record %s no longer in %s", ErrIllegalTransition, rec.ID, db.StatusProcessing)
	}

	rec.Status = db.StatusFailed
	rec.ErrorMessage = errorSummary
	slog.Info("record_failed", "record_id", rec.ID, "error_summary", errorSummary)
	return nil
}
