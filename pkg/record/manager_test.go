package record

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/coolprogrammerarpit007/bg-remover/pkg/db"
)

func testManager(t *testing.T) (*Manager, *db.Repository) {
	t.Helper()
	repo, err := db.NewRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewRepository failed: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return NewManager(repo), repo
}

func TestCreateStartsUploaded(t *testing.T) {
	m, repo := testManager(t)

	rec, err := m.Create("photo.jpg", "originals/x.jpg")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if rec.ID == "" {
		t.Error("expected a generated ID")
	}
	if rec.Status != db.StatusUploaded {
		t.Errorf("expected status %s, got %s", db.StatusUploaded, rec.Status)
	}
	if rec.ProcessedAt != nil || rec.ProcessedFilename != "" {
		t.Error("expected processed fields unset on creation")
	}

	stored, err := repo.GetByID(rec.ID)
	if err != nil || stored == nil {
		t.Fatalf("record not persisted: %v", err)
	}
	if stored.Status != db.StatusUploaded {
		t.Errorf("persisted status %s, want %s", stored.Status, db.StatusUploaded)
	}
}

func TestFullLifecycleToDone(t *testing.T) {
	m, repo := testManager(t)

	rec, err := m.Create("photo.jpg", "originals/x.jpg")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := m.MarkProcessing(rec); err != nil {
		t.Fatalf("MarkProcessing failed: %v", err)
	}
	if rec.Status != db.StatusProcessing {
		t.Errorf("expected in-memory status %s, got %s", db.StatusProcessing, rec.Status)
	}

	if err := m.MarkDone(rec, "out.png", "processed/out.png"); err != nil {
		t.Fatalf("MarkDone failed: %v", err)
	}
	if rec.Status != db.StatusDone {
		t.Errorf("expected status %s, got %s", db.StatusDone, rec.Status)
	}
	if rec.ProcessedAt == nil {
		t.Error("expected ProcessedAt to be set")
	}

	stored, _ := repo.GetByID(rec.ID)
	if stored.Status != db.StatusDone {
		t.Errorf("persisted status %s, want %s", stored.Status, db.StatusDone)
	}
	if stored.ProcessedPath != "processed/out.png" {
		t.Errorf("persisted processed path %s", stored.ProcessedPath)
	}
	if stored.ProcessedAt == nil {
		t.Error("expected persisted processed_at")
	}
}

func TestLifecycleToFailed(t *testing.T) {
	m, repo := testManager(t)

	rec, _ := m.Create("photo.jpg", "originals/x.jpg")
	if err := m.MarkProcessing(rec); err != nil {
		t.Fatalf("MarkProcessing failed: %v", err)
	}

	if err := m.MarkFailed(rec, "Background removal failed internally"); err != nil {
		t.Fatalf("MarkFailed failed: %v", err)
	}
	if rec.Status != db.StatusFailed {
		t.Errorf("expected status %s, got %s", db.StatusFailed, rec.Status)
	}

	stored, _ := repo.GetByID(rec.ID)
	if stored.ErrorMessage != "Background removal failed internally" {
		t.Errorf("unexpected persisted error message: %s", stored.ErrorMessage)
	}
	if stored.ProcessedAt != nil || stored.ProcessedFilename != "" {
		t.Error("failed records must not carry processed fields")
	}
}

func TestMarkProcessingRequiresUploaded(t *testing.T) {
	m, _ := testManager(t)

	rec, _ := m.Create("photo.jpg", "originals/x.jpg")
	if err := m.MarkProcessing(rec); err != nil {
		t.Fatalf("MarkProcessing failed: %v", err)
	}

	err := m.MarkProcessing(rec)
	if !errors.Is(err, ErrIllegalTransition) {
		t.Errorf("expected ErrIllegalTransition, got %v", err)
	}
}

func TestMarkDoneRequiresProcessing(t *testing.T) {
	m, _ := testManager(t)

	rec, _ := m.Create("photo.jpg", "originals/x.jpg")
	err := m.MarkDone(rec, "out.png", "processed/out.png")
	if !errors.Is(err, ErrIllegalTransition) {
		t.Errorf("expected ErrIllegalTransition for uploaded -> done, got %v", err)
	}
}

func TestTerminalStatesNeverRegress(t *testing.T) {
	m, _ := testManager(t)

	rec, _ := m.Create("photo.jpg", "originals/x.jpg")
	if err := m.MarkProcessing(rec); err != nil {
		t.Fatalf("MarkProcessing failed: %v", err)
	}
	if err := m.MarkDone(rec, "out.png", "processed/out.png"); err != nil {
		t.Fatalf("MarkDone failed: %v", err)
	}

	if err := m.MarkFailed(rec, "late failure"); !errors.Is(err, ErrIllegalTransition) {
		t.Errorf("expected done -> failed to be rejected, got %v", err)
	}
	if err := m.MarkProcessing(rec); !errors.Is(err, ErrIllegalTransition) {
		t.Errorf("expected done -> processing to be rejected, got %v", err)
	}
}

func TestStaleSnapshotRejectedByGuard(t *testing.T) {
	m, repo := testManager(t)

	rec, _ := m.Create("photo.jpg", "originals/x.jpg")

	// Another copy of the record advances first.
	other, _ := repo.GetByID(rec.ID)
	if err := m.MarkProcessing(other); err != nil {
		t.Fatalf("MarkProcessing failed: %v", err)
	}

	// The stale in-memory snapshot still claims uploaded; the database
	// guard rejects the duplicate transition.
	err := m.MarkProcessing(rec)
	if !errors.Is(err, ErrIllegalTransition) {
		t.Errorf("expected ErrIllegalTransition from stale snapshot, got %v", err)
	}
}
