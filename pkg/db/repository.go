// Package db provides the SQLite-backed record store for image lifecycles.
package db

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/coolprogrammerarpit007/bg-remover/pkg/errors"
	_ "modernc.org/sqlite"
)

// Repository provides database operations for image records.
type Repository struct {
	db *sql.DB
}

// NewRepository opens (or creates) the database at dbPath and applies the
// schema.
func NewRepository(dbPath string) (*Repository, error) {
	slog.Info("database_init", "db_path", dbPath)

	database, err := sql.Open("sqlite", dbPath)
	if err != nil {
		slog.Error("database_open_failed", "db_path", dbPath, "error", err)
		return nil, errors.Wrap(err, "failed to open database")
	}

	if _, err := database.Exec(Schema); err != nil {
		database.Close()
		slog.Error("database_schema_failed", "db_path", dbPath, "error", err)
		return nil, errors.Wrap(err, "failed to create schema")
	}

	slog.Info("database_ready", "db_path", dbPath)
	return &Repository{db: database}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Insert persists a new image record.
func (r *Repository) Insert(rec *ImageRecord) error {
	slog.Info("database_insert_record", "record_id", rec.ID, "status", rec.Status)

	query := `
		INSERT INTO images (id, original_filename, original_path, processed_filename,
		                    processed_path, status, error_message, created_at, processed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query,
		rec.ID, rec.OriginalFilename, rec.OriginalPath,
		nullString(rec.ProcessedFilename), nullString(rec.ProcessedPath),
		rec.Status, nullString(rec.ErrorMessage), rec.CreatedAt, rec.ProcessedAt)
	if err != nil {
		slog.Error("database_insert_failed", "record_id", rec.ID, "error", err)
		return errors.Wrap(err, "failed to insert record")
	}
	return nil
}

// GetByID retrieves a record by its identifier, returning nil when absent.
func (r *Repository) GetByID(id string) (*ImageRecord, error) {
	query := `
		SELECT id, original_filename, original_path, processed_filename,
		       processed_path, status, error_message, created_at, processed_at
		FROM images WHERE id = ?
	`
	rec, err := scanRecord(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		slog.Info("database_record_not_found", "record_id", id)
		return nil, nil
	}
	if err != nil {
		slog.Error("database_query_failed", "record_id", id, "error", err)
		return nil, errors.Wrap(err, "failed to query record")
	}
	return rec, nil
}

// UpdateStatus performs a guarded status transition. It returns false when
// the record was not in the expected `from` state, leaving the row untouched;
// the transition either fully commits or the record keeps its prior status.
func (r *Repository) UpdateStatus(id, from, to, errorMessage string) (bool, error) {
	slog.Info("database_update_status", "record_id", id, "from", from, "to", to)

	query := `UPDATE images SET status = ?, error_message = ? WHERE id = ? AND status = ?`
	result, err := r.db.Exec(query, to, nullString(errorMessage), id, from)
	if err != nil {
		slog.Error("database_status_update_failed", "record_id", id, "error", err)
		return false, errors.Wrap(err, "failed to update status")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "failed to get rows affected")
	}
	return rows == 1, nil
}

// UpdateProcessed transitions a record out of `from` into done, setting the
// processed fields and timestamp in the same guarded statement.
func (r *Repository) UpdateProcessed(id, from, processedFilename, processedPath string, processedAt time.Time) (bool, error) {
	slog.Info("database_update_processed", "record_id", id, "processed_filename", processedFilename)

	query := `
		UPDATE images
		SET status = ?, processed_filename = ?, processed_path = ?, processed_at = ?, error_message = NULL
		WHERE id = ? AND status = ?
	`
	result, err := r.db.Exec(query, StatusDone, processedFilename, processedPath, processedAt, id, from)
	if err != nil {
		slog.Error("database_processed_update_failed", "record_id", id, "error", err)
		return false, errors.Wrap(err, "failed to update processed fields")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "failed to get rows affected")
	}
	return rows == 1, nil
}

// List retrieves all records, newest first.
func (r *Repository) List() ([]*ImageRecord, error) {
	query := `
		SELECT id, original_filename, original_path, processed_filename,
		       processed_path, status, error_message, created_at, processed_at
		FROM images ORDER BY created_at DESC
	`
	rows, err := r.db.Query(query)
	if err != nil {
		slog.Error("database_list_query_failed", "error", err)
		return nil, errors.Wrap(err, "failed to list records")
	}
	defer rows.Close()

	var records []*ImageRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan row")
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "rows error")
	}

	slog.Info("database_list_complete", "record_count", len(records))
	return records, nil
}

// ListByStatusBefore retrieves records in the given status created before
// the cutoff; used by the retention cleanup job.
func (r *Repository) ListByStatusBefore(status string, cutoff time.Time) ([]*ImageRecord, error) {
	query := `
		SELECT id, original_filename, original_path, processed_filename,
		       processed_path, status, error_message, created_at, processed_at
		FROM images WHERE status = ? AND created_at < ? ORDER BY created_at
	`
	rows, err := r.db.Query(query, status, cutoff)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query records")
	}
	defer rows.Close()

	var records []*ImageRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan row")
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Delete removes a record by ID.
func (r *Repository) Delete(id string) error {
	slog.Info("database_delete_record", "record_id", id)

	if _, err := r.db.Exec(`DELETE FROM images WHERE id = ?`, id); err != nil {
		slog.Error("database_delete_failed", "record_id", id, "error", err)
		return errors.Wrap(err, "failed to delete record")
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*ImageRecord, error) {
	var rec ImageRecord
	var processedFilename, processedPath, errorMessage sql.NullString
	var processedAt sql.NullTime

	err := row.Scan(
		&rec.ID, &rec.OriginalFilename, &rec.OriginalPath,
		&processedFilename, &processedPath, &rec.Status,
		&errorMessage, &rec.CreatedAt, &processedAt)
	if err != nil {
		return nil, err
	}

	rec.ProcessedFilename = processedFilename.String
	rec.ProcessedPath = processedPath.String
	rec.ErrorMessage = errorMessage.String
	if processedAt.Valid {
		t := processedAt.Time
		rec.ProcessedAt = &t
	}
	return &rec, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
