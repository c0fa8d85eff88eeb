package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/custodia-labs/notely-cli/internal/core/domain"
	"github.com/custodia-labs/notely-cli/internal/core/ports/driven"
)

// uploadHistoryStore implements driven.UploadHistoryStore.
type uploadHistoryStore struct {
	store *Store
}

var _ driven.UploadHistoryStore = (*uploadHistoryStore)(nil)

// Record appends an upload outcome.
func (s *uploadHistoryStore) Record(ctx context.Context, rec domain.UploadRecord) error {
	if rec.Path == "" || rec.Outcome == "" {
		return domain.ErrInvalidInput
	}
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = time.Now()
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO upload_history (batch_id, path, outcome, reason, message, file_id, attempts, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.BatchID, rec.Path, string(rec.Outcome),
		nullString(string(rec.Reason)), nullString(rec.Message), nullString(rec.FileID),
		rec.Attempts, formatTime(rec.RecordedAt))

	if err != nil {
		return fmt.Errorf("recording upload: %w", err)
	}
	return nil
}

// List returns the most recent records, newest first.
func (s *uploadHistoryStore) List(ctx context.Context, limit int) ([]domain.UploadRecord, error) {
	if limit < 0 {
		return nil, domain.ErrInvalidInput
	}
	if limit == 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, batch_id, path, outcome, reason, message, file_id, attempts, recorded_at
		FROM upload_history
		ORDER BY recorded_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying upload history: %w", err)
	}
	defer rows.Close()

	var records []domain.UploadRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		rec, err := scanUploadRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating upload history: %w", err)
	}

	return records, nil
}

// Clear removes all records.
func (s *uploadHistoryStore) Clear(ctx context.Context) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM upload_history"); err != nil {
		return fmt.Errorf("clearing upload history: %w", err)
	}
	return nil
}

func scanUploadRecord(rows *sql.Rows) (*domain.UploadRecord, error) {
	var rec domain.UploadRecord
	var outcome, recordedAt string
	var reason, message, fileID sql.NullString

	if err := rows.Scan(&rec.ID, &rec.BatchID, &rec.Path, &outcome,
		&reason, &message, &fileID, &rec.Attempts, &recordedAt); err != nil {
		return nil, fmt.Errorf("scanning upload record: %w", err)
	}

	rec.Outcome = domain.UploadOutcome(outcome)
	rec.Reason = domain.DegradedReason(reason.String)
	rec.Message = message.String
	rec.FileID = fileID.String
	rec.RecordedAt = parseTime(recordedAt)

	return &rec, nil
}

// timeLayout sorts lexically in chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime returns zero time if s cannot be parsed.
func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// nullString returns nil for empty strings, otherwise the string.
func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
