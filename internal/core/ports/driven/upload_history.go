package driven

import (
	"context"

	"github.com/custodia-labs/notely-cli/internal/core/domain"
)

// UploadHistoryStore persists the outcome of every uploaded file.
type UploadHistoryStore interface {
	// Record appends an outcome.
	Record(ctx context.Context, rec domain.UploadRecord) error

	// List returns the most recent records, newest first.
	// A limit of zero returns all records.
	List(ctx context.Context, limit int) ([]domain.UploadRecord, error)

	// Clear removes all records.
	Clear(ctx context.Context) error
}
