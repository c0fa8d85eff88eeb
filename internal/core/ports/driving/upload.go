package driving

import (
	"context"

	"github.com/custodia-labs/notely-cli/internal/core/domain"
)

// ProgressFunc receives upload progress updates synchronously.
type ProgressFunc func(domain.UploadProgress)

// UploadService uploads files to the notes service.
type UploadService interface {
	// UploadBatch uploads files one at a time, in order.
	// A failed file does not stop the batch; an authentication failure does.
	UploadBatch(ctx context.Context, paths []string, onProgress ProgressFunc) (*domain.BatchSummary, error)

	// Progress returns the current progress slot.
	Progress() domain.UploadProgress

	// FileCount returns the last known number of stored files.
	FileCount() int
}

// FileService reads the user's stored files.
type FileService interface {
	// Count fetches the number of stored files.
	Count(ctx context.Context) (int, error)

	// List returns the stored files.
	List(ctx context.Context) ([]domain.FileRecord, error)

	// Content returns the extracted text of a file.
	Content(ctx context.Context, id string) (string, error)

	// History returns recent local upload outcomes, newest first.
	History(ctx context.Context, limit int) ([]domain.UploadRecord, error)
}
