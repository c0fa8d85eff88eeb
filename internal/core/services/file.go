package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/notely-cli/internal/core/domain"
	"github.com/custodia-labs/notely-cli/internal/core/ports/driven"
	"github.com/custodia-labs/notely-cli/internal/core/ports/driving"
)

// Ensure FileService implements the interface.
var _ driving.FileService = (*FileService)(nil)

// FileService reads stored files and the local upload history.
type FileService struct {
	api     driven.NotesAPI
	history driven.UploadHistoryStore
}

// NewFileService creates a file service. history may be nil.
func NewFileService(api driven.NotesAPI, history driven.UploadHistoryStore) *FileService {
	return &FileService{api: api, history: history}
}

// Count fetches the number of stored files.
func (s *FileService) Count(ctx context.Context) (int, error) {
	return s.api.FileCount(ctx)
}

// List returns the stored files.
func (s *FileService) List(ctx context.Context) ([]domain.FileRecord, error) {
	return s.api.ListFiles(ctx)
}

// Content returns the extracted text of a file.
func (s *FileService) Content(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("%w: file id is required", domain.ErrInvalidInput)
	}
	return s.api.FileContent(ctx, id)
}

// History returns recent upload outcomes, newest first.
func (s *FileService) History(ctx context.Context, limit int) ([]domain.UploadRecord, error) {
	if s.history == nil {
		return nil, nil
	}
	return s.history.List(ctx, limit)
}
