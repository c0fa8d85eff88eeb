package driven

import (
	"context"

	"github.com/custodia-labs/notely-cli/internal/core/domain"
)

// ChatRequest is the body of a streaming chat call.
type ChatRequest struct {
	Message  string `json:"message"`
	ThreadID string `json:"thread_id,omitempty"`
	UserID   string `json:"user_id"`
}

// FrameStream yields decoded chat frames.
type FrameStream interface {
	// Next returns the next frame, or io.EOF once the stream has ended.
	// Errors matching domain.ErrStreamDecode are per-frame; the caller
	// may keep reading after one.
	Next() (domain.StreamFrame, error)

	// Close releases the underlying connection.
	Close() error
}

// NotesAPI is the typed surface of the notes service.
type NotesAPI interface {
	// CreateThread creates a thread with the given title.
	CreateThread(ctx context.Context, title string) (*domain.ChatThread, error)

	// ListThreads returns all threads of the current user.
	ListThreads(ctx context.Context) ([]domain.ChatThread, error)

	// GetThread returns a thread with its messages.
	GetThread(ctx context.Context, id string) (*domain.ChatThread, error)

	// DeleteThread removes a thread.
	DeleteThread(ctx context.Context, id string) error

	// StreamChat opens the chat event stream. The caller closes it.
	StreamChat(ctx context.Context, req ChatRequest) (FrameStream, error)

	// UploadFile sends one file as a multipart upload.
	UploadFile(ctx context.Context, filename string, content []byte) (*domain.FileUploadResult, error)

	// FileCount returns the number of stored files.
	FileCount(ctx context.Context) (int, error)

	// ListFiles returns the stored files.
	ListFiles(ctx context.Context) ([]domain.FileRecord, error)

	// FileContent returns the extracted text of a stored file.
	FileContent(ctx context.Context, id string) (string, error)

	// Search runs a combined semantic and keyword search.
	Search(ctx context.Context, query domain.SearchQuery) ([]domain.SearchResult, error)

	// GetSettings returns the user's settings.
	GetSettings(ctx context.Context) (*domain.UserSettings, error)

	// UpdateSettings applies a partial update and returns the result.
	UpdateSettings(ctx context.Context, patch domain.SettingsPatch) (*domain.UserSettings, error)

	// ListAPIKeys returns key metadata.
	ListAPIKeys(ctx context.Context) ([]domain.APIKey, error)

	// CreateAPIKey issues a new key. The plaintext key is only returned here.
	CreateAPIKey(ctx context.Context, req domain.CreateAPIKeyRequest) (*domain.APIKey, error)

	// RevokeAPIKey revokes a key.
	RevokeAPIKey(ctx context.Context, id string) error
}
