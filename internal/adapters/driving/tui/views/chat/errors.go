package chat

import "errors"

// Error definitions for the chat view.
var (
	// ErrNoChatService indicates that no chat service was provided.
	ErrNoChatService = errors.New("chat service is required")

	// ErrNoThreadService indicates that no thread service was provided.
	ErrNoThreadService = errors.New("thread service is required")

	// ErrNoUploadService indicates that uploads are not available.
	ErrNoUploadService = errors.New("upload service is not configured")
)
