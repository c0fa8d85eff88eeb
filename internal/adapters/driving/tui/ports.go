// Package tui provides an interactive terminal user interface for notely.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/notely-cli/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Chat sends messages and streams answers.
	Chat driving.ChatService

	// Thread manages chat threads.
	Thread driving.ThreadService

	// Upload uploads files typed with /upload. Optional.
	Upload driving.UploadService

	// File reports the stored note count and reads opened notes. Optional.
	File driving.FileService

	// Search finds notes for the search view. Optional.
	Search driving.SearchService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(
	chat driving.ChatService,
	thread driving.ThreadService,
	upload driving.UploadService,
	file driving.FileService,
	search driving.SearchService,
) *Ports {
	return &Ports{
		Chat:   chat,
		Thread: thread,
		Upload: upload,
		File:   file,
		Search: search,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Chat == nil {
		return ErrMissingChatService
	}
	if p.Thread == nil {
		return ErrMissingThreadService
	}
	return nil
}
