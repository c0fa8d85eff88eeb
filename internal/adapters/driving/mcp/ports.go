package mcp

import (
	"github.com/custodia-labs/notely-cli/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search provides search capabilities.
	Search driving.SearchService

	// Chat answers questions about the notes.
	Chat driving.ChatService

	// Thread reads chat threads.
	Thread driving.ThreadService

	// File reads stored notes.
	File driving.FileService

	// Upload sends local files to the notes service.
	Upload driving.UploadService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	// The remaining ports are optional; their tools report not configured.
	return nil
}
