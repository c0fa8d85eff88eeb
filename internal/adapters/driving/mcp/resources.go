package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for notely resources.
	uriScheme = "notely://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for listing threads.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "threads",
		Name:        "threads",
		Description: "The user's chat threads",
		MIMEType:    "application/json",
	}, s.handleThreadsResource)

	// Template for a thread's messages.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "threads/{threadId}",
		Name:        "thread",
		Description: "Messages of a specific chat thread",
		MIMEType:    "application/json",
	}, s.handleThreadResource)

	// Template for note content.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "files/{fileId}",
		Name:        "file-content",
		Description: "Extracted text of an uploaded note",
		MIMEType:    "text/plain",
	}, s.handleFileContentResource)
}

// handleThreadsResource returns a summary of all threads.
func (s *Server) handleThreadsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Thread == nil {
		return jsonResult(req.Params.URI, "[]"), nil
	}

	threads, err := s.ports.Thread.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing threads: %w", err)
	}

	type threadInfo struct {
		ID          string `json:"id"`
		Title       string `json:"title"`
		URI         string `json:"uri"`
		LastUpdated string `json:"last_updated,omitempty"`
	}

	infos := make([]threadInfo, len(threads))
	for i := range threads {
		infos[i] = threadInfo{
			ID:    threads[i].ID,
			Title: threads[i].Title,
			URI:   uriScheme + "threads/" + threads[i].ID,
		}
		if !threads[i].LastUpdated.IsZero() {
			infos[i].LastUpdated = threads[i].LastUpdated.UTC().Format("2006-01-02T15:04:05Z")
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling threads: %w", err)
	}
	return jsonResult(req.Params.URI, string(data)), nil
}

// handleThreadResource returns one thread with its messages.
func (s *Server) handleThreadResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Thread == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	threadID := extractID(req.Params.URI, "threads/")
	if threadID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	thread, err := s.ports.Thread.Get(ctx, threadID)
	if err != nil {
		return nil, fmt.Errorf("getting thread: %w", err)
	}

	data, err := json.MarshalIndent(thread, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling thread: %w", err)
	}
	return jsonResult(req.Params.URI, string(data)), nil
}

// handleFileContentResource returns the extracted text of a note.
func (s *Server) handleFileContentResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.File == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	fileID := extractID(req.Params.URI, "files/")
	if fileID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	content, err := s.ports.File.Content(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("getting file content: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     content,
		}},
	}, nil
}

func jsonResult(uri, text string) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     text,
		}},
	}
}

// extractID extracts the trailing ID from a URI like notely://threads/{id}.
// Nested paths are rejected.
func extractID(uri, collection string) string {
	prefix := uriScheme + collection

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
