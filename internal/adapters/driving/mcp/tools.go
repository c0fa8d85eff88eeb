package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/notely-cli/internal/core/domain"
	"github.com/custodia-labs/notely-cli/internal/core/ports/driving"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the search query to find notes"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 10)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	NoteID          string   `json:"note_id"`
	Title           string   `json:"title"`
	Score           float64  `json:"score"`
	MatchedKeywords []string `json:"matched_keywords,omitempty"`
	Content         string   `json:"content,omitempty"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Message  string `json:"message" jsonschema:"the question to ask about the notes"`
	ThreadID string `json:"thread_id,omitempty" jsonschema:"thread to continue (default: the active thread)"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	ThreadID string             `json:"thread_id"`
	Answer   string             `json:"answer"`
	Sources  []domain.SourceRef `json:"sources"`
}

// UploadInput is the input schema for the upload tool.
type UploadInput struct {
	Paths []string `json:"paths" jsonschema:"local file paths to upload, in order"`
}

// UploadOutput is the output schema for the upload tool.
type UploadOutput struct {
	Summary string              `json:"summary"`
	Files   []UploadFileOutcome `json:"files"`
}

// UploadFileOutcome is the outcome of one uploaded file.
type UploadFileOutcome struct {
	Path    string `json:"path"`
	Outcome string `json:"outcome"`
	Message string `json:"message"`
}

// FileCountInput is the (empty) input schema for the file_count tool.
type FileCountInput struct{}

// FileCountOutput is the output schema for the file_count tool.
type FileCountOutput struct {
	Count int `json:"count"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Search the user's notes",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Ask a question about the user's notes and get an answer with sources",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "upload",
		Description: "Upload local files (.txt, .pdf, .md, .doc, .docx) to the user's notes",
	}, s.handleUpload)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "file_count",
		Description: "Count the notes the user has uploaded",
	}, s.handleFileCount)
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = domain.DefaultSearchLimit
	}

	results, err := s.ports.Search.Search(ctx, input.Query, limit)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}

	for i := range results {
		output.Results[i] = SearchResultOutput{
			NoteID:          results[i].ID,
			Title:           results[i].Title,
			Score:           results[i].Score,
			MatchedKeywords: results[i].MatchedKeywords,
			Content:         results[i].Content,
		}
	}

	return nil, output, nil
}

// handleAsk sends a chat message and waits for the sealed answer.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if s.ports.Chat == nil {
		return nil, AskOutput{}, errNotConfigured
	}

	result, err := s.ports.Chat.Send(ctx, input.ThreadID, input.Message, func(driving.ChatEvent) {})
	if err != nil {
		return nil, AskOutput{}, err
	}

	sources := result.Answer.Sources
	if sources == nil {
		sources = []domain.SourceRef{}
	}
	return nil, AskOutput{
		ThreadID: result.ThreadID,
		Answer:   result.Answer.Content,
		Sources:  sources,
	}, nil
}

// handleUpload uploads a batch and reports every file's outcome.
func (s *Server) handleUpload(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input UploadInput,
) (*mcp.CallToolResult, UploadOutput, error) {
	if s.ports.Upload == nil {
		return nil, UploadOutput{}, errNotConfigured
	}

	summary, err := s.ports.Upload.UploadBatch(ctx, input.Paths, nil)
	if err != nil {
		return nil, UploadOutput{}, err
	}

	output := UploadOutput{
		Summary: summary.String(),
		Files:   make([]UploadFileOutcome, len(summary.Files)),
	}
	for i, f := range summary.Files {
		output.Files[i] = UploadFileOutcome{
			Path:    f.Path,
			Outcome: string(f.Outcome),
			Message: f.Message(),
		}
	}
	return nil, output, nil
}

// handleFileCount returns the number of stored notes.
func (s *Server) handleFileCount(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ FileCountInput,
) (*mcp.CallToolResult, FileCountOutput, error) {
	if s.ports.File == nil {
		return nil, FileCountOutput{}, errNotConfigured
	}

	count, err := s.ports.File.Count(ctx)
	if err != nil {
		return nil, FileCountOutput{}, err
	}
	return nil, FileCountOutput{Count: count}, nil
}
