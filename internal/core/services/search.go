package services

import (
	"context"
	"strings"

	"github.com/custodia-labs/notely-cli/internal/core/domain"
	"github.com/custodia-labs/notely-cli/internal/core/ports/driven"
	"github.com/custodia-labs/notely-cli/internal/core/ports/driving"
	"github.com/custodia-labs/notely-cli/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// SearchService runs searches against the notes service.
type SearchService struct {
	api driven.NotesAPI
}

// NewSearchService creates a search service.
func NewSearchService(api driven.NotesAPI) *SearchService {
	return &SearchService{api: api}
}

// Search queries the user's notes. An empty query returns no results
// without a request.
func (s *SearchService) Search(ctx context.Context, query string, limit int) ([]domain.SearchResult, error) {
	logger.Section("Search Execution")
	logger.Debug("Query: %q", query)

	query = strings.TrimSpace(query)
	if query == "" {
		logger.Debug("Empty query, returning no results")
		return []domain.SearchResult{}, nil
	}
	if limit <= 0 {
		limit = domain.DefaultSearchLimit
	}

	results, err := s.api.Search(ctx, domain.SearchQuery{Query: query, TopK: limit})
	if err != nil {
		return nil, err
	}
	if len(results) > limit {
		results = results[:limit]
	}

	logger.Debug("Results: %d", len(results))
	return results, nil
}
