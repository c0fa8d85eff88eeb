package driving

import (
	"context"

	"github.com/custodia-labs/notely-cli/internal/core/domain"
)

// SearchService provides search capabilities to external actors.
type SearchService interface {
	// Search queries the user's notes. A limit of zero uses the default.
	Search(ctx context.Context, query string, limit int) ([]domain.SearchResult, error)
}
