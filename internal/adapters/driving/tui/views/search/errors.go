package search

import "errors"

// Error definitions for the search view.
var (
	// ErrNoSearchService indicates that no search service was provided.
	ErrNoSearchService = errors.New("search service is not configured")

	// ErrNoFileService indicates that notes cannot be opened.
	ErrNoFileService = errors.New("file service is not configured")
)
