package domain

// DefaultSearchLimit is the number of results requested when none is given.
const DefaultSearchLimit = 10

// SearchQuery is a request to the notes search endpoint.
type SearchQuery struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`
}

// SearchResult represents a single search hit.
type SearchResult struct {
	// ID is the note identifier.
	ID string `json:"id"`

	// Score is the combined relevance score.
	Score float64 `json:"score"`

	// Content is the matched passage.
	Content string `json:"content"`

	// Title is the note title.
	Title string `json:"title,omitempty"`

	// Explicit is true when the note was requested by name.
	Explicit bool `json:"explicit,omitempty"`

	// KeywordScore is the lexical component of Score.
	KeywordScore float64 `json:"keyword_score,omitempty"`

	// MatchedKeywords lists query terms found in the note.
	MatchedKeywords []string `json:"matched_keywords,omitempty"`
}

// SourceRef converts the hit into a message citation.
func (r SearchResult) SourceRef() SourceRef {
	return SourceRef{
		ID:              r.ID,
		Title:           r.Title,
		Score:           r.Score,
		MatchedKeywords: r.MatchedKeywords,
		Content:         r.Content,
	}
}
