package db

// HighlightSpec asks the store to return highlighted fragments of a field
// instead of its raw value.
type HighlightSpec struct {
	Field     string
	OpenTag   string
	CloseTag  string
	Fragments int
	FragLen   int
	Separator string // joins fragments in the returned field value
}

// TextQuery is the input for a paginated full-text search.
type TextQuery struct {
	IndexName    string
	Query        string // full query string including any tag pre-filters
	Offset       int
	Limit        int
	ReturnFields []string
	Highlight    *HighlightSpec
}

// FacetQuery is the input for a grouped term-count aggregation.
type FacetQuery struct {
	IndexName string
	Query     string
	Field     string
	Limit     int
}

// FacetRow is one bucket of an aggregation, ordered by descending count.
type FacetRow struct {
	Value string
	Count int
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
