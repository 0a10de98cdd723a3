package domain

import "fmt"

// SearchRequest is a tenant-scoped search, constructed per call.
type SearchRequest struct {
	TenantID  string
	QueryText string
	Page      int
	PageSize  int
}

// Validate checks the request. Page/PageSize defaults are applied by the
// search service, not here.
func (r *SearchRequest) Validate() error {
	if r.TenantID == "" {
		return fmt.Errorf("%w: tenant is required", ErrValidation)
	}
	if r.QueryText == "" {
		return fmt.Errorf("%w: query text is required", ErrValidation)
	}
	if r.Page < 0 {
		return fmt.Errorf("%w: page must be >= 0", ErrValidation)
	}
	if r.PageSize < 0 {
		return fmt.Errorf("%w: page size must be positive", ErrValidation)
	}
	return nil
}

// SearchHit is a single search result entry.
type SearchHit struct {
	ID         string              `json:"id"`
	Score      float64             `json:"relevance_score"`
	Highlights map[string][]string `json:"highlights,omitempty"`
	Source     Document            `json:"source"`
}

// FacetValue is one bucket of a facet aggregation.
type FacetValue struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// FacetedResponse is the shaped result of a search: hits ordered by
// descending relevance plus facet buckets ordered by descending count.
type FacetedResponse struct {
	Results []SearchHit             `json:"results"`
	Facets  map[string][]FacetValue `json:"facets"`
	Total   int                     `json:"total"`
}
