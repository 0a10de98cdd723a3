package search

import (
	"context"

	"github.com/kailas-cloud/docgate/internal/domain"
	"github.com/kailas-cloud/docgate/internal/query"
)

// Store executes structured queries against the document index.
type Store interface {
	Query(ctx context.Context, q query.Structured) (domain.FacetedResponse, error)
}

// Cache is the result cache consumed by the orchestrator. It is an
// optimization, never a correctness dependency: every method may fail
// without failing the search.
type Cache interface {
	Key(ctx context.Context, tenantID, queryText string, page, pageSize int) (string, error)
	Get(ctx context.Context, key string) (domain.FacetedResponse, bool, error)
	Set(ctx context.Context, key string, resp domain.FacetedResponse) error
}
