package document

import (
	"context"

	"github.com/kailas-cloud/docgate/internal/domain"
)

// Repository defines the storage contract for documents.
type Repository interface {
	Put(ctx context.Context, doc *domain.Document) error
	Get(ctx context.Context, id string) (domain.Document, error)
	Delete(ctx context.Context, id string) error
}

// Invalidator drops cached search results for a tenant.
type Invalidator interface {
	InvalidateTenant(ctx context.Context, tenantID string) error
}
