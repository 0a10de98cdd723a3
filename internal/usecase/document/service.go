package document

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docgate/internal/domain"
	"github.com/kailas-cloud/docgate/internal/logger"
)

// Service handles the document write/read path. Every successful write
// invalidates the owning tenant's cached search results before the write is
// reported complete, so post-write staleness is bounded by the cache TTL
// even on the invalidation failure path.
type Service struct {
	repo  Repository
	cache Invalidator
}

// New creates a document service.
func New(repo Repository, cache Invalidator) *Service {
	return &Service{repo: repo, cache: cache}
}

// Index validates and upserts a document, then invalidates the tenant's
// cache. A failed store write aborts with no invalidation (nothing changed).
// A failed invalidation after a durable write is logged and the write still
// succeeds; stale entries expire by TTL.
func (s *Service) Index(ctx context.Context, doc *domain.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}

	if err := s.repo.Put(ctx, doc); err != nil {
		return fmt.Errorf("index document: %w", err)
	}

	s.invalidate(ctx, doc.TenantID)
	return nil
}

// Get retrieves a document by id. Lookups are not tenant-scoped: document
// identity is the id alone.
func (s *Service) Get(ctx context.Context, id string) (domain.Document, error) {
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrDocumentNotFound) {
			return domain.Document{}, domain.ErrDocumentNotFound
		}
		return domain.Document{}, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// Delete removes a document by id, idempotently. The document is looked up
// first only to learn which tenant's cache to invalidate; an already-absent
// id short-circuits to success with nothing to invalidate.
func (s *Service) Delete(ctx context.Context, id string) error {
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrDocumentNotFound) {
			return nil
		}
		return fmt.Errorf("delete document: %w", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	s.invalidate(ctx, doc.TenantID)
	return nil
}

func (s *Service) invalidate(ctx context.Context, tenantID string) {
	if err := s.cache.InvalidateTenant(ctx, tenantID); err != nil {
		logger.FromContext(ctx).Warn("Cache invalidation failed, staleness bounded by TTL",
			zap.String("tenant_id", tenantID), zap.Error(err))
	}
}
