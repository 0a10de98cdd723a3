package search

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docgate/internal/domain"
	"github.com/kailas-cloud/docgate/internal/logger"
	"github.com/kailas-cloud/docgate/internal/query"
)

// Service orchestrates a search: cache lookup first, on miss build the
// structured query, execute it, shape the response, and populate the cache.
// A store failure is fatal to the call; cache failures at any step degrade
// to miss / no-op.
type Service struct {
	store Store
	cache Cache

	defaultPageSize int
	maxPageSize     int
}

// New creates a search service.
func New(store Store, cache Cache) *Service {
	return &Service{store: store, cache: cache, defaultPageSize: 10, maxPageSize: 100}
}

// WithPagination overrides the default and maximum page sizes.
func (s *Service) WithPagination(defaultSize, maxSize int) *Service {
	if defaultSize > 0 {
		s.defaultPageSize = defaultSize
	}
	if maxSize > 0 {
		s.maxPageSize = maxSize
	}
	return s
}

// Search runs one tenant-scoped search call.
func (s *Service) Search(ctx context.Context, req domain.SearchRequest) (domain.FacetedResponse, error) {
	if err := req.Validate(); err != nil {
		return domain.FacetedResponse{}, err
	}
	s.applyPagination(&req)

	log := logger.FromContext(ctx)

	// The key embeds the tenant's cache epoch; if it cannot be computed the
	// whole cache is skipped for this call.
	key, err := s.cache.Key(ctx, req.TenantID, req.QueryText, req.Page, req.PageSize)
	useCache := err == nil
	if err != nil {
		log.Warn("Cache key unavailable, bypassing cache", zap.Error(err))
	}

	if useCache {
		if cached, ok := s.lookup(ctx, key, log); ok {
			return cached, nil
		}
	}

	q := query.Build(req.QueryText, req.TenantID, req.Page, req.PageSize)

	resp, err := s.store.Query(ctx, q)
	if err != nil {
		return domain.FacetedResponse{}, fmt.Errorf("execute search: %w", err)
	}

	if useCache {
		if err := s.cache.Set(ctx, key, resp); err != nil {
			log.Warn("Failed to populate result cache", zap.String("key", key), zap.Error(err))
		}
	}

	return resp, nil
}

func (s *Service) applyPagination(req *domain.SearchRequest) {
	if req.PageSize == 0 {
		req.PageSize = s.defaultPageSize
	}
	if req.PageSize > s.maxPageSize {
		req.PageSize = s.maxPageSize
	}
}

func (s *Service) lookup(ctx context.Context, key string, log *zap.Logger) (domain.FacetedResponse, bool) {
	cached, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		log.Warn("Result cache lookup failed, treating as miss",
			zap.String("key", key), zap.Error(err))
		return domain.FacetedResponse{}, false
	}
	return cached, ok
}
