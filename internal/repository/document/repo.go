// Package document is the store adapter translating documents into
// index/lookup/delete/query operations against the full-text store.
package document

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/docgate/internal/db"
	"github.com/kailas-cloud/docgate/internal/domain"
	"github.com/kailas-cloud/docgate/internal/query"
)

const (
	docKeyPrefix = domain.KeyPrefix + "doc:"
	indexName    = domain.KeyPrefix + "docs:idx"
)

// store is the consumer interface for document operations (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	Search(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
	Aggregate(ctx context.Context, q *db.FacetQuery) ([]db.FacetRow, error)
}

// Repo implements the document store adapter over an FT-capable store.
type Repo struct {
	store      store
	facetLimit int
}

// New creates a document repository.
func New(s store) *Repo {
	return &Repo{store: s, facetLimit: 10}
}

// WithFacetLimit overrides the number of facet buckets returned per query.
func (r *Repo) WithFacetLimit(limit int) *Repo {
	if limit > 0 {
		r.facetLimit = limit
	}
	return r
}

// EnsureIndex creates the documents FT index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	def := &db.IndexDefinition{
		Name:        indexName,
		StorageType: db.StorageHash,
		Prefixes:    []string{docKeyPrefix},
		Fields: []db.IndexField{
			{Name: "tenant_id", Type: db.IndexFieldTag},
			// title is the facet GROUPBY property; it must be SORTABLE so
			// the aggregation pipeline can read its value.
			{Name: "title", Type: db.IndexFieldText, Sortable: true},
			{Name: "content", Type: db.IndexFieldText},
		},
	}

	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create documents index: %w", err)
	}
	return nil
}

// Put upserts a document by id. The hash write is atomic on the store side;
// cache invalidation is the caller's concern, not this adapter's.
func (r *Repo) Put(ctx context.Context, doc *domain.Document) error {
	if err := r.store.HSet(ctx, docKey(doc.ID), docToFields(doc)); err != nil {
		return fmt.Errorf("put document %s: %w", doc.ID, err)
	}
	return nil
}

// Get retrieves a document by id. Absence surfaces as
// domain.ErrDocumentNotFound, never as a store error.
func (r *Repo) Get(ctx context.Context, id string) (domain.Document, error) {
	fields, err := r.store.HGetAll(ctx, docKey(id))
	if err != nil {
		return domain.Document{}, fmt.Errorf("get document %s: %w", id, err)
	}
	if len(fields) == 0 {
		// HGETALL on a missing key returns an empty hash
		return domain.Document{}, domain.ErrDocumentNotFound
	}
	return docFromFields(id, fields), nil
}

// Delete removes a document by id. Deleting an absent id is a success.
func (r *Repo) Delete(ctx context.Context, id string) error {
	if err := r.store.Del(ctx, docKey(id)); err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	return nil
}

// Query executes a pre-built structured query: one FT.SEARCH for scored,
// highlighted hits, a pipelined multi-get for the raw source documents, and
// one aggregation for the facet buckets. Store ranking order (descending
// score) is preserved.
func (r *Repo) Query(ctx context.Context, q query.Structured) (domain.FacetedResponse, error) {
	sq := &db.TextQuery{
		IndexName:    indexName,
		Query:        q.QueryString,
		Offset:       q.Offset,
		Limit:        q.Limit,
		ReturnFields: []string{q.HighlightField},
		Highlight: &db.HighlightSpec{
			Field:     q.HighlightField,
			OpenTag:   query.HighlightOpenTag,
			CloseTag:  query.HighlightCloseTag,
			Fragments: query.HighlightFrags,
			FragLen:   query.HighlightFragLen,
			Separator: query.FragmentSeparator,
		},
	}

	sr, err := r.store.Search(ctx, sq)
	if err != nil {
		return domain.FacetedResponse{}, fmt.Errorf("search: %w", err)
	}

	hits, err := r.hydrateHits(ctx, sr, q.HighlightField)
	if err != nil {
		return domain.FacetedResponse{}, err
	}

	facets, err := r.facets(ctx, q)
	if err != nil {
		return domain.FacetedResponse{}, err
	}

	return domain.FacetedResponse{
		Results: hits,
		Facets:  facets,
		Total:   sr.Total,
	}, nil
}

// hydrateHits joins search entries (score + highlighted fragments) with the
// raw source documents fetched in a single round-trip.
func (r *Repo) hydrateHits(
	ctx context.Context, sr *db.SearchResult, highlightField string,
) ([]domain.SearchHit, error) {
	if len(sr.Entries) == 0 {
		return []domain.SearchHit{}, nil
	}

	keys := make([]string, len(sr.Entries))
	for i, e := range sr.Entries {
		keys[i] = e.Key
	}

	sources, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("fetch sources: %w", err)
	}

	hits := make([]domain.SearchHit, 0, len(sr.Entries))
	for i, e := range sr.Entries {
		if len(sources[i]) == 0 {
			// Deleted between search and fetch; drop the hit.
			continue
		}

		id := strings.TrimPrefix(e.Key, docKeyPrefix)
		hit := domain.SearchHit{
			ID:     id,
			Score:  e.Score,
			Source: docFromFields(id, sources[i]),
		}
		if frags := splitFragments(e.Fields[highlightField]); len(frags) > 0 {
			hit.Highlights = map[string][]string{highlightField: frags}
		}
		hits = append(hits, hit)
	}

	return hits, nil
}

func (r *Repo) facets(ctx context.Context, q query.Structured) (map[string][]domain.FacetValue, error) {
	rows, err := r.store.Aggregate(ctx, &db.FacetQuery{
		IndexName: indexName,
		Query:     q.QueryString,
		Field:     q.FacetField,
		Limit:     r.facetLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("facet aggregation: %w", err)
	}

	values := make([]domain.FacetValue, len(rows))
	for i, row := range rows {
		values[i] = domain.FacetValue{Value: row.Value, Count: row.Count}
	}

	return map[string][]domain.FacetValue{q.FacetField: values}, nil
}

func splitFragments(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, query.FragmentSeparator)
	frags := parts[:0]
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			frags = append(frags, trimmed)
		}
	}
	return frags
}

func docKey(id string) string {
	return docKeyPrefix + id
}
