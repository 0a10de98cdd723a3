package document

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/kailas-cloud/docgate/internal/db"
	"github.com/kailas-cloud/docgate/internal/domain"
	"github.com/kailas-cloud/docgate/internal/query"
)

func TestPutWritesHashFields(t *testing.T) {
	var gotKey string
	var gotFields map[string]string
	s := &mockStore{
		hsetFn: func(_ context.Context, key string, fields map[string]string) error {
			gotKey = key
			gotFields = fields
			return nil
		},
	}

	doc := &domain.Document{ID: "doc-1", TenantID: "acme", Title: "Q3 Report", Content: "revenue up"}
	if err := New(s).Put(context.Background(), doc); err != nil {
		t.Fatalf("Put: %v", err)
	}

	if gotKey != "docgate:doc:doc-1" {
		t.Errorf("key = %q, want %q", gotKey, "docgate:doc:doc-1")
	}
	want := map[string]string{"tenant_id": "acme", "title": "Q3 Report", "content": "revenue up"}
	if !reflect.DeepEqual(gotFields, want) {
		t.Errorf("fields = %v, want %v", gotFields, want)
	}
}

func TestGetMissingDocument(t *testing.T) {
	s := &mockStore{
		hgetAllFn: func(context.Context, string) (map[string]string, error) {
			return map[string]string{}, nil
		},
	}

	_, err := New(s).Get(context.Background(), "ghost")
	if !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Fatalf("err = %v, want ErrDocumentNotFound", err)
	}
}

func TestGetHydratesDocument(t *testing.T) {
	s := &mockStore{
		hgetAllFn: func(_ context.Context, key string) (map[string]string, error) {
			if key != "docgate:doc:doc-1" {
				t.Errorf("key = %q", key)
			}
			return map[string]string{"tenant_id": "acme", "title": "T", "content": "C"}, nil
		},
	}

	doc, err := New(s).Get(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	want := domain.Document{ID: "doc-1", TenantID: "acme", Title: "T", Content: "C"}
	if doc != want {
		t.Errorf("doc = %+v, want %+v", doc, want)
	}
}

func TestGetStoreError(t *testing.T) {
	storeErr := &db.Error{Op: db.OpHGetAll, Err: errors.New("conn reset")}
	s := &mockStore{
		hgetAllFn: func(context.Context, string) (map[string]string, error) {
			return nil, storeErr
		},
	}

	_, err := New(s).Get(context.Background(), "doc-1")
	if !errors.Is(err, storeErr) {
		t.Fatalf("err = %v, want wrapped store error", err)
	}
	if errors.Is(err, domain.ErrDocumentNotFound) {
		t.Error("store error must not read as not-found")
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	var gotKey string
	s := &mockStore{
		delFn: func(_ context.Context, key string) error {
			gotKey = key
			return nil
		},
	}

	// The store's DEL of an absent key is a no-op success.
	if err := New(s).Delete(context.Background(), "ghost"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if gotKey != "docgate:doc:ghost" {
		t.Errorf("key = %q", gotKey)
	}
}

func TestEnsureIndexAlreadyExists(t *testing.T) {
	s := &mockStore{
		createIndexFn: func(context.Context, *db.IndexDefinition) error {
			// Wrapped like any other sentinel surfacing through a driver.
			return fmt.Errorf("create index: %w", db.ErrIndexExists)
		},
	}

	if err := New(s).EnsureIndex(context.Background()); err != nil {
		t.Fatalf("EnsureIndex: %v", err)
	}
}

func TestEnsureIndexDefinition(t *testing.T) {
	var got *db.IndexDefinition
	s := &mockStore{
		createIndexFn: func(_ context.Context, def *db.IndexDefinition) error {
			got = def
			return nil
		},
	}

	if err := New(s).EnsureIndex(context.Background()); err != nil {
		t.Fatalf("EnsureIndex: %v", err)
	}

	if got.Name != "docgate:docs:idx" {
		t.Errorf("index name = %q", got.Name)
	}
	if len(got.Prefixes) != 1 || got.Prefixes[0] != "docgate:doc:" {
		t.Errorf("prefixes = %v", got.Prefixes)
	}
	fields := map[string]db.IndexField{}
	for _, f := range got.Fields {
		fields[f.Name] = f
	}
	if fields["tenant_id"].Type != db.IndexFieldTag {
		t.Error("tenant_id must be a TAG field")
	}
	if fields["title"].Type != db.IndexFieldText || fields["content"].Type != db.IndexFieldText {
		t.Error("title and content must be TEXT fields")
	}
	// The facet aggregation groups by title; without SORTABLE the grouped
	// value is unreadable in the pipeline and every bucket collapses to "".
	if !fields["title"].Sortable {
		t.Error("title must be SORTABLE for facet grouping")
	}
}

func TestQueryJoinsSourcesAndFacets(t *testing.T) {
	frag := "quarterly <em>revenue</em>" + query.FragmentSeparator + "net <em>revenue</em> up"
	s := &mockStore{
		searchFn: func(_ context.Context, q *db.TextQuery) (*db.SearchResult, error) {
			if q.IndexName != "docgate:docs:idx" {
				t.Errorf("index = %q", q.IndexName)
			}
			if q.Highlight == nil || q.Highlight.Field != "content" {
				t.Errorf("highlight spec = %+v", q.Highlight)
			}
			return &db.SearchResult{
				Total: 2,
				Entries: []db.SearchEntry{
					{Key: "docgate:doc:a", Score: 2.5, Fields: map[string]string{"content": frag}},
					{Key: "docgate:doc:b", Score: 1.0, Fields: map[string]string{"content": ""}},
				},
			}, nil
		},
		hgetAllMultiFn: func(_ context.Context, keys []string) ([]map[string]string, error) {
			want := []string{"docgate:doc:a", "docgate:doc:b"}
			if !reflect.DeepEqual(keys, want) {
				t.Errorf("keys = %v, want %v", keys, want)
			}
			return []map[string]string{
				{"tenant_id": "acme", "title": "A", "content": "quarterly revenue"},
				{"tenant_id": "acme", "title": "B", "content": "net revenue up"},
			}, nil
		},
		aggregateFn: func(_ context.Context, q *db.FacetQuery) ([]db.FacetRow, error) {
			if q.Field != "title" {
				t.Errorf("facet field = %q", q.Field)
			}
			if q.Limit != 10 {
				t.Errorf("facet limit = %d", q.Limit)
			}
			return []db.FacetRow{{Value: "A", Count: 1}, {Value: "B", Count: 1}}, nil
		},
	}

	resp, err := New(s).Query(context.Background(), query.Structured{
		QueryString:    "@tenant_id:{acme} %revenue%",
		Limit:          10,
		HighlightField: "content",
		FacetField:     "title",
	})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}

	if resp.Total != 2 {
		t.Errorf("total = %d, want 2", resp.Total)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("results = %d, want 2", len(resp.Results))
	}

	first := resp.Results[0]
	if first.ID != "a" || first.Score != 2.5 {
		t.Errorf("first hit = %+v", first)
	}
	if first.Source.Title != "A" {
		t.Errorf("first source = %+v", first.Source)
	}
	wantFrags := []string{"quarterly <em>revenue</em>", "net <em>revenue</em> up"}
	if !reflect.DeepEqual(first.Highlights["content"], wantFrags) {
		t.Errorf("highlights = %v, want %v", first.Highlights["content"], wantFrags)
	}

	// Empty highlight payload means no Highlights map at all.
	if resp.Results[1].Highlights != nil {
		t.Errorf("second hit highlights = %v, want nil", resp.Results[1].Highlights)
	}

	if len(resp.Facets["title"]) != 2 {
		t.Errorf("facets = %v", resp.Facets)
	}
}

func TestQuerySkipsDeletedHits(t *testing.T) {
	s := &mockStore{
		searchFn: func(context.Context, *db.TextQuery) (*db.SearchResult, error) {
			return &db.SearchResult{
				Total: 2,
				Entries: []db.SearchEntry{
					{Key: "docgate:doc:a", Score: 2.0, Fields: map[string]string{}},
					{Key: "docgate:doc:gone", Score: 1.0, Fields: map[string]string{}},
				},
			}, nil
		},
		hgetAllMultiFn: func(_ context.Context, keys []string) ([]map[string]string, error) {
			return []map[string]string{
				{"tenant_id": "acme", "title": "A", "content": "x"},
				{}, // deleted between search and fetch
			}, nil
		},
	}

	resp, err := New(s).Query(context.Background(), query.Structured{
		QueryString: "@tenant_id:{acme} *", Limit: 10, HighlightField: "content", FacetField: "title",
	})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].ID != "a" {
		t.Errorf("results = %+v, want only doc a", resp.Results)
	}
}

func TestQueryEmptyResult(t *testing.T) {
	multiCalled := false
	s := &mockStore{
		searchFn: func(context.Context, *db.TextQuery) (*db.SearchResult, error) {
			return &db.SearchResult{Total: 0, Entries: nil}, nil
		},
		hgetAllMultiFn: func(_ context.Context, keys []string) ([]map[string]string, error) {
			multiCalled = true
			return nil, nil
		},
	}

	resp, err := New(s).Query(context.Background(), query.Structured{
		QueryString: "@tenant_id:{acme} %zzz%", Limit: 10, HighlightField: "content", FacetField: "title",
	})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if multiCalled {
		t.Error("no source fetch expected for an empty result")
	}
	if resp.Results == nil || len(resp.Results) != 0 {
		t.Errorf("results = %#v, want empty non-nil slice", resp.Results)
	}
}

func TestQuerySearchError(t *testing.T) {
	s := &mockStore{
		searchFn: func(context.Context, *db.TextQuery) (*db.SearchResult, error) {
			return nil, errors.New("index unavailable")
		},
	}

	_, err := New(s).Query(context.Background(), query.Structured{
		QueryString: "@tenant_id:{acme} *", Limit: 10, HighlightField: "content", FacetField: "title",
	})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestWithFacetLimit(t *testing.T) {
	var gotLimit int
	s := &mockStore{
		aggregateFn: func(_ context.Context, q *db.FacetQuery) ([]db.FacetRow, error) {
			gotLimit = q.Limit
			return nil, nil
		},
	}

	_, err := New(s).WithFacetLimit(3).Query(context.Background(), query.Structured{
		QueryString: "@tenant_id:{acme} *", Limit: 10, HighlightField: "content", FacetField: "title",
	})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if gotLimit != 3 {
		t.Errorf("facet limit = %d, want 3", gotLimit)
	}
}
