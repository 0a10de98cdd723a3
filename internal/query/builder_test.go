package query

import (
	"strings"
	"testing"
)

func TestBuild_AlwaysScopedByTenant(t *testing.T) {
	q := Build("hello", "t1", 0, 10)

	if !strings.HasPrefix(q.QueryString, "@tenant_id:{t1}") {
		t.Fatalf("query must start with tenant filter, got %q", q.QueryString)
	}
}

func TestBuild_TenantEscaped(t *testing.T) {
	q := Build("hello", "acme-corp", 0, 10)

	if !strings.Contains(q.QueryString, `@tenant_id:{acme\-corp}`) {
		t.Errorf("tenant tag metacharacters must be escaped, got %q", q.QueryString)
	}
}

func TestBuild_FuzzinessTiers(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"very short term exact", "go", "@content:(go)"},
		{"short term one edit", "test", "@content:(%test%)"},
		{"five runes one edit", "index", "@content:(%index%)"},
		{"long term two edits", "document", "@content:(%%document%%)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Build(tt.text, "t1", 0, 10)
			if !strings.Contains(q.QueryString, tt.want) {
				t.Errorf("got %q, want substring %q", q.QueryString, tt.want)
			}
		})
	}
}

func TestBuild_MultipleTermsMatchAny(t *testing.T) {
	q := Build("quick brown", "t1", 0, 10)

	want := "@content:(%quick%|%brown%)"
	if !strings.Contains(q.QueryString, want) {
		t.Errorf("got %q, want substring %q", q.QueryString, want)
	}
}

func TestBuild_PunctuationStripped(t *testing.T) {
	q := Build("hello, world!", "t1", 0, 10)

	want := "@content:(%hello%|%world%)"
	if !strings.Contains(q.QueryString, want) {
		t.Errorf("got %q, want substring %q", q.QueryString, want)
	}
}

func TestBuild_NoTermsMatchesAllTenantDocs(t *testing.T) {
	q := Build("!!!", "t1", 0, 10)

	if q.QueryString != "@tenant_id:{t1} *" {
		t.Errorf("got %q", q.QueryString)
	}
}

func TestBuild_Pagination(t *testing.T) {
	tests := []struct {
		page, size, wantOffset int
	}{
		{0, 10, 0},
		{1, 10, 10},
		{3, 25, 75},
	}

	for _, tt := range tests {
		q := Build("x", "t1", tt.page, tt.size)
		if q.Offset != tt.wantOffset {
			t.Errorf("page=%d size=%d: offset = %d, want %d", tt.page, tt.size, q.Offset, tt.wantOffset)
		}
		if q.Limit != tt.size {
			t.Errorf("page=%d size=%d: limit = %d, want %d", tt.page, tt.size, q.Limit, tt.size)
		}
	}
}

func TestBuild_Deterministic(t *testing.T) {
	a := Build("quick brown fox", "t1", 2, 20)
	b := Build("quick brown fox", "t1", 2, 20)

	if a != b {
		t.Errorf("identical inputs must produce identical queries: %+v vs %+v", a, b)
	}
}

func TestBuild_HighlightAndFacetTargets(t *testing.T) {
	q := Build("x", "t1", 0, 10)

	if q.HighlightField != "content" {
		t.Errorf("highlight field = %q, want content", q.HighlightField)
	}
	if q.FacetField != "title" {
		t.Errorf("facet field = %q, want title", q.FacetField)
	}
}
