// Package query builds structured full-text search requests. Build is pure
// and deterministic: cache keys derived from the same inputs stay meaningful.
package query

import (
	"fmt"
	"strings"
	"unicode"
)

// Fragment markup and sizing for content highlights.
const (
	HighlightOpenTag  = "<em>"
	HighlightCloseTag = "</em>"
	HighlightFrags    = 3
	HighlightFragLen  = 25

	// FragmentSeparator joins summarize fragments in the returned field
	// value. A control character so splitting never collides with document
	// text.
	FragmentSeparator = "\x1f"
)

// Structured is a store-agnostic search request: a filter-scoped query
// string, pagination window, and highlight/facet directives. The document
// store adapter binds it to a concrete index.
type Structured struct {
	QueryString    string
	Offset         int
	Limit          int
	HighlightField string
	FacetField     string
}

// Build constructs a structured query from user-supplied terms.
//
// The query is always scoped with an exact-match tag filter on tenant_id;
// that filter is the tenant-isolation boundary and is never optional. Text
// terms match the content field with automatic edit-distance tolerance, and
// any term may match (the original match-query semantics).
func Build(queryText, tenantID string, page, pageSize int) Structured {
	return Structured{
		QueryString:    tenantFilter(tenantID) + " " + contentClause(queryText),
		Offset:         page * pageSize,
		Limit:          pageSize,
		HighlightField: "content",
		FacetField:     "title",
	}
}

// tenantFilter produces the exact-match tag filter scoping every query.
func tenantFilter(tenantID string) string {
	return fmt.Sprintf("@tenant_id:{%s}", tagEscaper.Replace(tenantID))
}

// contentClause expands query terms into a fuzzy match-any group over the
// content field. An input with no indexable terms degrades to matching all
// of the tenant's documents.
func contentClause(queryText string) string {
	terms := tokenize(queryText)
	if len(terms) == 0 {
		return "*"
	}

	parts := make([]string, len(terms))
	for i, t := range terms {
		parts[i] = fuzzTerm(t)
	}
	return fmt.Sprintf("@content:(%s)", strings.Join(parts, "|"))
}

// fuzzTerm applies the AUTO fuzziness policy: exact for very short terms,
// one edit for mid-length, two edits for long terms. %term% is one
// Levenshtein edit in the store's query syntax, %%term%% two.
func fuzzTerm(term string) string {
	switch n := len([]rune(term)); {
	case n < 3:
		return term
	case n <= 5:
		return "%" + term + "%"
	default:
		return "%%" + term + "%%"
	}
}

// tokenize splits query text into alphanumeric terms. Restricting terms to
// letters and digits keeps them free of query-syntax metacharacters, so no
// escaping is needed in the content clause.
func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// tagEscaper escapes tag-syntax metacharacters in tenant identifiers.
var tagEscaper = strings.NewReplacer(
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	" ", "\\ ",
)
