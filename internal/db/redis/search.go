package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/docgate/internal/db"
)

// Search runs a paginated full-text search via FT.SEARCH.
func (s *Store) Search(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if q.Query == "" {
		return nil, fmt.Errorf("query is required")
	}
	if q.Limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}

	args := []string{q.IndexName, q.Query}

	if len(q.ReturnFields) > 0 {
		args = append(args, "RETURN", strconv.Itoa(len(q.ReturnFields)))
		args = append(args, q.ReturnFields...)
	}

	if q.Highlight != nil {
		args = append(args, buildHighlightArgs(q.Highlight)...)
	}

	args = append(args,
		"WITHSCORES",
		"LIMIT", strconv.Itoa(q.Offset), strconv.Itoa(q.Limit),
		"DIALECT", "2",
	)

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	return parseSearchResult(raw)
}

// Aggregate runs a grouped term-count aggregation via FT.AGGREGATE.
func (s *Store) Aggregate(ctx context.Context, q *db.FacetQuery) ([]db.FacetRow, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if q.Query == "" {
		return nil, fmt.Errorf("query is required")
	}
	if q.Field == "" {
		return nil, fmt.Errorf("field is required")
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 10
	}

	args := []string{
		q.IndexName, q.Query,
		"GROUPBY", "1", "@" + q.Field,
		"REDUCE", "COUNT", "0", "AS", "count",
		"SORTBY", "2", "@count", "DESC",
		"LIMIT", "0", strconv.Itoa(limit),
		"DIALECT", "2",
	}

	cmd := s.b().Arbitrary("FT.AGGREGATE").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpAggregate, Err: err}
	}

	return parseFacetRows(raw, q.Field)
}

func buildHighlightArgs(h *db.HighlightSpec) []string {
	args := []string{
		"SUMMARIZE", "FIELDS", "1", h.Field,
	}
	if h.Fragments > 0 {
		args = append(args, "FRAGS", strconv.Itoa(h.Fragments))
	}
	if h.FragLen > 0 {
		args = append(args, "LEN", strconv.Itoa(h.FragLen))
	}
	if h.Separator != "" {
		args = append(args, "SEPARATOR", h.Separator)
	}
	args = append(args, "HIGHLIGHT", "FIELDS", "1", h.Field)
	if h.OpenTag != "" && h.CloseTag != "" {
		args = append(args, "TAGS", h.OpenTag, h.CloseTag)
	}
	return args
}

// --- Result parsing ---

func parseSearchResult(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return &db.SearchResult{Total: 0}, nil
	}

	entries := make([]db.SearchEntry, 0, (len(raw)-1)/3)
	// 3-stride: [total, key1, score1, fields1, key2, score2, fields2, ...]
	for i := 1; i+2 < len(raw); i += 3 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}

		scoreStr, err := raw[i+1].ToString()
		if err != nil {
			continue
		}
		score, err := strconv.ParseFloat(scoreStr, 64)
		if err != nil {
			continue
		}

		fields, err := raw[i+2].ToArray()
		if err != nil {
			continue
		}

		entries = append(entries, db.SearchEntry{
			Key:    key,
			Score:  score,
			Fields: parseFieldPairs(fields),
		})
	}

	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}

func parseFacetRows(raw []rueidis.RedisMessage, field string) ([]db.FacetRow, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	// [total, row1, row2, ...]; each row is a flat field-value array
	rows := make([]db.FacetRow, 0, len(raw)-1)
	for i := 1; i < len(raw); i++ {
		pairs, err := raw[i].ToArray()
		if err != nil {
			continue
		}
		m := parseFieldPairs(pairs)

		count, err := strconv.Atoi(m["count"])
		if err != nil {
			continue
		}
		rows = append(rows, db.FacetRow{Value: m[field], Count: count})
	}

	return rows, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}
