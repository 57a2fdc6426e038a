package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/stylist/internal/db"
	"github.com/kailas-cloud/stylist/internal/domain/search/filter"
)

const scoreField = "__vector_score"

// SearchKNN runs FT.SEARCH with a KNN clause, pre-filtered by q.Filter when present.
func (s *Store) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("%w: index name is required", db.ErrInvalidRequest)
	}
	if len(q.Vector) == 0 {
		return nil, fmt.Errorf("%w: vector is required", db.ErrInvalidRequest)
	}
	if q.K <= 0 {
		return nil, fmt.Errorf("%w: k must be positive", db.ErrInvalidRequest)
	}

	queryStr, err := buildKNNQuery(q.Filter, q.K)
	if err != nil {
		return nil, err
	}

	args := []string{q.IndexName, queryStr}
	if len(q.ReturnFields) > 0 {
		args = append(args, "RETURN", strconv.Itoa(len(q.ReturnFields)+1))
		args = append(args, q.ReturnFields...)
		args = append(args, scoreField)
	}
	args = append(args,
		"SORTBY", scoreField, "ASC",
		"LIMIT", "0", strconv.Itoa(q.K),
		"PARAMS", "2", "BLOB", db.VectorBytes(q.Vector),
		"DIALECT", "2",
	)

	raw, err := s.do(ctx, s.b().Arbitrary("FT.SEARCH").Args(args...).Build()).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}
	return parseKNNResult(raw)
}

func buildKNNQuery(pred *filter.Predicate, k int) (string, error) {
	knn := fmt.Sprintf("[KNN %d @%s $BLOB]", k, db.VectorField)
	if pred.IsEmpty() {
		return "*=>" + knn, nil
	}
	f, err := buildFilter(pred)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("(%s)=>%s", f, knn), nil
}

// buildFilter renders a conjunction as space-separated clauses, which the query engine intersects.
func buildFilter(pred *filter.Predicate) (string, error) {
	leaves := pred.Leaves()
	parts := make([]string, 0, len(leaves))
	for _, l := range leaves {
		clause, err := buildClause(l)
		if err != nil {
			return "", err
		}
		parts = append(parts, clause)
	}
	return strings.Join(parts, " "), nil
}

func buildClause(l filter.Leaf) (string, error) {
	if l.IsNumeric() {
		return buildNumericClause(l.Attribute(), l.Op(), l.Number())
	}
	return buildTagClause(l.Attribute(), l.Op(), l.Text())
}

func buildTagClause(attr string, op filter.Op, value string) (string, error) {
	clause := fmt.Sprintf("@%s:{%s}", attr, tagEscaper.Replace(value))
	switch op {
	case filter.Equal:
		return clause, nil
	case filter.NotEqual:
		return "-" + clause, nil
	case filter.GreaterThan, filter.GreaterOrEqual, filter.LessThan, filter.LessOrEqual:
		return "", fmt.Errorf("%w: %s on tag field %s", db.ErrUnsupportedOp, op, attr)
	default:
		return "", fmt.Errorf("%w: %q", db.ErrUnsupportedOp, op)
	}
}

func buildNumericClause(attr string, op filter.Op, v float64) (string, error) {
	n := strconv.FormatFloat(v, 'f', -1, 64)
	var lo, hi string
	negate := false
	switch op {
	case filter.Equal:
		lo, hi = n, n
	case filter.NotEqual:
		lo, hi, negate = n, n, true
	case filter.GreaterThan:
		lo, hi = "("+n, "+inf"
	case filter.GreaterOrEqual:
		lo, hi = n, "+inf"
	case filter.LessThan:
		lo, hi = "-inf", "("+n
	case filter.LessOrEqual:
		lo, hi = "-inf", n
	default:
		return "", fmt.Errorf("%w: %q", db.ErrUnsupportedOp, op)
	}
	clause := fmt.Sprintf("@%s:[%s %s]", attr, lo, hi)
	if negate {
		clause = "-" + clause
	}
	return clause, nil
}

// parseKNNResult reads the RESP2 reply [total, key1, fields1, key2, fields2, ...].
func parseKNNResult(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return &db.SearchResult{}, nil
	}

	entries := make([]db.SearchEntry, 0, (len(raw)-1)/2)
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}
		fields, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}

		entry := db.SearchEntry{Key: key, Fields: parseFieldPairs(fields)}
		if scoreStr, ok := entry.Fields[scoreField]; ok {
			if d, err := strconv.ParseFloat(scoreStr, 64); err == nil {
				entry.Score = min(1, max(0, 1.0-d)) // cosine distance -> similarity
			}
			delete(entry.Fields, scoreField)
		}
		entries = append(entries, entry)
	}
	return &db.SearchResult{Total: int(total), Entries: entries}, nil
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

var tagEscaper = strings.NewReplacer(
	",", "\\,", ".", "\\.", "<", "\\<", ">", "\\>",
	"{", "\\{", "}", "\\}", "\"", "\\\"", "'", "\\'",
	":", "\\:", ";", "\\;", "!", "\\!", "@", "\\@",
	"#", "\\#", "$", "\\$", "%", "\\%", "^", "\\^",
	"&", "\\&", "*", "\\*", "(", "\\(", ")", "\\)",
	"-", "\\-", "+", "\\+", "=", "\\=", "~", "\\~",
	"|", "\\|", "/", "\\/", " ", "\\ ",
)
