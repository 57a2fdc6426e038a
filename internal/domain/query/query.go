// Package query models a single natural-language product request.
package query

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/stylist/internal/domain"
)

// MaxTextLength is the maximum accepted query length in characters.
const MaxTextLength = 2048

// Query is the unit of work of one request. Values are copied, never shared across requests.
type Query struct {
	text        string
	semantic    string
	constraints Constraints
}

// New validates the raw text.
func New(text string) (Query, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Query{}, fmt.Errorf("%w: query is required", domain.ErrInvalidQuery)
	}
	if utf8.RuneCountInString(text) > MaxTextLength {
		return Query{}, fmt.Errorf("%w: query too long (max %d chars)", domain.ErrInvalidQuery, MaxTextLength)
	}
	return Query{text: text}, nil
}

// Text returns the original text.
func (q Query) Text() string { return q.text }

// SemanticText returns the rewritten text, or the original when no rewrite happened.
func (q Query) SemanticText() string {
	if q.semantic == "" {
		return q.text
	}
	return q.semantic
}

// Constraints returns the extracted constraints.
func (q Query) Constraints() Constraints { return q.constraints }

// WithSemanticText returns a copy carrying the rewritten text.
func (q Query) WithSemanticText(s string) Query {
	q.semantic = strings.TrimSpace(s)
	return q
}

// WithConstraints returns a copy carrying the constraints.
func (q Query) WithConstraints(c Constraints) Query {
	q.constraints = c
	return q
}
