// Package product holds catalog records as returned by the vector index.
package product

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Well-known record attributes.
const (
	AttrName     = "name"
	AttrColor    = "color"
	AttrCategory = "category"
	AttrGender   = "gender"
	AttrPrice    = "price_regular"
)

// Record is a single catalog item: identifier, relevance score, descriptive
// text and its attributes. Records are values; accessors return copies.
type Record struct {
	id       string
	score    float64
	content  string
	tags     map[string]string
	numerics map[string]float64
}

// New creates a record. Maps are copied.
func New(id string, score float64, content string, tags map[string]string, numerics map[string]float64) Record {
	return Record{
		id: id, score: score, content: content,
		tags: copyMap(tags), numerics: copyMap(numerics),
	}
}

// ID returns the product identifier.
func (r Record) ID() string { return r.id }

// Score returns the similarity to the query in [0,1]. Lookups by id carry 0.
func (r Record) Score() float64 { return r.score }

// Content returns the descriptive text the embedding was computed from.
func (r Record) Content() string { return r.content }

// Tags returns a copy of the text attributes.
func (r Record) Tags() map[string]string { return copyMap(r.tags) }

// Numerics returns a copy of the numeric attributes.
func (r Record) Numerics() map[string]float64 { return copyMap(r.numerics) }

// Tag returns a single text attribute.
func (r Record) Tag(name string) (string, bool) {
	v, ok := r.tags[name]
	return v, ok
}

// Numeric returns a single numeric attribute.
func (r Record) Numeric(name string) (float64, bool) {
	v, ok := r.numerics[name]
	return v, ok
}

// Render formats the record for a prompt: content first, then attributes in
// stable order.
func (r Record) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "id: %s\n", r.id)
	if r.content != "" {
		fmt.Fprintf(&b, "description: %s\n", r.content)
	}
	for _, k := range sortedKeys(r.tags) {
		fmt.Fprintf(&b, "%s: %s\n", k, r.tags[k])
	}
	for _, k := range sortedKeys(r.numerics) {
		fmt.Fprintf(&b, "%s: %s\n", k, strconv.FormatFloat(r.numerics[k], 'f', -1, 64))
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderAll joins rendered records with blank lines.
func RenderAll(records []Record) string {
	parts := make([]string, len(records))
	for i := range records {
		parts[i] = records[i].Render()
	}
	return strings.Join(parts, "\n\n")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func copyMap[V any](m map[string]V) map[string]V {
	if m == nil {
		return nil
	}
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
