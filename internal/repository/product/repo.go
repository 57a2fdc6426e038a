// Package product stores catalog records as Redis hashes and searches them through the FT index.
package product

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/stylist/internal/db"
	"github.com/kailas-cloud/stylist/internal/domain/product"
	"github.com/kailas-cloud/stylist/internal/domain/search/filter"
)

type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	DropIndex(ctx context.Context, name string) error
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Item is a record together with the vector it is indexed under.
type Item struct {
	Record product.Record
	Vector []float32
}

// Repo implements the retrieval and catalog repositories.
type Repo struct {
	store  store
	schema Schema
}

// New creates a product repository.
func New(s store, schema Schema) *Repo {
	return &Repo{store: s, schema: schema}
}

// EnsureIndex creates the FT index unless it already exists. recreate drops it first.
// Returns true when FT.CREATE ran.
func (r *Repo) EnsureIndex(ctx context.Context, recreate bool) (bool, error) {
	def, err := r.schema.IndexDefinition()
	if err != nil {
		return false, fmt.Errorf("index definition: %w", err)
	}

	if recreate {
		if err := r.store.DropIndex(ctx, def.Name); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
			return false, fmt.Errorf("drop index %s: %w", def.Name, err)
		}
	} else {
		exists, err := r.store.IndexExists(ctx, def.Name)
		if err != nil {
			return false, fmt.Errorf("check index %s: %w", def.Name, err)
		}
		if exists {
			return false, nil
		}
	}

	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return false, nil
		}
		return false, fmt.Errorf("create index %s: %w", def.Name, err)
	}
	return true, nil
}

// IndexReady reports whether the FT index exists.
func (r *Repo) IndexReady(ctx context.Context) (bool, error) {
	ok, err := r.store.IndexExists(ctx, r.schema.IndexName)
	if err != nil {
		return false, fmt.Errorf("check index %s: %w", r.schema.IndexName, err)
	}
	return ok, nil
}

// Upsert writes items in one pipeline. Vectors must match the schema dimension.
func (r *Repo) Upsert(ctx context.Context, items []Item) error {
	if len(items) == 0 {
		return nil
	}
	hashes := make([]db.HashSetItem, len(items))
	for i := range items {
		if len(items[i].Vector) != r.schema.Dim {
			return fmt.Errorf("product %s: vector dimension %d, want %d",
				items[i].Record.ID(), len(items[i].Vector), r.schema.Dim)
		}
		hashes[i] = db.HashSetItem{
			Key:    r.schema.key(items[i].Record.ID()),
			Fields: buildHashFields(&items[i]),
		}
	}
	if err := r.store.HSetMulti(ctx, hashes); err != nil {
		return fmt.Errorf("upsert %d products: %w", len(items), err)
	}
	return nil
}

// SearchKNN returns up to k records nearest to vector, restricted to pred when it is non-empty.
// Records are ordered by descending similarity.
func (r *Repo) SearchKNN(
	ctx context.Context, vector []float32, pred *filter.Predicate, k int,
) ([]product.Record, error) {
	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    r.schema.IndexName,
		Filter:       pred,
		Vector:       vector,
		K:            k,
		ReturnFields: r.schema.returnFields(),
	})
	if err != nil {
		return nil, fmt.Errorf("search knn %s: %w", r.schema.IndexName, err)
	}

	out := make([]product.Record, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		id := strings.TrimPrefix(e.Key, r.schema.KeyPrefix)
		out = append(out, r.parseHashFields(id, e.Score, e.Fields))
	}
	return out, nil
}

// GetByIDs returns records for known ids in input order; unknown ids are skipped.
func (r *Repo) GetByIDs(ctx context.Context, ids []string) ([]product.Record, error) {
	if len(ids) == 0 {
		return []product.Record{}, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.schema.key(id)
	}

	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("lookup %d products: %w", len(ids), err)
	}

	out := make([]product.Record, 0, len(hashes))
	for i, h := range hashes {
		if len(h) == 0 {
			continue
		}
		out = append(out, r.parseHashFields(ids[i], 0, h))
	}
	return out, nil
}

func buildHashFields(it *Item) map[string]string {
	tags := it.Record.Tags()
	nums := it.Record.Numerics()
	m := make(map[string]string, 2+len(tags)+len(nums))
	m[contentField] = it.Record.Content()
	m[db.VectorField] = db.VectorBytes(it.Vector)
	for k, v := range tags {
		m[k] = v
	}
	for k, v := range nums {
		m[k] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return m
}

func (r *Repo) parseHashFields(id string, score float64, m map[string]string) product.Record {
	var content string
	tags := make(map[string]string)
	numerics := make(map[string]float64)

	for k, v := range m {
		switch {
		case k == contentField:
			content = v
		case k == db.VectorField:
		case r.schema.isNumeric(k):
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				numerics[k] = f
			}
		default:
			tags[k] = v
		}
	}
	return product.New(id, score, content, tags, numerics)
}
