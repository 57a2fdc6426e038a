// Package retrieval runs similarity search over the product index.
package retrieval

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/stylist/internal/domain"
	"github.com/kailas-cloud/stylist/internal/domain/product"
	"github.com/kailas-cloud/stylist/internal/domain/search/filter"
	"github.com/kailas-cloud/stylist/internal/logger"
)

// DefaultK is the candidate count used when the caller passes k <= 0.
const DefaultK = 4

// MaxK bounds a single search.
const MaxK = 100

// Service retrieves candidate products.
type Service struct {
	repo  Repository
	embed Embedder
}

// New creates a retrieval service.
func New(repo Repository, embed Embedder) *Service {
	return &Service{repo: repo, embed: embed}
}

// Search embeds text and returns the k nearest products, best first.
// A nil or empty predicate runs an unrestricted search.
// No match is an empty, non-nil slice.
func (s *Service) Search(
	ctx context.Context, text string, pred *filter.Predicate, k int,
) ([]product.Record, error) {
	if k <= 0 {
		k = DefaultK
	}
	if k > MaxK {
		return nil, fmt.Errorf("%w: k must be at most %d", domain.ErrInvalidQuery, MaxK)
	}

	emb, err := s.embed.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if pred.IsEmpty() {
		pred = nil
	}

	records, err := s.repo.SearchKNN(ctx, emb.Embedding, pred, k)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	if records == nil {
		records = []product.Record{}
	}

	logger.FromContext(ctx).Debug("Retrieved candidates",
		zap.Int("k", k),
		zap.Int("found", len(records)),
		zap.Stringer("filter", pred),
	)
	return records, nil
}

// LookupByIDs returns the records of known ids. Unknown ids are skipped.
// Empty input returns an empty slice without touching the index.
func (s *Service) LookupByIDs(ctx context.Context, ids []string) ([]product.Record, error) {
	if len(ids) == 0 {
		return []product.Record{}, nil
	}
	records, err := s.repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("lookup products: %w", err)
	}
	if records == nil {
		records = []product.Record{}
	}
	return records, nil
}
