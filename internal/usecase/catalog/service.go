// Package catalog loads the product catalog into the vector index.
package catalog

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/stylist/internal/domain"
	"github.com/kailas-cloud/stylist/internal/logger"
	"github.com/kailas-cloud/stylist/internal/metrics"
	repoproduct "github.com/kailas-cloud/stylist/internal/repository/product"
)

// Defaults for Load.
const (
	DefaultBatchSize = 64
	DefaultWorkers   = 4
)

// Report summarizes one load.
type Report struct {
	Indexed  int
	Duration time.Duration
}

// Service indexes products: ensure index, then embed and upsert in parallel batches.
type Service struct {
	repo      Repository
	embed     Embedder
	batchSize int
	workers   int
}

// New creates a catalog loader.
func New(repo Repository, embed Embedder) *Service {
	return &Service{repo: repo, embed: embed, batchSize: DefaultBatchSize, workers: DefaultWorkers}
}

// WithBatchSize sets the number of products per embed+upsert round trip.
func (s *Service) WithBatchSize(n int) *Service {
	if n > 0 {
		s.batchSize = n
	}
	return s
}

// WithWorkers sets how many batches are processed concurrently.
func (s *Service) WithWorkers(n int) *Service {
	if n > 0 {
		s.workers = n
	}
	return s
}

// EnsureIndex creates the product index. recreate drops an existing one first.
func (s *Service) EnsureIndex(ctx context.Context, recreate bool) error {
	created, err := s.repo.EnsureIndex(ctx, recreate)
	if err != nil {
		return fmt.Errorf("ensure index: %w", err)
	}
	logger.FromContext(ctx).Info("Product index ready", zap.Bool("created", created))
	return nil
}

// Load validates every product, rejects duplicate ids, then embeds and upserts
// them in batches. The first failing batch cancels the rest; batches already
// written stay written.
func (s *Service) Load(ctx context.Context, products []Product) (Report, error) {
	start := time.Now()
	if err := validateAll(products); err != nil {
		metrics.CatalogProductsTotal.WithLabelValues("failed").Add(float64(len(products)))
		return Report{}, err
	}

	log := logger.FromContext(ctx)
	var indexed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for from := 0; from < len(products); from += s.batchSize {
		batch := products[from:min(from+s.batchSize, len(products))]
		g.Go(func() error {
			if err := s.loadBatch(gctx, batch); err != nil {
				metrics.CatalogProductsTotal.WithLabelValues("failed").Add(float64(len(batch)))
				return err
			}
			metrics.CatalogProductsTotal.WithLabelValues("indexed").Add(float64(len(batch)))
			n := indexed.Add(int64(len(batch)))
			log.Debug("Batch indexed", zap.Int("batch", len(batch)), zap.Int64("total", n))
			return nil
		})
	}
	err := g.Wait()

	report := Report{Indexed: int(indexed.Load()), Duration: time.Since(start)}
	if err != nil {
		return report, err //nolint:wrapcheck // loadBatch wraps
	}
	log.Info("Catalog loaded", zap.Int("products", report.Indexed), zap.Duration("duration", report.Duration))
	return report, nil
}

func (s *Service) loadBatch(ctx context.Context, batch []Product) error {
	texts := make([]string, len(batch))
	for i := range batch {
		texts[i] = batch[i].Document()
	}

	emb, err := domain.EmbedAll(ctx, s.embed, texts)
	if err != nil {
		return fmt.Errorf("embed products %s..%s: %w", batch[0].ID, batch[len(batch)-1].ID, err)
	}
	if len(emb.Embeddings) != len(batch) {
		return fmt.Errorf("%w: %d vectors for %d products", domain.ErrMalformedResponse, len(emb.Embeddings), len(batch))
	}

	items := make([]repoproduct.Item, len(batch))
	for i := range batch {
		items[i] = repoproduct.Item{Record: batch[i].Record(), Vector: emb.Embeddings[i]}
	}
	if err := s.repo.Upsert(ctx, items); err != nil {
		return fmt.Errorf("upsert products: %w", err)
	}
	return nil
}

func validateAll(products []Product) error {
	seen := make(map[string]struct{}, len(products))
	for i := range products {
		if err := products[i].Validate(); err != nil {
			return err
		}
		id := strings.TrimSpace(products[i].ID)
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: duplicate id %s", domain.ErrInvalidProduct, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
