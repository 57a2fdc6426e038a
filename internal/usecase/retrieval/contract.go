package retrieval

import (
	"context"

	"github.com/kailas-cloud/stylist/internal/domain"
	"github.com/kailas-cloud/stylist/internal/domain/product"
	"github.com/kailas-cloud/stylist/internal/domain/search/filter"
)

// Repository is the product index read path.
type Repository interface {
	SearchKNN(ctx context.Context, vector []float32, pred *filter.Predicate, k int) ([]product.Record, error)
	GetByIDs(ctx context.Context, ids []string) ([]product.Record, error)
}

// Embedder vectorizes the query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
