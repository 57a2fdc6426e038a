package catalog

import (
	"context"

	"github.com/kailas-cloud/stylist/internal/domain"
	repoproduct "github.com/kailas-cloud/stylist/internal/repository/product"
)

// Repository is the product index write path.
type Repository interface {
	EnsureIndex(ctx context.Context, recreate bool) (bool, error)
	Upsert(ctx context.Context, items []repoproduct.Item) error
}

// Embedder vectorizes product documents. BatchEmbedder implementations are used natively.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
