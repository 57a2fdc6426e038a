package preference

import (
	"context"

	"github.com/kailas-cloud/stylist/internal/domain"
	"github.com/kailas-cloud/stylist/internal/domain/product"
)

// OrderHistory resolves the products a customer bought.
type OrderHistory interface {
	ProductIDs(ctx context.Context, customerID string) ([]string, error)
}

// ProductLookup fetches catalog records by id.
type ProductLookup interface {
	LookupByIDs(ctx context.Context, ids []string) ([]product.Record, error)
}

// ChatModel writes the preference summary.
type ChatModel interface {
	Chat(ctx context.Context, req *domain.ChatRequest) (domain.ChatResult, error)
}
