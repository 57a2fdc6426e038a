package extract

import (
	"context"

	"github.com/kailas-cloud/stylist/internal/domain"
)

// ChatModel is the structured-output capability used by the model-backed extractors.
type ChatModel interface {
	Chat(ctx context.Context, req *domain.ChatRequest) (domain.ChatResult, error)
}
