package llm

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/stylist/internal/domain"
	"github.com/kailas-cloud/stylist/internal/logger"
	"github.com/kailas-cloud/stylist/internal/metrics"
)

// DefaultMaxBatchSize caps the number of texts per provider request.
const DefaultMaxBatchSize = 256

// InstrumentedEmbedder wraps an Embedder and splits large batches.
type InstrumentedEmbedder struct {
	inner    domain.Embedder
	provider string
	model    string
	maxBatch int
}

// NewInstrumentedEmbedder wraps inner. maxBatch <= 0 uses DefaultMaxBatchSize.
func NewInstrumentedEmbedder(inner domain.Embedder, provider, model string, maxBatch int) *InstrumentedEmbedder {
	if maxBatch <= 0 {
		maxBatch = DefaultMaxBatchSize
	}
	return &InstrumentedEmbedder{inner: inner, provider: provider, model: model, maxBatch: maxBatch}
}

// Embed delegates a single text.
func (e *InstrumentedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	start := time.Now()
	res, err := e.inner.Embed(ctx, text)
	if err != nil {
		e.fail(ctx, start, 1, err)
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	e.succeed(ctx, start, 1, res.TotalTokens)
	return res, nil
}

// BatchEmbed delegates in chunks of at most maxBatch texts.
func (e *InstrumentedEmbedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	var out domain.BatchEmbeddingResult
	for offset := 0; offset < len(texts); offset += e.maxBatch {
		end := min(offset+e.maxBatch, len(texts))
		chunk := texts[offset:end]

		start := time.Now()
		res, err := domain.EmbedAll(ctx, e.inner, chunk)
		if err != nil {
			e.fail(ctx, start, len(chunk), err)
			return domain.BatchEmbeddingResult{}, fmt.Errorf("batch embed at %d: %w", offset, err)
		}
		e.succeed(ctx, start, len(chunk), res.TotalTokens)

		out.Embeddings = append(out.Embeddings, res.Embeddings...)
		out.TotalTokens += res.TotalTokens
	}
	return out, nil
}

// HealthCheck forwards to the provider client.
func (e *InstrumentedEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := e.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx) //nolint:wrapcheck // transparent decorator
	}
	return nil
}

func (e *InstrumentedEmbedder) succeed(ctx context.Context, start time.Time, n, tokens int) {
	d := time.Since(start)
	metrics.EmbeddingRequestsTotal.WithLabelValues(e.provider, e.model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(e.provider, e.model).Observe(d.Seconds())
	metrics.EmbeddingTokensTotal.WithLabelValues(e.provider, e.model).Add(float64(tokens))
	domain.UsageFromContext(ctx).AddEmbedding(tokens)

	logger.FromContext(ctx).Debug("Embedding request completed",
		zap.String("provider", e.provider),
		zap.String("model", e.model),
		zap.Int("texts", n),
		zap.Int("tokens", tokens),
		zap.Duration("duration", d),
	)
}

func (e *InstrumentedEmbedder) fail(ctx context.Context, start time.Time, n int, err error) {
	metrics.EmbeddingRequestsTotal.WithLabelValues(e.provider, e.model, "error").Inc()
	logger.FromContext(ctx).Debug("Embedding request failed",
		zap.String("provider", e.provider),
		zap.String("model", e.model),
		zap.Int("texts", n),
		zap.Duration("duration", time.Since(start)),
		zap.Error(err),
	)
}
