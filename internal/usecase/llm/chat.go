// Package llm decorates provider clients with metrics, debug logging and per-request usage accounting.
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

// InstrumentedChat wraps a ChatModel.
type InstrumentedChat struct {
	inner    domain.ChatModel
	provider string
	model    string
}

// NewInstrumentedChat wraps inner. provider and model become metric labels.
func NewInstrumentedChat(inner domain.ChatModel, provider, model string) *InstrumentedChat {
	return &InstrumentedChat{inner: inner, provider: provider, model: model}
}

// Chat delegates and records the outcome.
func (c *InstrumentedChat) Chat(ctx context.Context, req *domain.ChatRequest) (domain.ChatResult, error) {
	capability := req.Capability
	if capability == "" {
		capability = "unknown"
	}
	log := logger.FromContext(ctx).With(
		zap.String("provider", c.provider),
		zap.String("model", c.model),
		zap.String("capability", capability),
	)

	start := time.Now()
	res, err := c.inner.Chat(ctx, req)
	duration := time.Since(start)

	metrics.ChatRequestDuration.WithLabelValues(c.provider, c.model, capability).Observe(duration.Seconds())
	if err != nil {
		metrics.ChatRequestsTotal.WithLabelValues(c.provider, c.model, capability, "error").Inc()
		log.Debug("Chat request failed", zap.Duration("duration", duration), zap.Error(err))
		return domain.ChatResult{}, fmt.Errorf("chat %s: %w", capability, err)
	}

	metrics.ChatRequestsTotal.WithLabelValues(c.provider, c.model, capability, "success").Inc()
	metrics.ChatTokensTotal.WithLabelValues(c.provider, c.model, "prompt").Add(float64(res.PromptTokens))
	metrics.ChatTokensTotal.WithLabelValues(c.provider, c.model, "completion").Add(float64(res.CompletionTokens))
	domain.UsageFromContext(ctx).AddChat(res.PromptTokens, res.CompletionTokens)

	log.Debug("Chat request completed",
		zap.Duration("duration", duration),
		zap.Int("prompt_tokens", res.PromptTokens),
		zap.Int("completion_tokens", res.CompletionTokens),
	)
	return res, nil
}

// HealthCheck forwards to the provider client.
func (c *InstrumentedChat) HealthCheck(ctx context.Context) error {
	if hc, ok := c.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx) //nolint:wrapcheck // transparent decorator
	}
	return nil
}
