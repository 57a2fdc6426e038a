// Package rewrite strips price phrasing from a query before it is embedded.
package rewrite

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/stylist/internal/domain"
	"github.com/kailas-cloud/stylist/internal/logger"
	"github.com/kailas-cloud/stylist/internal/metrics"
	"github.com/kailas-cloud/stylist/internal/usecase/extract"
)

// Capability is the metric and log label of rewrite calls.
const Capability = "rewrite"

const instruction = "You are an AI that processes product search queries. " +
	"Your task is to remove any price-related information from the given query while keeping all other details intact. " +
	"Do not add new words or modify the meaning. " +
	"Example: 'Find jackets under 200 euros' → 'Find jackets'. " +
	"Only return the cleaned query."

// ChatModel generates the rewritten text.
type ChatModel interface {
	Chat(ctx context.Context, req *domain.ChatRequest) (domain.ChatResult, error)
}

// Service rewrites queries. Rewriting is best-effort: it never returns an error.
type Service struct {
	chat ChatModel
}

// New creates a rewriter.
func New(chat ChatModel) *Service {
	return &Service{chat: chat}
}

// RemovePrice returns text without its price phrasing.
// Text without digits carries no price and is returned as is, without a model call.
// On failure or an empty answer the input is returned unchanged.
func (s *Service) RemovePrice(ctx context.Context, text string) string {
	if !extract.HasNumber(text) {
		return text
	}

	res, err := s.chat.Chat(ctx, &domain.ChatRequest{
		Capability: Capability,
		Messages: []domain.Message{
			domain.System(instruction),
			domain.User("Query: " + text),
		},
	})
	if err != nil {
		s.fallback(ctx, err)
		return text
	}

	out := sanitize(res.Content)
	if out == "" {
		s.fallback(ctx, domain.ErrMalformedResponse)
		return text
	}
	return out
}

func (s *Service) fallback(ctx context.Context, err error) {
	metrics.FallbacksTotal.WithLabelValues(Capability).Inc()
	logger.FromContext(ctx).Warn("Query rewrite failed, using original text",
		zap.String("capability", Capability),
		zap.Error(err),
	)
}

// sanitize removes the echo artifacts small models add around the answer.
func sanitize(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	if len(s) >= len("query:") && strings.EqualFold(s[:len("query:")], "query:") {
		s = strings.TrimSpace(s[len("query:"):])
	}
	for _, q := range []string{`"`, `'`, "`"} {
		if len(s) >= 2 && strings.HasPrefix(s, q) && strings.HasSuffix(s, q) {
			s = strings.TrimSpace(s[1 : len(s)-1])
		}
	}
	return s
}
