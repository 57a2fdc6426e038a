// Package preference summarizes a customer's taste from their purchase history.
package preference

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/stylist/internal/domain"
	"github.com/kailas-cloud/stylist/internal/domain/product"
	"github.com/kailas-cloud/stylist/internal/logger"
	"github.com/kailas-cloud/stylist/internal/metrics"
)

// Capability is the metric and log label of summary calls.
const Capability = "preferences"

// Facets is the taxonomy the summary is organized by.
var Facets = []string{
	"Styles",
	"Colors",
	"Fabrics",
	"Fit",
	"Occasion-Based Preferences",
	"Accessory Preferences",
	"Cultural & Subcultural Influences",
	"Sustainability & Ethical Preferences",
	"Budget",
	"Functional & Practical Choices",
	"Trend Adoption",
}

func instruction() string {
	last := len(Facets) - 1
	return "You are an expert fashion analyst. Your task is to analyze a list of purchased fashion products " +
		"and extract the user's fashion preferences. Identify patterns based on the following categories: " +
		strings.Join(Facets[:last], ", ") + ", and " + Facets[last] + ". " +
		"Return a comma-separated list of preferences, sorted by category."
}

// Service aggregates preferences.
type Service struct {
	orders   OrderHistory
	products ProductLookup
	chat     ChatModel
}

// New creates a preference aggregator.
func New(orders OrderHistory, products ProductLookup, chat ChatModel) *Service {
	return &Service{orders: orders, products: products, chat: chat}
}

// Summarize returns the customer's preference summary.
// ok is false when the customer has no history, none of the purchased products is
// in the catalog, or any collaborator fails. Failures are logged, never returned.
func (s *Service) Summarize(ctx context.Context, customerID string) (summary string, ok bool) {
	log := logger.FromContext(ctx).With(zap.String("customer_id", customerID))

	ids, err := s.orders.ProductIDs(ctx, customerID)
	if err != nil {
		s.fallback(log, "Order history lookup failed", err)
		return "", false
	}
	if len(ids) == 0 {
		log.Debug("No purchase history")
		return "", false
	}

	records, err := s.products.LookupByIDs(ctx, ids)
	if err != nil {
		s.fallback(log, "Purchased product lookup failed", err)
		return "", false
	}
	if len(records) == 0 {
		log.Debug("Purchased products not in catalog", zap.Int("ids", len(ids)))
		return "", false
	}

	res, err := s.chat.Chat(ctx, &domain.ChatRequest{
		Capability: Capability,
		Messages: []domain.Message{
			domain.System(instruction()),
			domain.User("Purchase History: " + product.RenderAll(records)),
		},
	})
	if err != nil {
		s.fallback(log, "Preference summary failed", err)
		return "", false
	}
	summary = res.Text()
	if summary == "" {
		s.fallback(log, "Preference summary failed", domain.ErrMalformedResponse)
		return "", false
	}
	return summary, true
}

func (s *Service) fallback(log *zap.Logger, msg string, err error) {
	metrics.FallbacksTotal.WithLabelValues(Capability).Inc()
	log.Warn(msg+", continuing without personalization", zap.String("capability", Capability), zap.Error(err))
}
