// Package extract derives structured constraints (price, comparison operator, category)
// from a free-text shopping query.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/shopspring/decimal"

	"github.com/kailas-cloud/stylist/internal/domain"
	"github.com/kailas-cloud/stylist/internal/domain/catalog"
	"github.com/kailas-cloud/stylist/internal/domain/query"
	"github.com/kailas-cloud/stylist/internal/domain/search/filter"
	"github.com/kailas-cloud/stylist/internal/logger"
	"github.com/kailas-cloud/stylist/internal/metrics"
)

// Capability names reported to metrics and logs.
const (
	CapabilityOperator = "operator"
	CapabilityCategory = "category"
)

// operatorInstruction lists every filter.Op with its meaning, e.g. "'$gt' (greater than)".
func operatorInstruction() string {
	ops := filter.Ops()
	choices := make([]string, len(ops))
	for i, op := range ops {
		choices[i] = fmt.Sprintf("'%s' (%s)", op, op.Describe())
	}
	return "You are an AI assistant that extracts number comparison operators from text. " +
		"Identify the operator in the given query and map it to one of the following: " +
		strings.Join(choices, ", ") + ". " +
		"Respond with only the operator. " +
		"If no comparison is found, return null."
}

// Service runs the constraint extractors. Every extractor is total:
// failures are logged, counted and reported as absent.
type Service struct {
	chat ChatModel
}

// New creates an extraction service.
func New(chat ChatModel) *Service {
	return &Service{chat: chat}
}

// Operator asks the model which comparison the query expresses.
// Returns "" when none is found or the call fails.
func (s *Service) Operator(ctx context.Context, text string) filter.Op {
	res, err := s.chat.Chat(ctx, &domain.ChatRequest{
		Capability: CapabilityOperator,
		Messages: []domain.Message{
			domain.System(operatorInstruction()),
			domain.User("Query: " + text),
		},
		Format: operatorFormat,
	})
	if err != nil {
		fallback(ctx, CapabilityOperator, err)
		return ""
	}

	var out struct {
		Operator *string `json:"operator"`
	}
	if err = decode(res, &out); err != nil {
		fallback(ctx, CapabilityOperator, err)
		return ""
	}
	if out.Operator == nil {
		return ""
	}
	op, ok := filter.ParseOp(strings.TrimSpace(*out.Operator))
	if !ok {
		fallback(ctx, CapabilityOperator, fmt.Errorf("%w: unknown operator %q", domain.ErrMalformedResponse, *out.Operator))
		return ""
	}
	return op
}

// Category classifies the query into one catalog category.
// Returns "" when the call fails or the label is not in the taxonomy.
func (s *Service) Category(ctx context.Context, text string) catalog.Category {
	res, err := s.chat.Chat(ctx, &domain.ChatRequest{
		Capability: CapabilityCategory,
		Messages: []domain.Message{
			domain.System(categoryInstruction()),
			domain.User("This is the product: " + text + "."),
		},
		Format: categoryFormat,
	})
	if err != nil {
		fallback(ctx, CapabilityCategory, err)
		return ""
	}

	var out struct {
		Category string `json:"category"`
	}
	if err = decode(res, &out); err != nil {
		fallback(ctx, CapabilityCategory, err)
		return ""
	}
	c, ok := catalog.ParseCategory(out.Category)
	if !ok {
		fallback(ctx, CapabilityCategory, fmt.Errorf("%w: unknown category %q", domain.ErrMalformedResponse, out.Category))
		return ""
	}
	return c
}

// Extract runs the three extractors concurrently and merges their results.
// The price group survives only when both amount and operator were found.
func (s *Service) Extract(ctx context.Context, text string) query.Constraints {
	var (
		amount   decimal.NullDecimal
		op       filter.Op
		category catalog.Category
	)

	// Extractors never fail, so the group is only used for fan-out.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		amount = PriceAmount(text)
		return nil
	})
	g.Go(func() error {
		op = s.Operator(gctx, text)
		return nil
	})
	g.Go(func() error {
		category = s.Category(gctx, text)
		return nil
	})
	_ = g.Wait()

	return query.NewConstraints(amount, op, category)
}

func categoryInstruction() string {
	return "You are a fashion product classifier. " +
		"Classify the following product into exactly one of the predefined product categories. " +
		"Product categories: " + strings.Join(catalog.Labels(), ", ") + ". " +
		"Respond with only the category name, and nothing else."
}

func decode(res domain.ChatResult, v any) error {
	if err := json.Unmarshal([]byte(res.Text()), v); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrMalformedResponse, err)
	}
	return nil
}

func fallback(ctx context.Context, stage string, err error) {
	metrics.FallbacksTotal.WithLabelValues(stage).Inc()
	logger.FromContext(ctx).Warn("Extractor failed, constraint treated as absent",
		zap.String("capability", stage),
		zap.Error(err),
	)
}
