package recommend

import (
	"context"

	"github.com/kailas-cloud/stylist/internal/domain/product"
	"github.com/kailas-cloud/stylist/internal/domain/query"
	"github.com/kailas-cloud/stylist/internal/domain/search/filter"
	"github.com/kailas-cloud/stylist/internal/usecase/respond"
)

// Extractor derives constraints from the original text.
type Extractor interface {
	Extract(ctx context.Context, text string) query.Constraints
}

// Rewriter strips price phrasing from the text used for similarity search.
type Rewriter interface {
	RemovePrice(ctx context.Context, text string) string
}

// PredicateBuilder turns constraints into an index pre-filter.
type PredicateBuilder interface {
	Build(c query.Constraints) *filter.Predicate
}

// Retriever returns ranked candidates.
type Retriever interface {
	Search(ctx context.Context, text string, pred *filter.Predicate, k int) ([]product.Record, error)
}

// PreferenceAggregator summarizes a customer's purchase history.
type PreferenceAggregator interface {
	Summarize(ctx context.Context, customerID string) (string, bool)
}

// Composer writes the final answer.
type Composer interface {
	Personalizes(in respond.Input) bool
	Compose(ctx context.Context, in respond.Input) (string, error)
}
