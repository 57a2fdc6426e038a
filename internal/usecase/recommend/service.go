// Package recommend orchestrates one recommendation request end to end.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/stylist/internal/domain"
	"github.com/kailas-cloud/stylist/internal/domain/product"
	"github.com/kailas-cloud/stylist/internal/domain/query"
	"github.com/kailas-cloud/stylist/internal/domain/search/filter"
	"github.com/kailas-cloud/stylist/internal/logger"
	"github.com/kailas-cloud/stylist/internal/metrics"
	"github.com/kailas-cloud/stylist/internal/usecase/respond"
	"github.com/kailas-cloud/stylist/internal/usecase/retrieval"
)

const retrievalStage = "retrieval"

// Request is one shopping question.
type Request struct {
	RunID      string // generated when empty
	Text       string
	CustomerID string // "" = anonymous
	TopK       int    // <= 0 = retriever default
}

// Result is the answer plus the intermediate values that produced it.
type Result struct {
	RunID         string
	Answer        string
	Query         string
	SemanticQuery string
	Constraints   map[string]string
	Filter        *filter.Predicate
	Candidates    []product.Record
	Personalized  bool
	Usage         domain.UsageSnapshot
}

// Service runs the pipeline. It holds no per-request state.
type Service struct {
	extractor   Extractor
	rewriter    Rewriter
	predicates  PredicateBuilder
	retriever   Retriever
	preferences PreferenceAggregator
	composer    Composer
	personalize bool
}

// New wires the pipeline. personalize gates the purchase-history stage.
func New(
	extractor Extractor, rewriter Rewriter, predicates PredicateBuilder,
	retriever Retriever, preferences PreferenceAggregator, composer Composer,
	personalize bool,
) *Service {
	return &Service{
		extractor:   extractor,
		rewriter:    rewriter,
		predicates:  predicates,
		retriever:   retriever,
		preferences: preferences,
		composer:    composer,
		personalize: personalize,
	}
}

// Run answers req. The only errors are an invalid query (empty text or TopK above
// retrieval.MaxK) and a failed final generation. Every other capability failure
// degrades to its default.
func (s *Service) Run(ctx context.Context, req Request) (Result, error) {
	start := time.Now()

	q, err := query.New(req.Text)
	if err != nil {
		return Result{}, err //nolint:wrapcheck // already a domain error
	}
	if req.TopK > retrieval.MaxK {
		return Result{}, fmt.Errorf("%w: top_k must be at most %d", domain.ErrInvalidQuery, retrieval.MaxK)
	}

	runID := req.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	ctx = logger.With(ctx, zap.String("run_id", runID))
	usage := domain.UsageFromContext(ctx)
	if usage == nil {
		ctx, usage = domain.NewContextWithUsage(ctx)
	}
	log := logger.FromContext(ctx)

	// Stage 1: extraction and rewriting only read the original text.
	var (
		constraints query.Constraints
		semantic    string
	)
	g1, ctx1 := errgroup.WithContext(ctx)
	g1.Go(func() error {
		constraints = s.extractor.Extract(ctx1, q.Text())
		return nil
	})
	g1.Go(func() error {
		semantic = s.rewriter.RemovePrice(ctx1, q.Text())
		return nil
	})
	_ = g1.Wait()
	q = q.WithConstraints(constraints).WithSemanticText(semantic)

	// Stage 2.
	pred := s.predicates.Build(q.Constraints())
	log.Debug("Query analyzed",
		zap.String("semantic_query", q.SemanticText()),
		zap.Any("constraints", q.Constraints().Map()),
		zap.Stringer("filter", pred),
	)

	// Stage 3: retrieval and preference aggregation are independent.
	var (
		candidates  []product.Record
		preferences string
	)
	g3, ctx3 := errgroup.WithContext(ctx)
	g3.Go(func() error {
		records, rerr := s.retriever.Search(ctx3, q.SemanticText(), pred, req.TopK)
		if errors.Is(rerr, domain.ErrInvalidQuery) {
			return rerr
		}
		if rerr != nil {
			metrics.FallbacksTotal.WithLabelValues(retrievalStage).Inc()
			log.Warn("Retrieval failed, answering without candidates", zap.Error(rerr))
			records = []product.Record{}
		}
		candidates = records
		return nil
	})
	if s.personalize && req.CustomerID != "" {
		g3.Go(func() error {
			if summary, ok := s.preferences.Summarize(ctx3, req.CustomerID); ok {
				preferences = summary
			}
			return nil
		})
	}
	if err := g3.Wait(); err != nil {
		return Result{}, fmt.Errorf("retrieve: %w", err)
	}

	// Stage 4.
	in := respond.Input{Query: q.Text(), Candidates: candidates, Preferences: preferences}
	personalized := s.composer.Personalizes(in)
	answer, err := s.composer.Compose(ctx, in)

	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.PipelineDuration.WithLabelValues(strconv.FormatBool(personalized), status).Observe(time.Since(start).Seconds())
	if err != nil {
		log.Error("Answer generation failed", zap.Error(err))
		return Result{}, fmt.Errorf("compose answer: %w", err)
	}

	snapshot := usage.Snapshot()
	log.Info("Recommendation completed",
		zap.Int("candidates", len(candidates)),
		zap.Bool("personalized", personalized),
		zap.Int("model_calls", snapshot.ModelCalls),
		zap.Duration("duration", time.Since(start)),
	)

	return Result{
		RunID:         runID,
		Answer:        answer,
		Query:         q.Text(),
		SemanticQuery: q.SemanticText(),
		Constraints:   q.Constraints().Map(),
		Filter:        pred,
		Candidates:    candidates,
		Personalized:  personalized,
		Usage:         snapshot,
	}, nil
}

// Preferences exposes the aggregator on its own, for the customer preferences endpoint.
func (s *Service) Preferences(ctx context.Context, customerID string) (string, bool) {
	return s.preferences.Summarize(ctx, customerID)
}
