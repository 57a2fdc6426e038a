package chi

import (
	"github.com/kailas-cloud/stylist/internal/domain/product"
	"github.com/kailas-cloud/stylist/internal/usecase/recommend"
)

// ErrorCode is the machine-readable error kind in ErrorResponse.
type ErrorCode string

// Error codes.
const (
	CodeBadRequest       ErrorCode = "bad_request"
	CodeValidationFailed ErrorCode = "validation_failed"
	CodeUnauthorized     ErrorCode = "unauthorized"
	CodeNotFound         ErrorCode = "not_found"
	CodeGenerationFailed ErrorCode = "generation_failed"
	CodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// RecommendationRequest is the body of POST /v1/recommendations.
type RecommendationRequest struct {
	Query      string `json:"query"`
	CustomerID string `json:"customer_id,omitempty"`
	TopK       *int   `json:"top_k,omitempty"`
}

// ProductResponse is one candidate product.
type ProductResponse struct {
	ID          string             `json:"id"`
	Score       float64            `json:"score"`
	Description string             `json:"description"`
	Attributes  map[string]string  `json:"attributes,omitempty"`
	Numerics    map[string]float64 `json:"numerics,omitempty"`
}

// UsageResponse reports the model tokens spent on a request.
type UsageResponse struct {
	EmbeddingTokens  int `json:"embedding_tokens"`
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	ModelCalls       int `json:"model_calls"`
}

// RecommendationResponse is the pipeline result.
type RecommendationResponse struct {
	RunID         string            `json:"run_id"`
	Answer        string            `json:"answer"`
	Query         string            `json:"query"`
	SemanticQuery string            `json:"semantic_query"`
	Constraints   map[string]string `json:"constraints"`
	Filter        *string           `json:"filter"`
	Products      []ProductResponse `json:"products"`
	Personalized  bool              `json:"personalized"`
	Usage         UsageResponse     `json:"usage"`
}

// PreferencesResponse is the body of GET /v1/customers/{id}/preferences.
type PreferencesResponse struct {
	CustomerID string `json:"customer_id"`
	Summary    string `json:"summary"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func productToResponse(r *product.Record) ProductResponse {
	return ProductResponse{
		ID:          r.ID(),
		Score:       r.Score(),
		Description: r.Content(),
		Attributes:  r.Tags(),
		Numerics:    r.Numerics(),
	}
}

func resultToResponse(res *recommend.Result) RecommendationResponse {
	products := make([]ProductResponse, len(res.Candidates))
	for i := range res.Candidates {
		products[i] = productToResponse(&res.Candidates[i])
	}
	var filter *string
	if res.Filter != nil {
		s := res.Filter.String()
		filter = &s
	}
	return RecommendationResponse{
		RunID:         res.RunID,
		Answer:        res.Answer,
		Query:         res.Query,
		SemanticQuery: res.SemanticQuery,
		Constraints:   res.Constraints,
		Filter:        filter,
		Products:      products,
		Personalized:  res.Personalized,
		Usage: UsageResponse{
			EmbeddingTokens:  res.Usage.EmbeddingTokens,
			PromptTokens:     res.Usage.PromptTokens,
			CompletionTokens: res.Usage.CompletionTokens,
			ModelCalls:       res.Usage.ModelCalls,
		},
	}
}
