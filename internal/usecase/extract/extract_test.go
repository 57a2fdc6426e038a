package extract

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/stylist/internal/domain"
	"github.com/kailas-cloud/stylist/internal/domain/catalog"
	"github.com/kailas-cloud/stylist/internal/domain/query"
	"github.com/kailas-cloud/stylist/internal/domain/search/filter"
	"github.com/kailas-cloud/stylist/internal/metrics"
)

// --- Mocks ---

type reply struct {
	content string
	err     error
}

type mockChat struct {
	mu      sync.Mutex
	replies map[string]reply
	calls   []*domain.ChatRequest
}

func (m *mockChat) Chat(_ context.Context, req *domain.ChatRequest) (domain.ChatResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, req)
	r := m.replies[req.Capability]
	if r.err != nil {
		return domain.ChatResult{}, r.err
	}
	return domain.ChatResult{Content: r.content}, nil
}

func (m *mockChat) request(capability string) *domain.ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.calls {
		if c.Capability == capability {
			return c
		}
	}
	return nil
}

// --- PriceAmount ---

func TestPriceAmount(t *testing.T) {
	tests := []struct {
		text string
		want string // "" = absent
	}{
		{"dresses under 300 euros", "300"},
		{"between 40 and 120.5", "120.5"},
		{"size 9 boots for 80", "80"},
		{"jacket for 99.", "99"},
		{"a red scarf", ""},
		{"", ""},
	}
	for _, tt := range tests {
		got := PriceAmount(tt.text)
		if tt.want == "" {
			if got.Valid {
				t.Errorf("PriceAmount(%q) = %s, want absent", tt.text, got.Decimal)
			}
			continue
		}
		if !got.Valid || got.Decimal.String() != tt.want {
			t.Errorf("PriceAmount(%q) = %v, want %s", tt.text, got, tt.want)
		}
	}
}

func TestHasNumber(t *testing.T) {
	if !HasNumber("under 50") {
		t.Error("expected number")
	}
	if HasNumber("warm wool coat") {
		t.Error("unexpected number")
	}
}

// --- Operator ---

func TestOperator(t *testing.T) {
	tests := []struct {
		name  string
		reply reply
		want  filter.Op
	}{
		{"less than", reply{content: `{"operator":"$lt"}`}, filter.LessThan},
		{"padded", reply{content: ` {"operator":" $gte "} `}, filter.GreaterOrEqual},
		{"null", reply{content: `{"operator":null}`}, ""},
		{"unknown", reply{content: `{"operator":"<"}`}, ""},
		{"not json", reply{content: `less than`}, ""},
		{"provider error", reply{err: domain.ErrProviderError}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chat := &mockChat{replies: map[string]reply{CapabilityOperator: tt.reply}}
			if got := New(chat).Operator(context.Background(), "under 50"); got != tt.want {
				t.Errorf("Operator = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOperator_RequestShape(t *testing.T) {
	chat := &mockChat{replies: map[string]reply{CapabilityOperator: {content: `{"operator":null}`}}}
	New(chat).Operator(context.Background(), "cheap shoes")

	req := chat.request(CapabilityOperator)
	if req == nil {
		t.Fatal("no operator request")
	}
	if len(req.Messages) != 2 || req.Messages[0].Role != domain.RoleSystem {
		t.Fatalf("unexpected messages: %+v", req.Messages)
	}
	if req.Messages[1].Content != "Query: cheap shoes" {
		t.Errorf("user message = %q", req.Messages[1].Content)
	}
	want := "'$eq' (equal to), '$ne' (not equal to), '$gt' (greater than), " +
		"'$gte' (greater than or equal to), '$lt' (less than), '$lte' (less than or equal to). "
	if !strings.Contains(req.Messages[0].Content, want) {
		t.Errorf("system prompt does not list every operator: %q", req.Messages[0].Content)
	}
	if req.Format == nil || req.Format.Name != "comparison_operator" {
		t.Fatalf("format = %+v", req.Format)
	}

	var schema map[string]any
	if err := json.Unmarshal(req.Format.Schema, &schema); err != nil {
		t.Fatalf("schema is not JSON: %v", err)
	}
	if schema["additionalProperties"] != false {
		t.Errorf("additionalProperties = %v", schema["additionalProperties"])
	}
	for _, op := range filter.Ops() {
		if !strings.Contains(string(req.Format.Schema), `"`+string(op)+`"`) {
			t.Errorf("schema misses %s", op)
		}
	}
	if !strings.Contains(string(req.Format.Schema), `"null"`) {
		t.Error("schema should allow null")
	}
}

func TestOperator_FailureCountsFallback(t *testing.T) {
	before := testutil.ToFloat64(metrics.FallbacksTotal.WithLabelValues(CapabilityOperator))
	chat := &mockChat{replies: map[string]reply{CapabilityOperator: {err: errors.New("timeout")}}}
	New(chat).Operator(context.Background(), "under 50")
	after := testutil.ToFloat64(metrics.FallbacksTotal.WithLabelValues(CapabilityOperator))
	if after-before != 1 {
		t.Errorf("fallbacks delta = %v, want 1", after-before)
	}
}

// --- Category ---

func TestCategory(t *testing.T) {
	tests := []struct {
		name  string
		reply reply
		want  catalog.Category
	}{
		{"known", reply{content: `{"category":"Dresses"}`}, catalog.Dresses},
		{"whitespace", reply{content: `{"category":" Denim "}`}, catalog.Denim},
		{"out of taxonomy", reply{content: `{"category":"Swimwear"}`}, ""},
		{"case mismatch", reply{content: `{"category":"dresses"}`}, ""},
		{"empty", reply{content: `{"category":""}`}, ""},
		{"provider error", reply{err: domain.ErrProviderError}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chat := &mockChat{replies: map[string]reply{CapabilityCategory: tt.reply}}
			if got := New(chat).Category(context.Background(), "summer dress"); got != tt.want {
				t.Errorf("Category = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCategory_PromptListsTaxonomy(t *testing.T) {
	chat := &mockChat{replies: map[string]reply{CapabilityCategory: {content: `{"category":"Bags"}`}}}
	New(chat).Category(context.Background(), "tote")

	req := chat.request(CapabilityCategory)
	if req == nil {
		t.Fatal("no category request")
	}
	for _, label := range catalog.Labels() {
		if !strings.Contains(req.Messages[0].Content, label) {
			t.Errorf("system prompt misses %q", label)
		}
	}
	if req.Messages[1].Content != "This is the product: tote." {
		t.Errorf("user message = %q", req.Messages[1].Content)
	}
}

// --- Extract ---

func TestExtract_AllGroups(t *testing.T) {
	chat := &mockChat{replies: map[string]reply{
		CapabilityOperator: {content: `{"operator":"$lt"}`},
		CapabilityCategory: {content: `{"category":"Dresses"}`},
	}}
	c := New(chat).Extract(context.Background(), "dresses under 300 euros")

	want := map[string]string{
		query.KeyPriceAmount:        "300",
		query.KeyComparisonOperator: "$lt",
		query.KeyCategory:           "Dresses",
	}
	got := c.Map()
	if len(got) != len(want) {
		t.Fatalf("Map() = %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %q, want %q", k, got[k], v)
		}
	}
}

func TestExtract_AmountWithoutOperatorDropsPrice(t *testing.T) {
	chat := &mockChat{replies: map[string]reply{
		CapabilityOperator: {content: `{"operator":null}`},
		CapabilityCategory: {content: `{"category":"Shoes"}`},
	}}
	c := New(chat).Extract(context.Background(), "size 42 sneakers")

	if _, ok := c.Price(); ok {
		t.Error("price group should be absent")
	}
	if cat, ok := c.Category(); !ok || cat != catalog.Shoes {
		t.Errorf("category = %q, %v", cat, ok)
	}
}

func TestExtract_OperatorWithoutAmountDropsPrice(t *testing.T) {
	chat := &mockChat{replies: map[string]reply{
		CapabilityOperator: {content: `{"operator":"$lt"}`},
		CapabilityCategory: {err: errors.New("down")},
	}}
	c := New(chat).Extract(context.Background(), "cheaper than usual")
	if !c.IsEmpty() {
		t.Errorf("expected empty constraints, got %v", c.Map())
	}
}

func TestExtract_AllCapabilitiesDown(t *testing.T) {
	chat := &mockChat{replies: map[string]reply{
		CapabilityOperator: {err: domain.ErrProviderError},
		CapabilityCategory: {err: domain.ErrProviderError},
	}}
	c := New(chat).Extract(context.Background(), "coats under 200")
	if !c.IsEmpty() {
		t.Errorf("expected empty constraints, got %v", c.Map())
	}
}
