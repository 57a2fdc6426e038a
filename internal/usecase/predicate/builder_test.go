package predicate

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/kailas-cloud/stylist/internal/domain/catalog"
	"github.com/kailas-cloud/stylist/internal/domain/query"
	"github.com/kailas-cloud/stylist/internal/domain/search/filter"
)

func newBuilder(t *testing.T) *Builder {
	t.Helper()
	b, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return b
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name string
		in   map[string]string
		want string // "" = nil predicate
	}{
		{
			name: "price only",
			in:   map[string]string{"price_amount": "300", "comparison_operator": "$lt"},
			want: `AND[(gender, $eq, "women"), (price_regular, $lt, 300)]`,
		},
		{
			name: "category only",
			in:   map[string]string{"category": "Dresses"},
			want: `AND[(gender, $eq, "women"), (category, $eq, "Dresses")]`,
		},
		{
			name: "price and category",
			in:   map[string]string{"price_amount": "49.90", "comparison_operator": "$gte", "category": "Shoes"},
			want: `AND[(gender, $eq, "women"), (price_regular, $gte, 49.9), (category, $eq, "Shoes")]`,
		},
		{
			name: "amount without operator",
			in:   map[string]string{"price_amount": "300"},
			want: "",
		},
		{
			name: "operator without amount",
			in:   map[string]string{"comparison_operator": "$lt"},
			want: "",
		},
		{
			name: "malformed amount keeps category",
			in:   map[string]string{"price_amount": "three hundred", "comparison_operator": "$lt", "category": "Bags"},
			want: `AND[(gender, $eq, "women"), (category, $eq, "Bags")]`,
		},
		{
			name: "unknown category",
			in:   map[string]string{"category": "Swimwear"},
			want: "",
		},
		{
			name: "empty",
			in:   map[string]string{},
			want: "",
		},
	}

	b := newBuilder(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := b.Build(query.ConstraintsFromMap(tt.in))
			if tt.want == "" {
				if p != nil {
					t.Fatalf("expected nil predicate, got %s", p)
				}
				return
			}
			if p == nil {
				t.Fatal("expected predicate, got nil")
			}
			if got := p.String(); got != tt.want {
				t.Errorf("predicate = %s\nwant        %s", got, tt.want)
			}
		})
	}
}

func TestBuild_BaseScopeExactlyOnce(t *testing.T) {
	b := newBuilder(t)
	amount := decimal.NewNullDecimal(decimal.NewFromInt(100))
	inputs := []query.Constraints{
		query.NewConstraints(amount, filter.LessThan, ""),
		query.NewConstraints(decimal.NullDecimal{}, "", catalog.Denim),
		query.NewConstraints(amount, filter.LessThan, catalog.Denim),
	}
	for _, c := range inputs {
		p := b.Build(c)
		base := 0
		for _, l := range p.Leaves() {
			if l.Attribute() == "gender" {
				base++
			}
		}
		if base != 1 {
			t.Errorf("%s: base scope appears %d times", p, base)
		}
		if p.Leaves()[0].Attribute() != "gender" {
			t.Errorf("%s: base scope should lead", p)
		}
	}
}

func TestBuild_NumericLeafImpliesPriceGroup(t *testing.T) {
	b := newBuilder(t)
	for _, op := range filter.Ops() {
		p := b.Build(query.NewConstraints(decimal.NullDecimal{}, op, catalog.Hats))
		for _, l := range p.Leaves() {
			if l.IsNumeric() {
				t.Errorf("op %s: numeric leaf without amount", op)
			}
		}
	}
}

func TestNew_Validation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BaseValue = ""
	if _, err := New(cfg); err == nil {
		t.Error("expected error for empty base value")
	}
	cfg = DefaultConfig()
	cfg.PriceAttribute = ""
	if _, err := New(cfg); err == nil {
		t.Error("expected error for empty price attribute")
	}
}
