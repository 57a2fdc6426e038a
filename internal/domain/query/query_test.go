package query

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/kailas-cloud/stylist/internal/domain"
	"github.com/kailas-cloud/stylist/internal/domain/catalog"
	"github.com/kailas-cloud/stylist/internal/domain/search/filter"
)

func TestNew_Validation(t *testing.T) {
	if _, err := New("   "); !errors.Is(err, domain.ErrInvalidQuery) {
		t.Errorf("expected ErrInvalidQuery for blank text, got %v", err)
	}
	if _, err := New(strings.Repeat("a", MaxTextLength+1)); !errors.Is(err, domain.ErrInvalidQuery) {
		t.Errorf("expected ErrInvalidQuery for long text, got %v", err)
	}
	q, err := New("  dresses under 300 euros ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Text() != "dresses under 300 euros" {
		t.Errorf("Text() = %q", q.Text())
	}
}

func TestSemanticText_DefaultsToOriginal(t *testing.T) {
	q, _ := New("dresses under 300 euros")
	if q.SemanticText() != q.Text() {
		t.Errorf("SemanticText() = %q", q.SemanticText())
	}
	rw := q.WithSemanticText(" dresses ")
	if rw.SemanticText() != "dresses" {
		t.Errorf("SemanticText() = %q", rw.SemanticText())
	}
	if q.SemanticText() != "dresses under 300 euros" {
		t.Error("WithSemanticText must not modify the receiver")
	}
}

func TestNewConstraints_BothOrNeither(t *testing.T) {
	amount := decimal.NewNullDecimal(decimal.RequireFromString("300"))

	c := NewConstraints(amount, "", "")
	if _, ok := c.Price(); ok {
		t.Error("price without operator must be absent")
	}
	c = NewConstraints(decimal.NullDecimal{}, filter.LessThan, "")
	if _, ok := c.Price(); ok {
		t.Error("operator without price must be absent")
	}
	c = NewConstraints(amount, filter.LessThan, "")
	p, ok := c.Price()
	if !ok || p.Op != filter.LessThan || !p.Amount.Equal(decimal.NewFromInt(300)) {
		t.Errorf("unexpected price group: %+v, %v", p, ok)
	}
}

func TestNewConstraints_RejectsNegativeAndUnknown(t *testing.T) {
	neg := decimal.NewNullDecimal(decimal.NewFromInt(-5))
	c := NewConstraints(neg, filter.LessThan, catalog.Category("Spaceships"))
	if !c.IsEmpty() {
		t.Fatalf("expected empty constraints, got %v", c.Map())
	}
}

func TestConstraintsFromMap(t *testing.T) {
	tests := []struct {
		name string
		in   map[string]string
		want map[string]string
	}{
		{
			name: "price group",
			in:   map[string]string{KeyPriceAmount: "300", KeyComparisonOperator: "$lt"},
			want: map[string]string{KeyPriceAmount: "300", KeyComparisonOperator: "$lt"},
		},
		{
			name: "category only",
			in:   map[string]string{KeyCategory: "Dresses"},
			want: map[string]string{KeyCategory: "Dresses"},
		},
		{
			name: "malformed amount drops price group",
			in:   map[string]string{KeyPriceAmount: "three hundred", KeyComparisonOperator: "$lt", KeyCategory: "Shoes"},
			want: map[string]string{KeyCategory: "Shoes"},
		},
		{
			name: "unknown operator drops price group",
			in:   map[string]string{KeyPriceAmount: "300", KeyComparisonOperator: "<"},
			want: map[string]string{},
		},
		{
			name: "error string as category is absent",
			in:   map[string]string{KeyCategory: "Error: connection refused"},
			want: map[string]string{},
		},
		{
			name: "decimal amount kept exact",
			in:   map[string]string{KeyPriceAmount: "149.99", KeyComparisonOperator: "$lte"},
			want: map[string]string{KeyPriceAmount: "149.99", KeyComparisonOperator: "$lte"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ConstraintsFromMap(tc.in).Map()
			if len(got) != len(tc.want) {
				t.Fatalf("Map() = %v, want %v", got, tc.want)
			}
			for k, v := range tc.want {
				if got[k] != v {
					t.Errorf("%s = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}

func TestWithConstraints(t *testing.T) {
	q, _ := New("red dress")
	c := NewConstraints(decimal.NullDecimal{}, "", catalog.Dresses)
	q2 := q.WithConstraints(c)
	if got, ok := q2.Constraints().Category(); !ok || got != catalog.Dresses {
		t.Errorf("Category() = %q, %v", got, ok)
	}
	if !q.Constraints().IsEmpty() {
		t.Error("WithConstraints must not modify the receiver")
	}
}
