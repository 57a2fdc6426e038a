package query

import (
	"github.com/shopspring/decimal"

	"github.com/kailas-cloud/stylist/internal/domain/catalog"
	"github.com/kailas-cloud/stylist/internal/domain/search/filter"
)

// Constraint names of the fixed vocabulary.
const (
	KeyPriceAmount        = "price_amount"
	KeyComparisonOperator = "comparison_operator"
	KeyCategory           = "category"
)

// PriceBound is the numeric constraint group: an amount compared with an operator.
type PriceBound struct {
	Amount decimal.Decimal
	Op     filter.Op
}

// Constraints is the immutable set of facts extracted from one query.
// The price group only exists with both amount and operator, so a one-sided
// numeric constraint cannot be represented.
type Constraints struct {
	price    *PriceBound
	category catalog.Category
}

// NewConstraints merges independently extracted values.
// Invalid or one-sided inputs are dropped rather than reported.
func NewConstraints(amount decimal.NullDecimal, op filter.Op, category catalog.Category) Constraints {
	var c Constraints
	if amount.Valid && !amount.Decimal.IsNegative() && op.IsValid() {
		c.price = &PriceBound{Amount: amount.Decimal, Op: op}
	}
	if category.IsValid() {
		c.category = category
	}
	return c
}

// ConstraintsFromMap parses the name -> value form. Malformed entries are absent.
func ConstraintsFromMap(m map[string]string) Constraints {
	var amount decimal.NullDecimal
	if raw, ok := m[KeyPriceAmount]; ok {
		if d, err := decimal.NewFromString(raw); err == nil {
			amount = decimal.NewNullDecimal(d)
		}
	}
	op, _ := filter.ParseOp(m[KeyComparisonOperator])
	category, _ := catalog.ParseCategory(m[KeyCategory])
	return NewConstraints(amount, op, category)
}

// Price returns the numeric group when present.
func (c Constraints) Price() (PriceBound, bool) {
	if c.price == nil {
		return PriceBound{}, false
	}
	return *c.price, true
}

// Category returns the category when present.
func (c Constraints) Category() (catalog.Category, bool) {
	return c.category, c.category != ""
}

// IsEmpty reports whether no constraint group was extracted.
func (c Constraints) IsEmpty() bool {
	return c.price == nil && c.category == ""
}

// Map returns the name -> value view. Keys are unique; absent groups are omitted.
func (c Constraints) Map() map[string]string {
	m := make(map[string]string, 3)
	if c.price != nil {
		m[KeyPriceAmount] = c.price.Amount.String()
		m[KeyComparisonOperator] = string(c.price.Op)
	}
	if c.category != "" {
		m[KeyCategory] = string(c.category)
	}
	return m
}
