// Package predicate turns extracted query constraints into an index pre-filter.
package predicate

import (
	"fmt"

	"github.com/kailas-cloud/stylist/internal/domain/product"
	"github.com/kailas-cloud/stylist/internal/domain/query"
	"github.com/kailas-cloud/stylist/internal/domain/search/filter"
)

// Config names the catalog attributes the predicate is built over.
type Config struct {
	BaseAttribute     string // scope leaf present in every predicate
	BaseValue         string
	PriceAttribute    string
	CategoryAttribute string
}

// DefaultConfig scopes the catalog to women's products.
func DefaultConfig() Config {
	return Config{
		BaseAttribute:     product.AttrGender,
		BaseValue:         "women",
		PriceAttribute:    product.AttrPrice,
		CategoryAttribute: product.AttrCategory,
	}
}

// Builder produces conjunctive predicates. Safe for concurrent use.
type Builder struct {
	base         filter.Leaf
	priceAttr    string
	categoryAttr string
}

// New validates cfg and creates a builder.
func New(cfg Config) (*Builder, error) {
	base, err := filter.NewTagLeaf(cfg.BaseAttribute, filter.Equal, cfg.BaseValue)
	if err != nil {
		return nil, fmt.Errorf("base scope: %w", err)
	}
	if cfg.PriceAttribute == "" || cfg.CategoryAttribute == "" {
		return nil, fmt.Errorf("price and category attributes are required")
	}
	return &Builder{base: base, priceAttr: cfg.PriceAttribute, categoryAttr: cfg.CategoryAttribute}, nil
}

// Build returns nil when no constraint group is present. Otherwise the predicate
// starts with the base scope leaf, followed by the price leaf and then the category leaf.
func (b *Builder) Build(c query.Constraints) *filter.Predicate {
	var leaves []filter.Leaf

	if price, ok := c.Price(); ok {
		amount, _ := price.Amount.Float64()
		if l, err := filter.NewNumericLeaf(b.priceAttr, price.Op, amount); err == nil {
			leaves = append(leaves, l)
		}
	}
	if category, ok := c.Category(); ok {
		if l, err := filter.NewTagLeaf(b.categoryAttr, filter.Equal, category.String()); err == nil {
			leaves = append(leaves, l)
		}
	}
	if len(leaves) == 0 {
		return nil
	}

	p, err := filter.And(append([]filter.Leaf{b.base}, leaves...)...)
	if err != nil {
		// At most three leaves; And only fails past MaxLeaves.
		return nil
	}
	return p
}
