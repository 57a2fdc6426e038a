package catalog

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/kailas-cloud/stylist/internal/domain"
	domcatalog "github.com/kailas-cloud/stylist/internal/domain/catalog"
	"github.com/kailas-cloud/stylist/internal/domain/product"
)

// Product is one catalog entry as shipped in the products file.
type Product struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Color        string          `json:"color"`
	Material     string          `json:"material,omitempty"`
	Category     string          `json:"category"`
	Gender       string          `json:"gender"`
	PriceRegular decimal.Decimal `json:"price_regular"`
}

// Validate checks the fields the index and the predicate builder depend on.
func (p *Product) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("%w: id is required", domain.ErrInvalidProduct)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: product %s: name is required", domain.ErrInvalidProduct, p.ID)
	}
	if _, ok := domcatalog.ParseCategory(p.Category); !ok {
		return fmt.Errorf("%w: product %s: unknown category %q", domain.ErrInvalidProduct, p.ID, p.Category)
	}
	if p.PriceRegular.IsNegative() {
		return fmt.Errorf("%w: product %s: negative price", domain.ErrInvalidProduct, p.ID)
	}
	return nil
}

// Document is the text embedded for similarity search and shown to the stylist model.
func (p *Product) Document() string {
	var b strings.Builder
	b.WriteString(p.Name)
	if p.Description != "" {
		b.WriteString(". ")
		b.WriteString(p.Description)
	}
	if p.Material != "" {
		b.WriteString(" Material: ")
		b.WriteString(p.Material)
		b.WriteString(".")
	}
	return b.String()
}

// Record converts p into the indexed form.
func (p *Product) Record() product.Record {
	category, _ := domcatalog.ParseCategory(p.Category)
	tags := map[string]string{
		product.AttrName:     strings.TrimSpace(p.Name),
		product.AttrCategory: category.String(),
	}
	if c := strings.TrimSpace(p.Color); c != "" {
		tags[product.AttrColor] = c
	}
	if g := strings.ToLower(strings.TrimSpace(p.Gender)); g != "" {
		tags[product.AttrGender] = g
	}
	price, _ := p.PriceRegular.Float64()
	return product.New(
		strings.TrimSpace(p.ID), 0, p.Document(), tags,
		map[string]float64{product.AttrPrice: price},
	)
}
