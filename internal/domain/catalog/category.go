// Package catalog holds the closed product vocabulary of the store.
package catalog

import "strings"

// Category is one of the fixed product categories of the catalog.
type Category string

// Product categories. The set is closed: classification output outside it is discarded.
const (
	CoatsJackets       Category = "Coats & Jackets"
	PulloversCardigans Category = "Pullovers & Cardigans"
	ShirtsTops         Category = "Shirts & Tops"
	Dresses            Category = "Dresses"
	TShirtsSweatshirts Category = "T-shirts & Sweatshirts"
	Trousers           Category = "Trousers"
	Denim              Category = "Denim"
	SkirtsShorts       Category = "Skirts & Shorts"
	Frere              Category = "Frère"
	Shoes              Category = "Shoes"
	Bags               Category = "Bags"
	SmallLeatherGoods  Category = "Small leather goods"
	Hats               Category = "Hats"
	Scarves            Category = "Scarves"
	Gloves             Category = "Gloves"
	Socks              Category = "Socks"
	Belts              Category = "Belts"
	Jewellery          Category = "Jewellery"
	Objects            Category = "Objects"
)

var categories = []Category{
	CoatsJackets, PulloversCardigans, ShirtsTops, Dresses, TShirtsSweatshirts,
	Trousers, Denim, SkirtsShorts, Frere, Shoes, Bags, SmallLeatherGoods,
	Hats, Scarves, Gloves, Socks, Belts, Jewellery, Objects,
}

// Categories returns all categories in catalog order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// Labels returns the category labels in catalog order.
func Labels() []string {
	out := make([]string, len(categories))
	for i, c := range categories {
		out[i] = string(c)
	}
	return out
}

// ParseCategory accepts an exact label, ignoring surrounding whitespace.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.TrimSpace(s))
	if !c.IsValid() {
		return "", false
	}
	return c, true
}

// IsValid reports whether c belongs to the closed set.
func (c Category) IsValid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

// String returns the label.
func (c Category) String() string { return string(c) }
