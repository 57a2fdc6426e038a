// Package orders serves the static purchase history used for personalization.
package orders

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Product is a purchased line item.
type Product struct {
	ProductID int64   `yaml:"product_id"`
	Price     float64 `yaml:"price"`
	Quantity  int     `yaml:"quantity"`
}

// PurchaseOrder groups the products bought on one date.
type PurchaseOrder struct {
	PurchaseDate string    `yaml:"purchase_date"`
	Products     []Product `yaml:"products"`
}

// Customer is one customer's order history.
type Customer struct {
	CustomerID     int64           `yaml:"customer_id"`
	PurchaseOrders []PurchaseOrder `yaml:"purchase_orders"`
}

type file struct {
	Customers []Customer `yaml:"customers"`
}

// Repo is an in-memory, read-only order history.
type Repo struct {
	customers []Customer
}

// New wraps an already loaded history.
func New(customers []Customer) *Repo {
	return &Repo{customers: customers}
}

// Load reads the history from a YAML file.
func Load(path string) (*Repo, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from trusted config
	if err != nil {
		return nil, fmt.Errorf("read order history: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML history document.
func Parse(data []byte) (*Repo, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse order history: %w", err)
	}
	seen := make(map[int64]struct{}, len(f.Customers))
	for _, c := range f.Customers {
		if _, dup := seen[c.CustomerID]; dup {
			return nil, fmt.Errorf("duplicate customer_id %d in order history", c.CustomerID)
		}
		seen[c.CustomerID] = struct{}{}
	}
	return New(f.Customers), nil
}

// ProductIDs returns the ids of every product the customer bought, in order-history order.
// Unknown customers and malformed ids yield an empty slice.
func (r *Repo) ProductIDs(_ context.Context, customerID string) ([]string, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(customerID), 10, 64)
	if err != nil {
		return []string{}, nil
	}
	for _, c := range r.customers {
		if c.CustomerID != id {
			continue
		}
		var out []string
		for _, o := range c.PurchaseOrders {
			for _, p := range o.Products {
				out = append(out, strconv.FormatInt(p.ProductID, 10))
			}
		}
		if out == nil {
			out = []string{}
		}
		return out, nil
	}
	return []string{}, nil
}

// Len returns the number of customers.
func (r *Repo) Len() int { return len(r.customers) }
