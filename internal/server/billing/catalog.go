// Package billing holds the product catalog and the hosted checkout client.
package billing

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Mode is the checkout mode of a product.
type Mode string

const (
	ModePayment      Mode = "payment"
	ModeSubscription Mode = "subscription"
)

// Product is one purchasable plan.
type Product struct {
	ID          string  `yaml:"id" json:"id"`
	PriceID     string  `yaml:"price_id" json:"price_id"`
	Name        string  `yaml:"name" json:"name"`
	Description string  `yaml:"description" json:"description"`
	Mode        Mode    `yaml:"mode" json:"mode"`
	Price       float64 `yaml:"price" json:"price"`
}

// Catalog is an ordered, read-only product list.
type Catalog struct {
	products []Product
}

//go:embed catalog.yaml
var defaultCatalog []byte

// DefaultCatalog parses the embedded catalog.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalog)
}

// ParseCatalog reads a YAML document with a top-level products list.
func ParseCatalog(data []byte) (*Catalog, error) {
	var doc struct {
		Products []Product `yaml:"products"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	seen := make(map[string]struct{}, len(doc.Products))
	for _, p := range doc.Products {
		if p.PriceID == "" {
			return nil, fmt.Errorf("parse catalog: product %q has no price id", p.Name)
		}
		if p.Mode != ModePayment && p.Mode != ModeSubscription {
			return nil, fmt.Errorf("parse catalog: product %q has unknown mode %q", p.Name, p.Mode)
		}
		if _, dup := seen[p.PriceID]; dup {
			return nil, fmt.Errorf("parse catalog: duplicate price id %q", p.PriceID)
		}
		seen[p.PriceID] = struct{}{}
	}

	return &Catalog{products: doc.Products}, nil
}

// Products returns a copy of the catalog in display order.
func (c *Catalog) Products() []Product {
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

// ProductByPriceID returns the product sold under priceID.
func (c *Catalog) ProductByPriceID(priceID string) (Product, bool) {
	for _, p := range c.products {
		if p.PriceID == priceID {
			return p, true
		}
	}
	return Product{}, false
}

// FreePlan returns the zero-priced product, if the catalog has one.
func (c *Catalog) FreePlan() (Product, bool) {
	for _, p := range c.products {
		if p.Price == 0 {
			return p, true
		}
	}
	return Product{}, false
}
