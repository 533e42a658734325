package catalog

import (
	"errors"
	"fmt"
)

var ErrInvalidCatalog = errors.New("invalid catalog")

type Product struct {
	ID    int      `json:"id"`
	Name  string   `json:"name"`
	Type  string   `json:"type"`
	Price int64    `json:"price"`
	Image string   `json:"image"`
	Tags  []string `json:"tags"`
	Stock int      `json:"stock"`
}

// Catalog is the fixed, ordered product list loaded at startup.
// It is never mutated after New returns, so it is safe for concurrent readers.
type Catalog struct {
	products []Product
}

func New(products []Product) (*Catalog, error) {
	seen := make(map[int]struct{}, len(products))
	out := make([]Product, 0, len(products))

	for _, p := range products {
		if p.ID <= 0 {
			return nil, fmt.Errorf("%w: id=%d must be positive", ErrInvalidCatalog, p.ID)
		}
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id=%d", ErrInvalidCatalog, p.ID)
		}
		if p.Price < 0 || p.Stock < 0 {
			return nil, fmt.Errorf("%w: id=%d has negative price or stock", ErrInvalidCatalog, p.ID)
		}
		seen[p.ID] = struct{}{}
		out = append(out, p.clone())
	}

	return &Catalog{products: out}, nil
}

func (c *Catalog) Len() int { return len(c.products) }

func (c *Catalog) Products() []Product {
	out := make([]Product, len(c.products))
	for i, p := range c.products {
		out[i] = p.clone()
	}
	return out
}

// FindByID is a linear scan. Fine for catalogs in the low hundreds.
func (c *Catalog) FindByID(id int) (Product, bool) {
	for _, p := range c.products {
		if p.ID == id {
			return p.clone(), true
		}
	}
	return Product{}, false
}

func (p Product) clone() Product {
	if p.Tags != nil {
		p.Tags = append([]string(nil), p.Tags...)
	}
	return p
}
