package product

import (
	"context"
	"errors"
	"strings"
)

var ErrProductNotFound = errors.New("product not found")

type Product struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	Price          int    `json:"price"`
	Size           string `json:"size"`
	SellerLocation string `json:"seller_location"`
	Stock          int    `json:"stock"`
}

// Filter narrows a catalog search. Zero-valued fields do not filter, except
// MaxPrice, which applies whenever it is set.
type Filter struct {
	Query    string   `json:"query,omitempty"`
	Size     string   `json:"size,omitempty"`
	MaxPrice *float64 `json:"max_price,omitempty"`
	Location string   `json:"location,omitempty"`
	Quantity int      `json:"quantity,omitempty"`
}

// PriceAtMost returns a MaxPrice bound.
func PriceAtMost(v float64) *float64 {
	return &v
}

// Matches reports whether p passes every filter in f.
func (f Filter) Matches(p Product) bool {
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		if !strings.Contains(strings.ToLower(p.Name), q) && !strings.Contains(strings.ToLower(p.Description), q) {
			return false
		}
	}
	if f.Size != "" && p.Size != f.Size {
		return false
	}
	if f.MaxPrice != nil && float64(p.Price) > *f.MaxPrice {
		return false
	}
	if f.Location != "" && !strings.Contains(strings.ToLower(p.SellerLocation), strings.ToLower(f.Location)) {
		return false
	}
	if f.Quantity > 0 && p.Stock < f.Quantity {
		return false
	}
	return true
}

// Source is a product read source. Get returns ErrProductNotFound for unknown ids.
type Source interface {
	Search(ctx context.Context, f Filter) ([]Product, error)
	Get(ctx context.Context, id string) (Product, error)
}

// Seed returns the demo catalog served when no remote store is configured.
func Seed() []Product {
	return []Product{
		{ID: "p1", Name: "Black T-Shirt", Description: "Cotton black t-shirt", Price: 299, Size: "L", SellerLocation: "Civil Lines", Stock: 10},
		{ID: "p2", Name: "Black T-Shirt", Description: "Cotton black t-shirt", Price: 349, Size: "M", SellerLocation: "Rajpur Road", Stock: 5},
		{ID: "p3", Name: "White T-Shirt", Description: "Premium white t-shirt", Price: 399, Size: "L", SellerLocation: "Civil Lines", Stock: 8},
		{ID: "p4", Name: "Blue Jeans", Description: "Denim blue jeans", Price: 799, Size: "32", SellerLocation: "Mall Road", Stock: 12},
		{ID: "p5", Name: "Red Hoodie", Description: "Warm red hoodie", Price: 599, Size: "L", SellerLocation: "Civil Lines", Stock: 3},
	}
}
