// internal/domain/product/filter.go
package product

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultMaxPrice is the upper price bound used before any product is known
var DefaultMaxPrice = decimal.NewFromInt(1000)

// PriceRange is an inclusive [Low, High] price bound
type PriceRange struct {
	Low  decimal.Decimal `json:"low"`
	High decimal.Decimal `json:"high"`
}

// Contains reports whether price lies within the range, bounds included
func (r PriceRange) Contains(price decimal.Decimal) bool {
	return price.GreaterThanOrEqual(r.Low) && price.LessThanOrEqual(r.High)
}

// Filter is the transient browsing state of the product list.
// An empty Category matches every category and an empty Query matches every product.
type Filter struct {
	Category   string     `json:"category"`
	PriceRange PriceRange `json:"price_range"`
	Query      string     `json:"query"`
}

// Matches reports whether p satisfies every criterion of the filter
func (f Filter) Matches(p Product) bool {
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		if !strings.Contains(strings.ToLower(p.Title), q) &&
			!strings.Contains(strings.ToLower(p.Description), q) {
			return false
		}
	}

	if f.Category != "" && p.Category != f.Category {
		return false
	}

	return f.PriceRange.Contains(p.Price)
}

// Apply returns the products matching f, preserving input order
func Apply(products []Product, f Filter) []Product {
	matched := make([]Product, 0, len(products))
	for _, p := range products {
		if f.Matches(p) {
			matched = append(matched, p)
		}
	}
	return matched
}

// MaxPrice returns the highest product price rounded up to a whole unit,
// or DefaultMaxPrice for an empty list.
func MaxPrice(products []Product) decimal.Decimal {
	if len(products) == 0 {
		return DefaultMaxPrice
	}

	highest := products[0].Price
	for _, p := range products[1:] {
		if p.Price.GreaterThan(highest) {
			highest = p.Price
		}
	}
	return highest.Ceil()
}

// DefaultFilter returns the filter that matches the whole product list
func DefaultFilter(products []Product) Filter {
	return Filter{
		PriceRange: PriceRange{Low: decimal.Zero, High: MaxPrice(products)},
	}
}

// ActiveCount returns how many criteria narrow the list relative to maxPrice
func (f Filter) ActiveCount(maxPrice decimal.Decimal) int {
	count := 0
	if f.Category != "" {
		count++
	}
	if f.PriceRange.Low.IsPositive() || f.PriceRange.High.LessThan(maxPrice) {
		count++
	}
	if f.Query != "" {
		count++
	}
	return count
}
