// internal/domain/product/entity.go
package product

import "github.com/shopspring/decimal"

// Product is a catalog record. Products are sourced from the external catalog
// and never created or mutated locally.
type Product struct {
	ID          int             `json:"id"`
	Title       string          `json:"title"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
	Rating      Rating          `json:"rating"`
}

// Rating is the catalog's aggregated review score
type Rating struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

// Review represents a single customer review of a product
type Review struct {
	ID        int    `json:"id"`
	ProductID int    `json:"product_id"`
	User      string `json:"user"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
	Date      string `json:"date"`
}

// AverageRating returns the mean score of the given reviews, 0 for none
func AverageRating(reviews []Review) float64 {
	if len(reviews) == 0 {
		return 0
	}

	total := 0
	for _, r := range reviews {
		total += r.Rating
	}
	return float64(total) / float64(len(reviews))
}
