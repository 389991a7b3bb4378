// internal/domain/cart/entity.go
package cart

import (
	"github.com/shopspring/decimal"
	"github.com/sudeepthiperuri3/shop-sphere/internal/domain/product"
)

// StorageKey is the fixed durable-storage key holding the cart entries
const StorageKey = "shopsphere_cart"

// Entry is a product with the quantity the shopper wants. It serializes as
// the product's fields plus "quantity".
type Entry struct {
	product.Product
	Quantity int `json:"quantity"`
}

// LineTotal returns price × quantity
func (e Entry) LineTotal() decimal.Decimal {
	return e.Price.Mul(decimal.NewFromInt(int64(e.Quantity)))
}

// Totals represents the derived cart totals
type Totals struct {
	ItemCount   int             `json:"item_count"`   // Sum of all quantities
	UniqueItems int             `json:"unique_items"` // Number of entries
	TotalPrice  decimal.Decimal `json:"total_price"`
}
