// internal/infrastructure/catalog/reviews.go
package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/sudeepthiperuri3/shop-sphere/internal/domain/product"
)

// The catalog has no review backend; every product shares this fixture.
var reviewFixture = []product.Review{
	{ID: 1, User: "John D.", Rating: 5, Comment: "Excellent product! Exactly what I was looking for. The quality exceeded my expectations.", Date: "2024-12-15"},
	{ID: 2, User: "Sarah M.", Rating: 4, Comment: "Great value for money. Shipping was fast and the product matches the description.", Date: "2024-12-10"},
	{ID: 3, User: "Mike R.", Rating: 5, Comment: "Love it! Would definitely recommend to friends and family.", Date: "2024-12-05"},
	{ID: 4, User: "Emily K.", Rating: 3, Comment: "Good product overall, but took longer to arrive than expected.", Date: "2024-11-28"},
	{ID: 5, User: "David L.", Rating: 4, Comment: "Solid quality and good customer service. Will buy again.", Date: "2024-11-20"},
}

// Reviews returns the reviews of a product after the configured artificial delay
func (c *Client) Reviews(ctx context.Context, productID int) ([]product.Review, error) {
	if c.reviewsDelay > 0 {
		timer := time.NewTimer(c.reviewsDelay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: reviews: %v", ErrLoadFailed, ctx.Err())
		case <-timer.C:
		}
	}

	reviews := make([]product.Review, len(reviewFixture))
	for i, r := range reviewFixture {
		r.ProductID = productID
		reviews[i] = r
	}
	return reviews, nil
}
