// internal/interfaces/http/handlers/product.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sudeepthiperuri3/shop-sphere/internal/domain/product"
	"github.com/sudeepthiperuri3/shop-sphere/internal/infrastructure/catalog"
)

const relatedLimit = 4

// ProductHandler handles the product list and detail views
type ProductHandler struct {
	catalog Catalog
	logger  logrus.FieldLogger
}

// NewProductHandler creates a new product handler
func NewProductHandler(c Catalog, logger logrus.FieldLogger) *ProductHandler {
	return &ProductHandler{
		catalog: c,
		logger:  logger,
	}
}

// ProductListView is the data of the product list view
type ProductListView struct {
	Products      []product.Product `json:"products"`
	Categories    []string          `json:"categories"`
	Filter        product.Filter    `json:"filter"`
	MaxPrice      decimal.Decimal   `json:"max_price"`
	ActiveFilters int               `json:"active_filters"`
	TotalProducts int               `json:"total_products"`
	CartCount     int               `json:"cart_count"`
}

// ProductDetailView is the data of the product detail view
type ProductDetailView struct {
	Product       *product.Product  `json:"product"`
	Reviews       []product.Review  `json:"reviews"`
	AverageRating float64           `json:"average_rating"`
	InCart        int               `json:"in_cart"`
	Related       []product.Product `json:"related"`
	ReviewsError  string            `json:"reviews_error,omitempty"`
}

// ListProducts handles GET /home?q=&category=&min=&max=
func (h *ProductHandler) ListProducts(c *gin.Context) {
	cartStore, ok := sessionCart(c, h.logger)
	if !ok {
		return
	}

	view := ProductListView{
		Products:   []product.Product{},
		Categories: []string{},
		CartCount:  cartStore.ItemCount(),
	}

	products, err := h.catalog.Products(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Warn("Product list unavailable")
		view.Filter = product.DefaultFilter(nil)
		view.MaxPrice = product.DefaultMaxPrice
		c.JSON(http.StatusOK, gin.H{
			"error": "Failed to load products",
			"data":  view,
		})
		return
	}

	filter, err := parseFilter(c, products)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid filter",
			"details": err.Error(),
		})
		return
	}

	view.Filter = filter
	view.MaxPrice = product.MaxPrice(products)
	view.ActiveFilters = filter.ActiveCount(view.MaxPrice)
	view.TotalProducts = len(products)
	view.Products = product.Apply(products, filter)

	if categories, err := h.catalog.Categories(c.Request.Context()); err != nil {
		h.logger.WithError(err).Warn("Category list unavailable")
	} else {
		view.Categories = categories
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Products retrieved successfully",
		"data":    view,
	})
}

// GetProduct handles GET /product/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := parseProductID(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Product not found",
		})
		return
	}

	cartStore, ok := sessionCart(c, h.logger)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	p, err := h.catalog.Product(ctx, id)
	if errors.Is(err, catalog.ErrProductNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Product not found",
		})
		return
	}
	if err != nil {
		h.logger.WithError(err).WithField("product_id", id).Warn("Product unavailable")
		c.JSON(http.StatusOK, gin.H{
			"error": "Failed to load product",
			"data": ProductDetailView{
				Reviews: []product.Review{},
				Related: []product.Product{},
			},
		})
		return
	}

	view := ProductDetailView{
		Product: p,
		Reviews: []product.Review{},
		InCart:  cartStore.QuantityOf(id),
		Related: h.related(c, p),
	}

	if reviews, err := h.catalog.Reviews(ctx, id); err != nil {
		view.ReviewsError = "Failed to load reviews"
	} else {
		view.Reviews = reviews
		view.AverageRating = product.AverageRating(reviews)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product retrieved successfully",
		"data":    view,
	})
}

// related lists a few other products from the same category. Failures
// yield an empty list.
func (h *ProductHandler) related(c *gin.Context, p *product.Product) []product.Product {
	related := []product.Product{}
	if p.Category == "" {
		return related
	}

	products, err := h.catalog.ProductsByCategory(c.Request.Context(), p.Category)
	if err != nil {
		h.logger.WithError(err).WithField("category", p.Category).Debug("Related products unavailable")
		return related
	}

	for _, candidate := range products {
		if candidate.ID == p.ID {
			continue
		}
		related = append(related, candidate)
		if len(related) == relatedLimit {
			break
		}
	}
	return related
}

// parseFilter builds the filter from the query string on top of the
// default filter for products
func parseFilter(c *gin.Context, products []product.Product) (product.Filter, error) {
	filter := product.DefaultFilter(products)
	filter.Query = c.Query("q")
	filter.Category = c.Query("category")

	if raw := c.Query("min"); raw != "" {
		low, err := decimal.NewFromString(raw)
		if err != nil {
			return filter, errors.New("min must be a number")
		}
		filter.PriceRange.Low = low
	}

	if raw := c.Query("max"); raw != "" {
		high, err := decimal.NewFromString(raw)
		if err != nil {
			return filter, errors.New("max must be a number")
		}
		filter.PriceRange.High = high
	}

	return filter, nil
}
