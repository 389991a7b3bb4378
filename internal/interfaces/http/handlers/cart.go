// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sudeepthiperuri3/shop-sphere/internal/domain/cart"
	"github.com/sudeepthiperuri3/shop-sphere/internal/infrastructure/catalog"
)

// CartHandler handles cart endpoints
type CartHandler struct {
	catalog Catalog
	logger  logrus.FieldLogger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(c Catalog, logger logrus.FieldLogger) *CartHandler {
	return &CartHandler{
		catalog: c,
		logger:  logger,
	}
}

// AddToCartRequest represents the add intent. Quantity repeats the add.
type AddToCartRequest struct {
	ProductID int `json:"product_id" binding:"required,min=1"`
	Quantity  int `json:"quantity" binding:"omitempty,min=1,max=99"`
}

// UpdateCartItemRequest represents the setQuantity intent
type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// CartView is the data of the cart view
type CartView struct {
	Items []cart.Entry `json:"items"`
	cart.Totals
}

func cartView(s *cart.Store) CartView {
	return CartView{
		Items:  s.Entries(),
		Totals: s.Totals(),
	}
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	store, ok := sessionCart(c, h.logger)
	if !ok {
		return
	}

	message := "Cart retrieved successfully"
	if store.IsEmpty() {
		message = "Your cart is empty"
	}

	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"data":    cartView(store),
	})
}

// AddToCart handles POST /cart/items
func (h *CartHandler) AddToCart(c *gin.Context) {
	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	store, ok := sessionCart(c, h.logger)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	p, err := h.catalog.Product(ctx, req.ProductID)
	if errors.Is(err, catalog.ErrProductNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Product not found",
		})
		return
	}
	if err != nil {
		h.logger.WithError(err).WithField("product_id", req.ProductID).Warn("Product unavailable")
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "Failed to load product",
		})
		return
	}

	for i := 0; i < req.Quantity; i++ {
		if err := store.Add(ctx, *p); err != nil {
			h.persistFailed(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart successfully",
		"data":    cartView(store),
	})
}

// UpdateCartItem handles PUT /cart/items/:id. Quantities below one are
// ignored rather than removing the item.
func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	productID, ok := parseProductID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product ID",
		})
		return
	}

	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	store, ok := sessionCart(c, h.logger)
	if !ok {
		return
	}

	if !store.Contains(productID) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Item not found in cart",
		})
		return
	}

	if err := store.SetQuantity(c.Request.Context(), productID, *req.Quantity); err != nil {
		h.persistFailed(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart item updated successfully",
		"data":    cartView(store),
	})
}

// RemoveFromCart handles DELETE /cart/items/:id
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	productID, ok := parseProductID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product ID",
		})
		return
	}

	store, ok := sessionCart(c, h.logger)
	if !ok {
		return
	}

	if err := store.Remove(c.Request.Context(), productID); err != nil {
		h.persistFailed(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from cart successfully",
		"data":    cartView(store),
	})
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	store, ok := sessionCart(c, h.logger)
	if !ok {
		return
	}

	if err := store.Clear(c.Request.Context()); err != nil {
		h.persistFailed(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared successfully",
		"data":    cartView(store),
	})
}

func (h *CartHandler) persistFailed(c *gin.Context, err error) {
	h.logger.WithError(err).Error("Failed to save cart")
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": "Failed to save cart",
	})
}
