// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sudeepthiperuri3/shop-sphere/internal/domain/checkout"
	"github.com/sudeepthiperuri3/shop-sphere/internal/interfaces/http/middleware"
	"github.com/sudeepthiperuri3/shop-sphere/internal/pkg/pdf"
)

// CheckoutHandler handles the mock checkout flow
type CheckoutHandler struct {
	checkoutService *checkout.Service
	pdfService      *pdf.Service
	logger          logrus.FieldLogger
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkoutService *checkout.Service, pdfService *pdf.Service, logger logrus.FieldLogger) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		pdfService:      pdfService,
		logger:          logger,
	}
}

// PaymentView is the accepted payment step with the card masked
type PaymentView struct {
	CardNumber string `json:"card_number"`
	CardName   string `json:"card_name"`
	ExpiryDate string `json:"expiry_date"`
}

// GetCheckout handles GET /checkout
func (h *CheckoutHandler) GetCheckout(c *gin.Context) {
	store, ok := sessionCart(c, h.logger)
	if !ok {
		return
	}

	message := "Checkout summary retrieved successfully"
	if store.IsEmpty() {
		message = "Your cart is empty"
	}

	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"data":    h.checkoutService.Summarize(store),
	})
}

// ValidateShipping handles POST /checkout/shipping
func (h *CheckoutHandler) ValidateShipping(c *gin.Context) {
	var req checkout.ShippingInfo
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		validationFailed(c, errs)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Shipping details accepted",
		"data":    req,
	})
}

// ValidatePayment handles POST /checkout/payment
func (h *CheckoutHandler) ValidatePayment(c *gin.Context) {
	var req checkout.PaymentInfo
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	req = req.Normalize()
	if errs := req.Validate(); len(errs) > 0 {
		validationFailed(c, errs)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Payment details accepted",
		"data": PaymentView{
			CardNumber: "**** **** **** " + req.LastFour(),
			CardName:   req.CardName,
			ExpiryDate: req.ExpiryDate,
		},
	})
}

// PlaceOrder handles POST /checkout
func (h *CheckoutHandler) PlaceOrder(c *gin.Context) {
	var req checkout.Form
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	st, ok := middleware.GetSessionStorage(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Session unavailable",
		})
		return
	}

	store, ok := sessionCart(c, h.logger)
	if !ok {
		return
	}

	order, err := h.checkoutService.PlaceOrder(c.Request.Context(), store, st, req)
	if err != nil {
		var verr *checkout.ValidationError
		switch {
		case errors.As(err, &verr):
			validationFailed(c, verr.Fields)
		case errors.Is(err, checkout.ErrEmptyCart):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Your cart is empty",
			})
		default:
			h.logger.WithError(err).Error("Failed to place order")
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to place order",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"data":    order,
	})
}

// GetReceipt handles GET /checkout/receipt. format=html returns the page
// the PDF is rendered from.
func (h *CheckoutHandler) GetReceipt(c *gin.Context) {
	st, ok := middleware.GetSessionStorage(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Session unavailable",
		})
		return
	}

	order, err := h.checkoutService.LastOrder(c.Request.Context(), st)
	if errors.Is(err, checkout.ErrNoOrder) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "No order found",
		})
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to load last order")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to load order",
		})
		return
	}

	if c.Query("format") == "html" {
		html, err := h.pdfService.RenderReceiptHTML(order)
		if err != nil {
			h.logger.WithError(err).Error("Failed to render receipt")
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to generate receipt",
			})
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", html)
		return
	}

	pdfBuffer, err := h.pdfService.GenerateReceipt(order)
	if err != nil {
		h.logger.WithError(err).WithField("order_number", order.Number).Error("Failed to generate receipt PDF")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to generate receipt",
		})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=receipt-%s.pdf", order.Number))
	c.Header("Content-Length", strconv.Itoa(pdfBuffer.Len()))
	c.Data(http.StatusOK, "application/pdf", pdfBuffer.Bytes())
}

func validationFailed(c *gin.Context, errs checkout.FieldErrors) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{
		"error":   "Validation failed",
		"details": errs,
	})
}
