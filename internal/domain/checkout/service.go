// internal/domain/checkout/service.go
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sudeepthiperuri3/shop-sphere/internal/config"
	"github.com/sudeepthiperuri3/shop-sphere/internal/domain/cart"
	"github.com/sudeepthiperuri3/shop-sphere/internal/infrastructure/storage"
)

// OrderStorageKey is the durable-storage key holding the session's last order
const OrderStorageKey = "shopsphere_last_order"

var (
	// ErrEmptyCart is returned when placing an order with nothing in the cart
	ErrEmptyCart = errors.New("your cart is empty")

	// ErrNoOrder is returned when the session has not placed an order yet
	ErrNoOrder = errors.New("no order has been placed")
)

// ValidationError carries the per-field messages of a rejected form
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return "invalid checkout form: " + strings.Join(fields, ", ")
}

// Summary represents the pricing breakdown of a cart
type Summary struct {
	Items     []cart.Entry    `json:"items"`
	ItemCount int             `json:"item_count"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	TaxRate   decimal.Decimal `json:"tax_rate"`
	Tax       decimal.Decimal `json:"tax"`
	Total     decimal.Decimal `json:"total"`
}

// Order is the confirmation of a placed mock order
type Order struct {
	Number       string       `json:"order_number"`
	PlacedAt     time.Time    `json:"placed_at"`
	Shipping     ShippingInfo `json:"shipping"`
	CardName     string       `json:"card_name"`
	CardLastFour string       `json:"card_last_four"`
	Summary      Summary      `json:"summary"`
}

// Service handles the mock checkout flow
type Service struct {
	taxRate decimal.Decimal
	logger  logrus.FieldLogger
	now     func() time.Time
}

// NewService creates a new checkout service
func NewService(cfg *config.Config, logger logrus.FieldLogger) *Service {
	return &Service{
		taxRate: cfg.Checkout.TaxRate,
		logger:  logger.WithField("component", "checkout"),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Summarize prices the cart: subtotal, tax rounded to cents, total
func (s *Service) Summarize(c *cart.Store) Summary {
	subtotal := c.TotalPrice()
	tax := subtotal.Mul(s.taxRate).Round(2)

	return Summary{
		Items:     c.Entries(),
		ItemCount: c.ItemCount(),
		Subtotal:  subtotal,
		TaxRate:   s.taxRate,
		Tax:       tax,
		Total:     subtotal.Add(tax),
	}
}

// PlaceOrder validates the whole form, records the order as the session's
// last order and clears the cart. Nothing is charged.
func (s *Service) PlaceOrder(ctx context.Context, c *cart.Store, st storage.Storage, form Form) (*Order, error) {
	form.Payment = form.Payment.Normalize()

	if errs := form.Validate(); len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	order := &Order{
		Number:       "SS-" + strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:10]),
		PlacedAt:     s.now(),
		Shipping:     form.Shipping,
		CardName:     form.Payment.CardName,
		CardLastFour: form.Payment.LastFour(),
		Summary:      s.Summarize(c),
	}

	data, err := json.Marshal(order)
	if err != nil {
		return nil, fmt.Errorf("failed to encode order: %w", err)
	}
	if err := st.Set(ctx, OrderStorageKey, data); err != nil {
		return nil, fmt.Errorf("failed to record order: %w", err)
	}

	if err := c.Clear(ctx); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"order_number": order.Number,
		"item_count":   order.Summary.ItemCount,
		"total":        order.Summary.Total.StringFixed(2),
	}).Info("Order placed")

	return order, nil
}

// LastOrder returns the most recent order of the session
func (s *Service) LastOrder(ctx context.Context, st storage.Storage) (*Order, error) {
	raw, err := st.Get(ctx, OrderStorageKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNoOrder
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read last order: %w", err)
	}

	var order Order
	if err := json.Unmarshal(raw, &order); err != nil {
		s.logger.WithError(err).Warn("Discarding malformed order record")
		return nil, ErrNoOrder
	}
	return &order, nil
}
