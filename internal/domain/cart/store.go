// internal/domain/cart/store.go
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sudeepthiperuri3/shop-sphere/internal/domain/product"
	"github.com/sudeepthiperuri3/shop-sphere/internal/infrastructure/storage"
)

// Store holds one session's cart: at most one entry per product id, in
// insertion order, every quantity >= 1.
//
// Every mutation rewrites the whole entry list to storage before returning.
// If that write fails the in-memory change is kept and the error is returned.
// A Store is owned by a single request and is not safe for concurrent use.
type Store struct {
	storage storage.Storage
	logger  logrus.FieldLogger
	entries []Entry
}

// NewStore restores the cart from st. Missing or malformed data yields an
// empty cart.
func NewStore(ctx context.Context, st storage.Storage, logger logrus.FieldLogger) *Store {
	s := &Store{
		storage: st,
		logger:  logger.WithField("component", "cart"),
		entries: []Entry{},
	}

	raw, err := st.Get(ctx, StorageKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.WithError(err).Warn("Failed to restore cart, starting empty")
		}
		return s
	}

	entries, err := decodeEntries(raw)
	if err != nil {
		s.logger.WithError(err).Warn("Discarding malformed cart record")
		return s
	}

	s.entries = entries
	return s
}

// decodeEntries parses a stored entry list, rejecting records that break the
// cart invariants.
func decodeEntries(raw []byte) ([]Entry, error) {
	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, err
	}

	seen := make(map[int]struct{}, len(entries))
	for _, e := range entries {
		if e.Quantity < 1 {
			return nil, fmt.Errorf("product %d has quantity %d", e.ID, e.Quantity)
		}
		if _, dup := seen[e.ID]; dup {
			return nil, fmt.Errorf("product %d appears twice", e.ID)
		}
		seen[e.ID] = struct{}{}
	}

	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

// Add puts one unit of p in the cart
func (s *Store) Add(ctx context.Context, p product.Product) error {
	if i := s.indexOf(p.ID); i >= 0 {
		s.entries[i].Quantity++
	} else {
		s.entries = append(s.entries, Entry{Product: p, Quantity: 1})
	}
	return s.persist(ctx)
}

// Remove deletes the entry for productID; absent ids are a no-op
func (s *Store) Remove(ctx context.Context, productID int) error {
	i := s.indexOf(productID)
	if i < 0 {
		return nil
	}

	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	return s.persist(ctx)
}

// SetQuantity sets the quantity of an existing entry. Quantities below 1 and
// unknown product ids are ignored; entries are never created or removed here.
func (s *Store) SetQuantity(ctx context.Context, productID, quantity int) error {
	if quantity < 1 {
		return nil
	}

	i := s.indexOf(productID)
	if i < 0 || s.entries[i].Quantity == quantity {
		return nil
	}

	s.entries[i].Quantity = quantity
	return s.persist(ctx)
}

// Clear empties the cart
func (s *Store) Clear(ctx context.Context) error {
	s.entries = []Entry{}
	return s.persist(ctx)
}

// Entries returns a copy of the entries in insertion order
func (s *Store) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// IsEmpty reports whether the cart has no entries
func (s *Store) IsEmpty() bool {
	return len(s.entries) == 0
}

// ItemCount returns the sum of all quantities
func (s *Store) ItemCount() int {
	count := 0
	for _, e := range s.entries {
		count += e.Quantity
	}
	return count
}

// TotalPrice returns the sum of price × quantity over all entries
func (s *Store) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, e := range s.entries {
		total = total.Add(e.LineTotal())
	}
	return total
}

// Totals returns every derived total at once
func (s *Store) Totals() Totals {
	return Totals{
		ItemCount:   s.ItemCount(),
		UniqueItems: len(s.entries),
		TotalPrice:  s.TotalPrice(),
	}
}

// Contains reports whether the cart has an entry for productID
func (s *Store) Contains(productID int) bool {
	return s.indexOf(productID) >= 0
}

// QuantityOf returns the quantity held for productID, 0 when absent
func (s *Store) QuantityOf(productID int) int {
	if i := s.indexOf(productID); i >= 0 {
		return s.entries[i].Quantity
	}
	return 0
}

func (s *Store) indexOf(productID int) int {
	for i := range s.entries {
		if s.entries[i].ID == productID {
			return i
		}
	}
	return -1
}

func (s *Store) persist(ctx context.Context) error {
	data, err := json.Marshal(s.entries)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}

	if err := s.storage.Set(ctx, StorageKey, data); err != nil {
		s.logger.WithError(err).Error("Failed to persist cart")
		return fmt.Errorf("failed to persist cart: %w", err)
	}
	return nil
}
