// Package cart holds the per-session shopping cart.
package cart

import (
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/utafrali/brewhouse/internal/domain"
)

// ErrNotInitialized is the panic value raised when a Store that was not built
// with New or Restore is used.
var ErrNotInitialized = errors.New("cart: store used before initialization")

// Store owns the ordered line items of one cart. Every operation is total:
// none of them fail, and none of them return errors.
//
// The zero value is not usable; build one with New or Restore.
type Store struct {
	mu    sync.Mutex
	items []domain.LineItem
	index map[string]int // product id -> position in items
}

// New returns an empty cart.
func New() *Store {
	return &Store{index: make(map[string]int)}
}

// Restore rebuilds a cart from previously captured items, preserving their
// order. Duplicate product ids are merged and non-positive quantities dropped,
// so a restored cart always satisfies the one-line-per-product rule.
func Restore(items []domain.LineItem) *Store {
	s := New()
	for _, li := range items {
		if li.Quantity <= 0 {
			continue
		}
		if i, ok := s.index[li.Product.ID]; ok {
			s.items[i].Quantity += li.Quantity
			continue
		}
		s.index[li.Product.ID] = len(s.items)
		s.items = append(s.items, li)
	}
	return s
}

func (s *Store) lock() {
	if s == nil || s.index == nil {
		panic(ErrNotInitialized)
	}
	s.mu.Lock()
}

// Add puts one more of p in the cart. A product already in the cart has its
// quantity incremented and its record refreshed; a new product is appended
// with quantity 1.
func (s *Store) Add(p domain.Product) {
	s.lock()
	defer s.mu.Unlock()

	if i, ok := s.index[p.ID]; ok {
		s.items[i].Product = p
		s.items[i].Quantity++
		return
	}
	s.index[p.ID] = len(s.items)
	s.items = append(s.items, domain.LineItem{Product: p, Quantity: 1})
}

// Remove drops the line for productID. Unknown ids are ignored.
func (s *Store) Remove(productID string) {
	s.lock()
	defer s.mu.Unlock()
	s.remove(productID)
}

func (s *Store) remove(productID string) {
	i, ok := s.index[productID]
	if !ok {
		return
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	delete(s.index, productID)
	for j := i; j < len(s.items); j++ {
		s.index[s.items[j].Product.ID] = j
	}
}

// UpdateQuantity sets the quantity of productID to exactly q. A q of zero or
// less removes the line. Unknown ids are ignored.
func (s *Store) UpdateQuantity(productID string, q int) {
	s.lock()
	defer s.mu.Unlock()

	if q <= 0 {
		s.remove(productID)
		return
	}
	if i, ok := s.index[productID]; ok {
		s.items[i].Quantity = q
	}
}

// Clear empties the cart.
func (s *Store) Clear() {
	s.lock()
	defer s.mu.Unlock()

	s.items = nil
	clear(s.index)
}

// TotalItems is the sum of all quantities, not the number of distinct products.
func (s *Store) TotalItems() int {
	s.lock()
	defer s.mu.Unlock()
	return totalItems(s.items)
}

// TotalPrice is the sum of price × quantity over all lines, using each
// product's current price.
func (s *Store) TotalPrice() decimal.Decimal {
	s.lock()
	defer s.mu.Unlock()
	return totalPrice(s.items)
}

// Items returns a copy of the line items in insertion order.
func (s *Store) Items() []domain.LineItem {
	s.lock()
	defer s.mu.Unlock()
	return cloneItems(s.items)
}

// Len is the number of distinct products in the cart.
func (s *Store) Len() int {
	s.lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// IsEmpty reports whether the cart holds no line items.
func (s *Store) IsEmpty() bool {
	return s.Len() == 0
}

// Snapshot captures items and totals under a single lock.
func (s *Store) Snapshot() Snapshot {
	s.lock()
	defer s.mu.Unlock()
	return Snapshot{
		Items:      cloneItems(s.items),
		TotalItems: totalItems(s.items),
		Subtotal:   totalPrice(s.items),
	}
}

// Snapshot is a consistent read of a cart at one point in time.
type Snapshot struct {
	Items      []domain.LineItem
	TotalItems int
	Subtotal   decimal.Decimal
}

// TotalPrice returns the captured subtotal.
func (s Snapshot) TotalPrice() decimal.Decimal {
	return s.Subtotal
}

// IsEmpty reports whether the snapshot holds no line items.
func (s Snapshot) IsEmpty() bool {
	return len(s.Items) == 0
}

func totalItems(items []domain.LineItem) int {
	n := 0
	for _, li := range items {
		n += li.Quantity
	}
	return n
}

func totalPrice(items []domain.LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, li := range items {
		sum = sum.Add(li.Total())
	}
	return sum
}

func cloneItems(items []domain.LineItem) []domain.LineItem {
	out := make([]domain.LineItem, len(items))
	copy(out, items)
	return out
}
