package cart

import (
	"math"
	"sync"

	"github.com/fjod/orderdesk/internal/domain"
	"github.com/fjod/orderdesk/internal/pricing"
	"github.com/shopspring/decimal"
)

// Store holds the live cart of one ordering session.
// Every method holds the lock for its whole duration so callers never see a half-applied mutation.
type Store struct {
	mu      sync.Mutex
	channel domain.ChannelType
	lines   []domain.CartLine
}

func NewStore(channel domain.ChannelType) *Store {
	return &Store{channel: channel}
}

// AddLine merges quantityDelta into the product's line, creating it if needed.
// A new line locks in the price resolved for the cart's channel.
func (s *Store) AddLine(product domain.Product, quantityDelta int) error {
	if quantityDelta <= 0 {
		return reject("add", product.ID, ErrInvalidQuantity)
	}
	if !product.Orderable() {
		if !product.Active {
			return reject("add", product.ID, ErrInactiveProduct)
		}
		return reject("add", product.ID, ErrOutOfStock)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(product.ID); i >= 0 {
		if quantityDelta > math.MaxInt-s.lines[i].Quantity {
			return reject("add", product.ID, ErrInvalidQuantity)
		}
		s.lines[i].Quantity += quantityDelta
		return nil
	}

	price, err := pricing.Resolve(product, s.channel)
	if err != nil {
		return reject("add", product.ID, err)
	}

	s.lines = append(s.lines, domain.CartLine{
		ProductID:    product.ID,
		ProductName:  product.Name,
		UnitPrice:    price,
		Quantity:     quantityDelta,
		UnitsPerCase: product.UnitsPerCase,
	})
	return nil
}

// SetQuantity sets the absolute quantity of an existing line. Zero removes the line.
func (s *Store) SetQuantity(productID int64, quantity int) error {
	if quantity < 0 {
		return reject("set quantity", productID, ErrInvalidQuantity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(productID)
	if quantity == 0 {
		if i >= 0 {
			s.removeAt(i)
		}
		return nil
	}
	if i < 0 {
		return reject("set quantity", productID, ErrLineNotFound)
	}

	s.lines[i].Quantity = quantity
	return nil
}

// RemoveLine drops the product's line; removing an absent line is a no-op.
func (s *Store) RemoveLine(productID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(productID); i >= 0 {
		s.removeAt(i)
	}
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = nil
}

// Total is recomputed from the lines on every call.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, l := range s.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// LineCount is the number of distinct products, not units.
func (s *Store) LineCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines)
}

// Lines returns a copy of the current lines in insertion order.
func (s *Store) Lines() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.CartLine, len(s.lines))
	copy(out, s.lines)
	return out
}

func (s *Store) IsEmpty() bool {
	return s.LineCount() == 0
}

func (s *Store) State() domain.CartState {
	if s.IsEmpty() {
		return domain.CartEmpty
	}
	return domain.CartNonEmpty
}

func (s *Store) Channel() domain.ChannelType {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.channel
}

// SetChannel switches the pricing channel. Lines keep their locked prices,
// so switching is refused while lines priced for another channel are present.
func (s *Store) SetChannel(channel domain.ChannelType) error {
	if !channel.Valid() {
		return reject("set channel", 0, pricing.ErrUnknownChannel)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.lines) > 0 && s.channel != channel {
		return reject("set channel", 0, ErrChannelLocked)
	}
	s.channel = channel
	return nil
}

func (s *Store) indexOf(productID int64) int {
	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (s *Store) removeAt(i int) {
	s.lines = append(s.lines[:i], s.lines[i+1:]...)
}
