package store

import (
	"context"
	"slices"
	"time"

	"github.com/kiwari-pos/stockroom/internal/domain"
)

// OrderFilter narrows ListOrders. Zero values do not filter.
type OrderFilter struct {
	Status string
	Start  time.Time // inclusive
	End    time.Time // inclusive
	Limit  int
	Offset int
}

func (f OrderFilter) matches(o domain.Order) bool {
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	if !f.Start.IsZero() && o.CreatedAt.Before(f.Start) {
		return false
	}
	if !f.End.IsZero() && o.CreatedAt.After(f.End) {
		return false
	}
	return true
}

// cloneOrder copies the slices so callers never share backing arrays with
// the stored record.
func cloneOrder(o domain.Order) domain.Order {
	o.Items = slices.Clone(o.Items)
	o.Fees = slices.Clone(o.Fees)
	if o.ReceiptID != nil {
		r := *o.ReceiptID
		o.ReceiptID = &r
	}
	return o
}

// NextOrderItemID allocates an id for a new order line.
func (s *Store) NextOrderItemID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextID()
}

// InsertOrder stores a new order. CreatedAt and UpdatedAt are set from the
// store clock unless CreatedAt is already set.
func (s *Store) InsertOrder(_ context.Context, companyID int64, o domain.Order) (domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = s.now()
	}
	o.UpdatedAt = o.CreatedAt
	s.orders[o.UUID] = scoped[domain.Order]{companyID, cloneOrder(o)}
	return cloneOrder(o), nil
}

func (s *Store) GetOrder(_ context.Context, companyID int64, id string) (domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok || o.companyID != companyID {
		return domain.Order{}, ErrNotFound
	}
	return cloneOrder(o.v), nil
}

// UpdateOrder replaces a stored order and bumps UpdatedAt.
func (s *Store) UpdateOrder(_ context.Context, companyID int64, o domain.Order) (domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.orders[o.UUID]
	if !ok || existing.companyID != companyID {
		return domain.Order{}, ErrNotFound
	}
	o.CreatedAt = existing.v.CreatedAt
	o.UpdatedAt = s.now()
	existing.v = cloneOrder(o)
	s.orders[o.UUID] = existing
	return cloneOrder(o), nil
}

func (s *Store) DeleteOrder(_ context.Context, companyID int64, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok || o.companyID != companyID {
		return ErrNotFound
	}
	delete(s.orders, id)
	return nil
}

// ListOrders returns one page of matching orders, newest first, and the
// number of matches across all pages.
func (s *Store) ListOrders(_ context.Context, companyID int64, f OrderFilter) ([]domain.OrderListItem, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []domain.Order
	for _, o := range s.orders {
		if o.companyID == companyID && f.matches(o.v) {
			matched = append(matched, o.v)
		}
	}
	slices.SortFunc(matched, func(a, b domain.Order) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		switch {
		case a.UUID < b.UUID:
			return -1
		case a.UUID > b.UUID:
			return 1
		}
		return 0
	})

	total := len(matched)
	start := min(max(f.Offset, 0), total)
	end := total
	if f.Limit > 0 {
		end = min(start+f.Limit, total)
	}

	out := make([]domain.OrderListItem, 0, end-start)
	for _, o := range matched[start:end] {
		u := s.users[o.UserID]
		out = append(out, domain.OrderListItem{
			UUID:      o.UUID,
			User:      domain.User{ID: o.UserID, Name: u.Name, Email: u.Email},
			Subtotal:  o.Subtotal,
			Total:     o.Total,
			Status:    o.Status,
			CreatedAt: o.CreatedAt,
			UpdatedAt: o.UpdatedAt,
		})
	}
	return out, total, nil
}
