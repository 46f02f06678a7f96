package store

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/kiwari-pos/stockroom/internal/domain"
)

// ListInventory returns the company's categories with their items, both
// ordered by id.
func (s *Store) ListInventory(_ context.Context, companyID int64) ([]domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byCategory := make(map[int64][]domain.Item)
	for _, it := range s.items {
		if it.companyID == companyID {
			byCategory[it.v.CategoryID] = append(byCategory[it.v.CategoryID], it.v)
		}
	}

	out := []domain.Category{}
	for _, c := range s.categories {
		if c.companyID != companyID {
			continue
		}
		cat := c.v
		cat.Items = byCategory[cat.ID]
		if cat.Items == nil {
			cat.Items = []domain.Item{}
		}
		slices.SortFunc(cat.Items, func(a, b domain.Item) int { return cmp.Compare(a.ID, b.ID) })
		out = append(out, cat)
	}
	slices.SortFunc(out, func(a, b domain.Category) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

// categoryNameTaken reports whether another category of the company uses
// name. Caller holds s.mu.
func (s *Store) categoryNameTaken(companyID, exceptID int64, name string) bool {
	for id, c := range s.categories {
		if c.companyID == companyID && id != exceptID && sameName(c.v.Name, name) {
			return true
		}
	}
	return false
}

// itemNameTaken checks across every category of the company. Caller holds s.mu.
func (s *Store) itemNameTaken(companyID, exceptID int64, name string) bool {
	for id, it := range s.items {
		if it.companyID == companyID && id != exceptID && sameName(it.v.Name, name) {
			return true
		}
	}
	return false
}

func (s *Store) CreateCategory(_ context.Context, companyID int64, name string) (domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name = strings.TrimSpace(name)
	if s.categoryNameTaken(companyID, 0, name) {
		return domain.Category{}, ErrDuplicate
	}
	c := domain.Category{ID: s.nextID(), Name: name, Items: []domain.Item{}}
	s.categories[c.ID] = scoped[domain.Category]{companyID, c}
	return c, nil
}

func (s *Store) UpdateCategory(_ context.Context, companyID, id int64, name string) (domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok || c.companyID != companyID {
		return domain.Category{}, ErrNotFound
	}
	name = strings.TrimSpace(name)
	if s.categoryNameTaken(companyID, id, name) {
		return domain.Category{}, ErrDuplicate
	}
	c.v.Name = name
	s.categories[id] = c
	return c.v, nil
}

// DeleteCategory removes the category and every item in it.
func (s *Store) DeleteCategory(_ context.Context, companyID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok || c.companyID != companyID {
		return ErrNotFound
	}
	for itemID, it := range s.items {
		if it.v.CategoryID == id {
			delete(s.items, itemID)
		}
	}
	delete(s.categories, id)
	return nil
}

func (s *Store) CreateItem(_ context.Context, companyID int64, req domain.CreateItemRequest) (domain.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.categories[req.CategoryID]; !ok || c.companyID != companyID {
		return domain.Item{}, ErrNotFound
	}
	name := strings.TrimSpace(req.Name)
	if s.itemNameTaken(companyID, 0, name) {
		return domain.Item{}, ErrDuplicate
	}
	it := domain.Item{
		ID:         s.nextID(),
		Name:       name,
		Quantity:   req.Quantity,
		Unit:       req.Unit,
		Price:      req.Price,
		CategoryID: req.CategoryID,
	}
	s.items[it.ID] = scoped[domain.Item]{companyID, it}
	return it, nil
}

func (s *Store) GetItem(_ context.Context, companyID, id int64) (domain.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.items[id]
	if !ok || it.companyID != companyID {
		return domain.Item{}, ErrNotFound
	}
	return it.v, nil
}

// UpdateItem replaces name, unit, price, category and quantity.
func (s *Store) UpdateItem(_ context.Context, companyID int64, item domain.Item) (domain.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[item.ID]
	if !ok || it.companyID != companyID {
		return domain.Item{}, ErrNotFound
	}
	if c, ok := s.categories[item.CategoryID]; !ok || c.companyID != companyID {
		return domain.Item{}, ErrNotFound
	}
	item.Name = strings.TrimSpace(item.Name)
	if s.itemNameTaken(companyID, item.ID, item.Name) {
		return domain.Item{}, ErrDuplicate
	}
	if item.Quantity < 0 {
		return domain.Item{}, ErrNegativeStock
	}
	it.v = item
	s.items[item.ID] = it
	return item, nil
}

func (s *Store) DeleteItem(_ context.Context, companyID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[id]
	if !ok || it.companyID != companyID {
		return ErrNotFound
	}
	delete(s.items, id)
	return nil
}

// AdjustItemQuantity adds a signed delta to the item's quantity. The change is
// refused with ErrNegativeStock if the result would be below zero.
func (s *Store) AdjustItemQuantity(_ context.Context, companyID, id int64, delta int) (domain.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[id]
	if !ok || it.companyID != companyID {
		return domain.Item{}, ErrNotFound
	}
	if it.v.Quantity+delta < 0 {
		return domain.Item{}, ErrNegativeStock
	}
	it.v.Quantity += delta
	s.items[id] = it
	return it.v, nil
}

func (s *Store) ListLabels(_ context.Context, companyID int64) ([]domain.Label, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Label{}
	for _, l := range s.labels {
		if l.companyID == companyID {
			out = append(out, l.v)
		}
	}
	slices.SortFunc(out, func(a, b domain.Label) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (s *Store) CreateLabel(_ context.Context, companyID int64, name string) (domain.Label, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name = strings.TrimSpace(name)
	for _, l := range s.labels {
		if l.companyID == companyID && sameName(l.v.Name, name) {
			return domain.Label{}, ErrDuplicate
		}
	}
	now := s.now()
	l := domain.Label{ID: s.nextID(), Name: name, CreatedAt: &now, UpdatedAt: &now}
	s.labels[l.ID] = scoped[domain.Label]{companyID, l}
	return l, nil
}

func (s *Store) UpdateLabel(_ context.Context, companyID, id int64, name string) (domain.Label, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.labels[id]
	if !ok || l.companyID != companyID {
		return domain.Label{}, ErrNotFound
	}
	name = strings.TrimSpace(name)
	for otherID, other := range s.labels {
		if otherID != id && other.companyID == companyID && sameName(other.v.Name, name) {
			return domain.Label{}, ErrDuplicate
		}
	}
	now := s.now()
	l.v.Name = name
	l.v.UpdatedAt = &now
	s.labels[id] = l
	return l.v, nil
}

func (s *Store) DeleteLabel(_ context.Context, companyID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.labels[id]
	if !ok || l.companyID != companyID {
		return ErrNotFound
	}
	delete(s.labels, id)
	return nil
}

func (s *Store) ListFees(_ context.Context, companyID int64) ([]domain.Fee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Fee{}
	for _, f := range s.fees {
		if f.companyID == companyID {
			out = append(out, f.v)
		}
	}
	slices.SortFunc(out, func(a, b domain.Fee) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (s *Store) CreateFee(_ context.Context, companyID int64, f domain.Fee) (domain.Fee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f.ID = s.nextID()
	f.Name = strings.TrimSpace(f.Name)
	s.fees[f.ID] = scoped[domain.Fee]{companyID, f}
	return f, nil
}

func (s *Store) UpdateFee(_ context.Context, companyID int64, f domain.Fee) (domain.Fee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.fees[f.ID]
	if !ok || existing.companyID != companyID {
		return domain.Fee{}, ErrNotFound
	}
	f.Name = strings.TrimSpace(f.Name)
	existing.v = f
	s.fees[f.ID] = existing
	return f, nil
}

func (s *Store) DeleteFee(_ context.Context, companyID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.fees[id]
	if !ok || f.companyID != companyID {
		return ErrNotFound
	}
	delete(s.fees, id)
	return nil
}
