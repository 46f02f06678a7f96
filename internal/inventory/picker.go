package inventory

import (
	"github.com/kiwari-pos/stockroom/internal/apperr"
	"github.com/kiwari-pos/stockroom/internal/domain"
)

// Picker walks the category -> item -> quantity selection used when adding
// stock to an order.
type Picker struct {
	catalog       *Catalog
	exclude       map[int64]bool
	allowExisting bool

	categoryID int64
	itemID     int64
	quantity   int
}

// NewPicker builds a picker over catalog. Items whose ids are in exclude are
// hidden unless allowExisting is set.
func NewPicker(catalog *Catalog, exclude []int64, allowExisting bool) *Picker {
	ex := make(map[int64]bool, len(exclude))
	for _, id := range exclude {
		ex[id] = true
	}
	return &Picker{catalog: catalog, exclude: ex, allowExisting: allowExisting, quantity: 1}
}

func (p *Picker) AllowsExisting() bool { return p.allowExisting }

// SelectCategory picks a category and clears the item and quantity.
func (p *Picker) SelectCategory(id int64) error {
	if _, ok := p.catalog.Category(id); !ok {
		return apperr.Invalid("category", "unknown category")
	}
	p.categoryID = id
	p.itemID = 0
	p.quantity = 1
	return nil
}

// Items lists the selectable items of the chosen category. Items with no
// stock left are hidden.
func (p *Picker) Items() []domain.Item {
	cat, ok := p.catalog.Category(p.categoryID)
	if !ok {
		return nil
	}
	out := make([]domain.Item, 0, len(cat.Items))
	for _, it := range cat.Items {
		if it.Quantity <= 0 || (p.exclude[it.ID] && !p.allowExisting) {
			continue
		}
		out = append(out, it)
	}
	return out
}

// SelectItem picks an item of the chosen category and resets the quantity.
func (p *Picker) SelectItem(id int64) error {
	for _, it := range p.Items() {
		if it.ID == id {
			p.itemID = id
			p.quantity = 1
			return nil
		}
	}
	if p.exclude[id] && !p.allowExisting {
		return apperr.Invalid("item", "item is already on the order")
	}
	if it, ok := p.catalog.Item(id); ok && it.Quantity <= 0 {
		return apperr.Invalid("item", "item is out of stock")
	}
	return apperr.Invalid("item", "item is not in the selected category")
}

// Item returns the selected item.
func (p *Picker) Item() (domain.Item, bool) {
	if p.itemID == 0 {
		return domain.Item{}, false
	}
	return p.catalog.Item(p.itemID)
}

func (p *Picker) Quantity() int { return p.quantity }

// SetQuantity sets the stepper value clamped to [1, available].
func (p *Picker) SetQuantity(q int) {
	p.quantity = p.clamp(q)
}

func (p *Picker) Increment() { p.SetQuantity(p.quantity + 1) }
func (p *Picker) Decrement() { p.SetQuantity(p.quantity - 1) }

func (p *Picker) clamp(q int) int {
	limit := 1
	if it, ok := p.Item(); ok && it.Quantity > 1 {
		limit = it.Quantity
	}
	return min(max(q, 1), limit)
}

// Selection returns the chosen item and quantity once both steps are done.
func (p *Picker) Selection() (domain.Item, int, bool) {
	it, ok := p.Item()
	if !ok || p.categoryID == 0 {
		return domain.Item{}, 0, false
	}
	return it, p.quantity, true
}

// Reset clears the selection.
func (p *Picker) Reset() {
	p.categoryID = 0
	p.itemID = 0
	p.quantity = 1
}
