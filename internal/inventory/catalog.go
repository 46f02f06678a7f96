// Package inventory holds the client-side inventory state: catalog lookups,
// duplicate-name guards, the editor forms, manual stock entry and the item
// picker used when adding items to an order.
package inventory

import (
	"strings"

	"github.com/kiwari-pos/stockroom/internal/domain"
)

// Catalog is a read-only view over the categories fetched from the server.
type Catalog struct {
	categories []domain.Category
}

func NewCatalog(categories []domain.Category) *Catalog {
	return &Catalog{categories: categories}
}

func (c *Catalog) Categories() []domain.Category {
	return c.categories
}

// Category returns the category with the given id.
func (c *Catalog) Category(id int64) (domain.Category, bool) {
	for _, cat := range c.categories {
		if cat.ID == id {
			return cat, true
		}
	}
	return domain.Category{}, false
}

// Item returns the inventory item with the given id from any category.
func (c *Catalog) Item(id int64) (domain.Item, bool) {
	for _, cat := range c.categories {
		for _, it := range cat.Items {
			if it.ID == id {
				return it, true
			}
		}
	}
	return domain.Item{}, false
}

// FindItem looks an item up by name across all categories.
func (c *Catalog) FindItem(name string) (domain.Item, bool) {
	for _, cat := range c.categories {
		for _, it := range cat.Items {
			if sameName(it.Name, name) {
				return it, true
			}
		}
	}
	return domain.Item{}, false
}

// HasCategoryName reports whether another category (not exceptID) uses name.
func (c *Catalog) HasCategoryName(name string, exceptID int64) bool {
	for _, cat := range c.categories {
		if cat.ID != exceptID && sameName(cat.Name, name) {
			return true
		}
	}
	return false
}

// HasItemName reports whether another item (not exceptID) in any category
// uses name.
func (c *Catalog) HasItemName(name string, exceptID int64) bool {
	for _, cat := range c.categories {
		for _, it := range cat.Items {
			if it.ID != exceptID && sameName(it.Name, name) {
				return true
			}
		}
	}
	return false
}

// HasLabelName reports whether another label (not exceptID) uses name.
func HasLabelName(labels []domain.Label, name string, exceptID int64) bool {
	for _, l := range labels {
		if l.ID != exceptID && sameName(l.Name, name) {
			return true
		}
	}
	return false
}

func sameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
