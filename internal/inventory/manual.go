package inventory

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/kiwari-pos/stockroom/internal/apperr"
	"github.com/kiwari-pos/stockroom/internal/domain"
	"github.com/kiwari-pos/stockroom/internal/enum"
)

// Entry is a manual stock movement typed by the operator. Items are matched
// by name. CategoryID and Price are only used when a buy creates a new item.
type Entry struct {
	Name       string
	Quantity   int
	CategoryID int64
	Price      *decimal.Decimal
}

func (en *Entry) normalize() error {
	en.Name = strings.TrimSpace(en.Name)
	if en.Name == "" {
		return apperr.Invalid("name", "item name is required")
	}
	if en.Quantity == 0 {
		en.Quantity = 1
	}
	if en.Quantity < 0 {
		return apperr.Invalid("quantity", "quantity must be at least 1")
	}
	return nil
}

// Buy records incoming stock. A known item gets a +quantity adjustment; an
// unknown one is created in the entry's category.
func (e *Editor) Buy(ctx context.Context, en Entry) (*domain.Item, error) {
	if err := en.normalize(); err != nil {
		return nil, err
	}
	cat := e.Catalog()
	if existing, ok := cat.FindItem(en.Name); ok {
		item, err := e.api.AdjustItemQuantity(ctx, existing.ID, en.Quantity)
		if err != nil {
			return nil, err
		}
		e.submitted(ctx, "buy")
		return item, nil
	}
	if _, ok := cat.Category(en.CategoryID); !ok {
		return nil, apperr.Invalid("category", "choose a category for the new item")
	}
	item, err := e.api.CreateItem(ctx, domain.CreateItemRequest{
		Name:       en.Name,
		Quantity:   en.Quantity,
		Unit:       enum.DefaultUnit,
		Price:      en.Price,
		CategoryID: en.CategoryID,
	})
	if err != nil {
		return nil, err
	}
	e.submitted(ctx, "buy")
	return item, nil
}

// Sell records outgoing stock. Selling the whole remaining quantity deletes
// the item and returns nil.
func (e *Editor) Sell(ctx context.Context, en Entry) (*domain.Item, error) {
	if err := en.normalize(); err != nil {
		return nil, err
	}
	existing, ok := e.Catalog().FindItem(en.Name)
	if !ok {
		return nil, apperr.Invalid("name", "no item with this name")
	}
	if en.Quantity > existing.Quantity {
		return nil, apperr.ExceedsAvailable(en.Quantity, existing.Quantity)
	}
	if en.Quantity == existing.Quantity {
		if err := e.api.DeleteItem(ctx, existing.ID); err != nil {
			return nil, err
		}
		e.submitted(ctx, "sell")
		return nil, nil
	}
	item, err := e.api.AdjustItemQuantity(ctx, existing.ID, -en.Quantity)
	if err != nil {
		return nil, err
	}
	e.submitted(ctx, "sell")
	return item, nil
}
