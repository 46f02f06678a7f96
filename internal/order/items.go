package order

import (
	"context"

	"github.com/kiwari-pos/stockroom/internal/apperr"
	"github.com/kiwari-pos/stockroom/internal/domain"
	"github.com/kiwari-pos/stockroom/internal/enum"
	"github.com/kiwari-pos/stockroom/internal/inventory"
)

var errNotOpen = apperr.Disabled("items can only change while the order is open")

// CanEditItems reports whether line items may be added or removed.
func (m *Manager) CanEditItems() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.order.Status == enum.OrderStatusOpen
}

// AddItem adds qty of item to the order. The available quantity is checked
// against the caller's copy of the item before anything is sent, ahead of the
// duplicate check. An item already on the order is refused unless
// allowExisting is set.
func (m *Manager) AddItem(ctx context.Context, item domain.Item, qty int, allowExisting bool) error {
	m.mu.Lock()
	o := m.order
	m.mu.Unlock()

	if o.Status != enum.OrderStatusOpen {
		return errNotOpen
	}
	if qty < 1 {
		return apperr.Invalid("quantity", "quantity must be at least 1")
	}
	if qty > item.Quantity {
		return apperr.ExceedsAvailable(qty, item.Quantity)
	}
	if !allowExisting && o.HasItem(item.ID) {
		return apperr.Invalid("item", "item is already on the order")
	}

	updated, err := m.api.AddOrderItem(ctx, o.UUID, domain.AddOrderItemRequest{ItemID: item.ID, Quantity: qty})
	if err != nil {
		m.logger.Error("failed to add item", "order", o.UUID, "item_id", item.ID, "error", err)
		return err
	}

	m.mu.Lock()
	m.apply(*updated)
	if m.panels.IsOpen(PanelAddItem) || m.panels.IsOpen(PanelEditItems) {
		m.panels.Close()
	}
	m.mu.Unlock()
	return nil
}

// OpenPicker opens the add-item or edit-items panel and returns a picker over
// catalog. Items already on the order are hidden from the add-item picker.
func (m *Manager) OpenPicker(kind Panel, catalog *inventory.Catalog) (*inventory.Picker, error) {
	if kind != PanelAddItem && kind != PanelEditItems {
		return nil, apperr.Invalid("panel", "not an item picker")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.order.Status != enum.OrderStatusOpen {
		return nil, errNotOpen
	}
	ids := make([]int64, len(m.order.Items))
	for i, li := range m.order.Items {
		ids[i] = li.ID
	}
	m.panels.Open(kind)
	return inventory.NewPicker(catalog, ids, kind == PanelEditItems), nil
}

// SubmitPicker adds the picker's selection to the order.
func (m *Manager) SubmitPicker(ctx context.Context, p *inventory.Picker) error {
	item, qty, ok := p.Selection()
	if !ok {
		return apperr.Invalid("item", "select a category and an item")
	}
	if err := m.AddItem(ctx, item, qty, p.AllowsExisting()); err != nil {
		return err
	}
	p.Reset()
	return nil
}

// ClosePanel closes whatever overlay is open.
func (m *Manager) ClosePanel() {
	m.mu.Lock()
	m.panels.Close()
	m.removing = nil
	m.mu.Unlock()
}

// RequestRemoveItem opens the confirmation for removing a line item.
func (m *Manager) RequestRemoveItem(orderItemID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.order.Status != enum.OrderStatusOpen {
		return errNotOpen
	}
	for _, li := range m.order.Items {
		if li.OrderItemID == orderItemID {
			m.removing = &li
			m.panels.Open(PanelDeleteItem)
			return nil
		}
	}
	return apperr.Invalid("order_item_id", "line item is not on the order")
}

// PendingRemoval returns the line item awaiting removal confirmation.
func (m *Manager) PendingRemoval() (domain.LineItem, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.removing == nil {
		return domain.LineItem{}, false
	}
	return *m.removing, true
}

func (m *Manager) CancelRemoveItem() {
	m.ClosePanel()
}

// ConfirmRemoveItem removes the pending line item. The confirmation closes
// whether or not the server accepts the removal.
func (m *Manager) ConfirmRemoveItem(ctx context.Context) error {
	m.mu.Lock()
	if !m.panels.IsOpen(PanelDeleteItem) || m.removing == nil {
		m.mu.Unlock()
		return apperr.Disabled("no line item selected for removal")
	}
	if m.order.Status != enum.OrderStatusOpen {
		m.mu.Unlock()
		return errNotOpen
	}
	id := m.order.UUID
	li := *m.removing
	m.mu.Unlock()

	updated, err := m.api.DeleteOrderItem(ctx, id, li.OrderItemID)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.panels.Close()
	m.removing = nil
	if err != nil {
		m.logger.Error("failed to remove item", "order", id, "order_item_id", li.OrderItemID, "error", err)
		return err
	}
	m.apply(*updated)
	return nil
}
