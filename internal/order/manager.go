// Package order drives the lifecycle of a single order on the client: the
// delivered toggle, receipt reconciliation, line-item edits and deletion with
// optional stock restoration.
package order

import (
	"context"
	"log/slog"
	"sync"

	"github.com/kiwari-pos/stockroom/internal/apperr"
	"github.com/kiwari-pos/stockroom/internal/domain"
	"github.com/kiwari-pos/stockroom/internal/enum"
	"github.com/kiwari-pos/stockroom/internal/optimistic"
	"github.com/kiwari-pos/stockroom/internal/panel"
)

// API is the slice of the REST client the manager calls.
// Satisfied by *api.Client; narrow interface for testability.
type API interface {
	StockAdjuster
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	UpdateOrder(ctx context.Context, id string, req domain.UpdateOrderRequest) (*domain.Order, error)
	DeleteOrder(ctx context.Context, id string) error
	AddOrderItem(ctx context.Context, id string, req domain.AddOrderItemRequest) (*domain.Order, error)
	DeleteOrderItem(ctx context.Context, id string, orderItemID int64) (*domain.Order, error)
}

// Panel names the overlay open on the order detail screen.
type Panel int

const (
	PanelNone Panel = iota
	PanelDeleteOrder
	PanelDeleteItem
	PanelAddItem
	PanelEditItems
)

// Manager holds the local copy of one order and the signed-in principal.
// Remote calls run without the lock held so state stays observable while a
// request is in flight.
type Manager struct {
	api       API
	principal domain.User
	logger    *slog.Logger

	mu        sync.Mutex
	order     domain.Order
	delivered bool
	receipt   ReceiptField
	panels    panel.Region[Panel]
	removing  *domain.LineItem
	restore   bool
}

func NewManager(api API, principal domain.User, logger *slog.Logger) *Manager {
	return &Manager{
		api:       api,
		principal: principal,
		logger:    logger.With("component", "order"),
	}
}

// Load fetches the order and resets all local state to the server's copy.
func (m *Manager) Load(ctx context.Context, id string) error {
	o, err := m.api.GetOrder(ctx, id)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.order = *o
	m.delivered = IsDelivered(*o)
	m.receipt = ReceiptField{Editable: m.isAdmin()}
	m.receipt.reset(o.Receipt())
	m.panels.Close()
	m.removing = nil
	return nil
}

// apply takes a server response as the local order. Caller holds mu.
func (m *Manager) apply(o domain.Order) {
	m.order = o
	m.delivered = IsDelivered(o)
	m.receipt.confirm(o.Receipt())
}

func (m *Manager) isAdmin() bool {
	return m.principal.Role == enum.UserRoleAdmin
}

// Order returns a copy of the local order.
func (m *Manager) Order() domain.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.order
}

// Delivered is the position of the delivered toggle, including an
// optimistic flip awaiting confirmation.
func (m *Manager) Delivered() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.delivered
}

func (m *Manager) DeliveryDisabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return DeliveryDisabled(m.order)
}

func (m *Manager) ActivePanel() Panel {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.panels.Active()
}

// SetDelivered moves the order between open and pending. The toggle flips
// at once and flips back if the server rejects the change.
func (m *Manager) SetDelivered(ctx context.Context, on bool) error {
	m.mu.Lock()
	o := m.order
	if DeliveryDisabled(o) {
		m.mu.Unlock()
		return apperr.Disabled("order has a receipt or is completed")
	}
	target := enum.OrderStatusOpen
	if on {
		target = enum.OrderStatusPending
	}
	if err := ValidateTransition(o.Status, target, o.Receipt()); err != nil {
		m.mu.Unlock()
		return err
	}
	prev := m.delivered
	m.mu.Unlock()

	var updated *domain.Order
	err := optimistic.Mutate(ctx,
		func() { m.setDelivered(on) },
		func() { m.setDelivered(prev) },
		func(ctx context.Context) error {
			var err error
			updated, err = m.api.UpdateOrder(ctx, o.UUID, domain.UpdateOrderRequest{Status: &target})
			return err
		},
	)
	if err != nil {
		m.logger.Error("failed to update delivery status", "order", o.UUID, "status", target, "error", err)
		return err
	}

	m.mu.Lock()
	m.apply(*updated)
	m.mu.Unlock()
	return nil
}

func (m *Manager) setDelivered(v bool) {
	m.mu.Lock()
	m.delivered = v
	m.mu.Unlock()
}

// Receipt returns the receipt field state.
func (m *Manager) Receipt() ReceiptField {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.receipt
}

// EditReceipt replaces the receipt input. Only admins may edit it.
func (m *Manager) EditReceipt(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.receipt.Editable {
		return apperr.Disabled("only admins can edit the receipt")
	}
	m.receipt.Input = text
	return nil
}

// SaveReceipt sends the receipt input. On failure the edit stays dirty so
// the operator can retry.
func (m *Manager) SaveReceipt(ctx context.Context) error {
	m.mu.Lock()
	if !m.receipt.Editable {
		m.mu.Unlock()
		return apperr.Disabled("only admins can edit the receipt")
	}
	if !m.receipt.SaveEnabled() {
		m.mu.Unlock()
		return apperr.Disabled("receipt is unchanged or a save is in flight")
	}
	value := m.receipt.Input
	id := m.order.UUID
	m.receipt.Saving = true
	m.mu.Unlock()

	updated, err := m.api.UpdateOrder(ctx, id, domain.UpdateOrderRequest{ReceiptID: &value})

	m.mu.Lock()
	defer m.mu.Unlock()
	m.receipt.Saving = false
	if err != nil {
		m.logger.Error("failed to save receipt", "order", id, "error", err)
		return err
	}
	// Input is only replaced if it did not change while the request was in flight.
	m.order = *updated
	m.delivered = IsDelivered(*updated)
	if m.receipt.Input == value {
		m.receipt.Input = updated.Receipt()
	}
	m.receipt.Confirmed = updated.Receipt()
	return nil
}
