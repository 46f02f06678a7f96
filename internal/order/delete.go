package order

import (
	"context"

	"github.com/kiwari-pos/stockroom/internal/apperr"
	"github.com/kiwari-pos/stockroom/internal/enum"
)

// DeleteResult reports what a delete did besides removing the order.
type DeleteResult struct {
	// Restored lists the inventory item ids whose stock was given back.
	Restored []int64
	// Partial is set when some restorations failed. The delete still ran.
	Partial *apperr.PartialFailure
	// NavigateBack is true once the order is gone.
	NavigateBack bool
}

// CanDelete reports whether the principal may delete the order: admins always,
// the creator only while the order is not completed.
func (m *Manager) CanDelete() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.canDelete()
}

func (m *Manager) canDelete() bool {
	if m.isAdmin() {
		return true
	}
	return m.order.UserID == m.principal.ID && m.order.Status != enum.OrderStatusCompleted
}

// RequestDelete opens the delete confirmation with restoration preselected.
func (m *Manager) RequestDelete() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.canDelete() {
		return apperr.Disabled("not allowed to delete this order")
	}
	m.restore = true
	m.panels.Open(PanelDeleteOrder)
	return nil
}

// SetRestoreInventory sets the restore checkbox of the delete confirmation.
func (m *Manager) SetRestoreInventory(on bool) {
	m.mu.Lock()
	m.restore = on
	m.mu.Unlock()
}

func (m *Manager) RestoreInventory() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.restore
}

func (m *Manager) CancelDelete() {
	m.mu.Lock()
	m.panels.Close()
	m.restore = false
	m.mu.Unlock()
}

// ConfirmDelete runs Delete with the confirmation's restore choice.
func (m *Manager) ConfirmDelete(ctx context.Context) (DeleteResult, error) {
	m.mu.Lock()
	if !m.panels.IsOpen(PanelDeleteOrder) {
		m.mu.Unlock()
		return DeleteResult{}, apperr.Disabled("delete was not requested")
	}
	restore := m.restore
	m.mu.Unlock()
	return m.Delete(ctx, restore)
}

// Delete removes the order. With restore set and the order still open or
// pending, each line item's quantity is first added back to stock, one call
// per line. Failed restorations are collected in the result and never stop
// the delete, which is issued exactly once. Stock restored before a failed
// delete is not taken back.
func (m *Manager) Delete(ctx context.Context, restore bool) (DeleteResult, error) {
	m.mu.Lock()
	if !m.canDelete() {
		m.mu.Unlock()
		return DeleteResult{}, apperr.Disabled("not allowed to delete this order")
	}
	o := m.order
	m.mu.Unlock()

	var res DeleteResult
	if restore && (o.Status == enum.OrderStatusOpen || o.Status == enum.OrderStatusPending) {
		res.Restored, res.Partial = RestoreStock(ctx, m.api, o.Items, m.logger)
		if res.Partial != nil {
			m.logger.Warn("inventory partially restored", "order", o.UUID, "failed", len(res.Partial.Failures), "restored", len(res.Restored))
		}
	}

	err := m.api.DeleteOrder(ctx, o.UUID)

	m.mu.Lock()
	m.panels.Close()
	m.restore = false
	m.mu.Unlock()

	if err != nil {
		m.logger.Error("failed to delete order", "order", o.UUID, "error", err)
		return res, err
	}
	res.NavigateBack = true
	return res, nil
}
