// Package history is the order history screen: a paginated, filtered order
// list that refetches whenever its cursor moves.
package history

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/kiwari-pos/stockroom/internal/cursor"
	"github.com/kiwari-pos/stockroom/internal/domain"
)

// Lister fetches one page of orders.
// Satisfied by *api.Client.
type Lister interface {
	ListOrders(ctx context.Context, q domain.OrderQuery) (*domain.PaginatedOrders, error)
}

type History struct {
	api    Lister
	logger *slog.Logger

	mu         sync.Mutex
	cursor     *cursor.Cursor
	orders     []domain.OrderListItem
	pagination domain.Pagination
}

func New(api Lister, logger *slog.Logger, now time.Time) *History {
	return &History{
		api:    api,
		logger: logger.With("component", "history"),
		cursor: cursor.New(now),
	}
}

// Refresh fetches the current window. A response for a window the cursor has
// since moved away from is dropped.
func (h *History) Refresh(ctx context.Context) error {
	h.mu.Lock()
	q := h.cursor.Query()
	h.mu.Unlock()

	res, err := h.api.ListOrders(ctx, q)
	if err != nil {
		h.logger.Error("failed to list orders", "page", q.Page, "status", q.Status, "error", err)
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cursor.Query() != q {
		h.logger.Debug("dropping stale order page", "page", q.Page)
		return nil
	}
	h.orders = res.Data
	h.pagination = res.Pagination
	h.cursor.Observe(res.Pagination)
	return nil
}

// move applies a cursor change and refetches if it took effect.
func (h *History) move(ctx context.Context, fn func(c *cursor.Cursor) (bool, error)) (bool, error) {
	h.mu.Lock()
	changed, err := fn(h.cursor)
	h.mu.Unlock()
	if err != nil || !changed {
		return false, err
	}
	return true, h.Refresh(ctx)
}

// NextPage is a no-op returning false when the server reported no next page.
func (h *History) NextPage(ctx context.Context) (bool, error) {
	return h.move(ctx, func(c *cursor.Cursor) (bool, error) { return c.Next(), nil })
}

// PreviousPage is a no-op returning false when the server reported no
// previous page.
func (h *History) PreviousPage(ctx context.Context) (bool, error) {
	return h.move(ctx, func(c *cursor.Cursor) (bool, error) { return c.Previous(), nil })
}

func (h *History) SetStatus(ctx context.Context, status string) (bool, error) {
	return h.move(ctx, func(c *cursor.Cursor) (bool, error) { return c.SetStatus(status) })
}

func (h *History) SetRange(ctx context.Context, start, end time.Time) (bool, error) {
	return h.move(ctx, func(c *cursor.Cursor) (bool, error) { return c.SetRange(start, end) })
}

func (h *History) Orders() []domain.OrderListItem {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.orders
}

func (h *History) Pagination() domain.Pagination {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pagination
}

func (h *History) CanNext() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cursor.HasNext()
}

func (h *History) CanPrevious() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cursor.HasPrevious()
}

func (h *History) Filter() cursor.Filter {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cursor.Filter()
}
