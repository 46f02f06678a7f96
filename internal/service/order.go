package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kiwari-pos/stockroom/internal/domain"
	"github.com/kiwari-pos/stockroom/internal/enum"
	"github.com/kiwari-pos/stockroom/internal/fees"
	"github.com/kiwari-pos/stockroom/internal/store"
)

// Errors returned by the order service.
var (
	ErrEmptyItems        = errors.New("items are required")
	ErrInvalidQuantity   = errors.New("quantity must be > 0")
	ErrItemNotFound      = errors.New("item not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrOrderNotFound     = errors.New("order not found")
	ErrLineNotFound      = errors.New("order item not found")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrOrderNotOpen      = errors.New("order is not open")
	ErrForbidden         = errors.New("not allowed")
)

// allowedTransitions covers client-requested status changes only. Completed
// is derived from the receipt and never requested directly.
var allowedTransitions = map[string][]string{
	enum.OrderStatusOpen:    {enum.OrderStatusPending},
	enum.OrderStatusPending: {enum.OrderStatusOpen},
}

// OrderStore defines the storage methods the order service needs.
// Satisfied by *store.Store.
type OrderStore interface {
	AdjustItemQuantity(ctx context.Context, companyID, id int64, delta int) (domain.Item, error)
	ListFees(ctx context.Context, companyID int64) ([]domain.Fee, error)
	NextOrderItemID() int64
	InsertOrder(ctx context.Context, companyID int64, o domain.Order) (domain.Order, error)
	GetOrder(ctx context.Context, companyID int64, id string) (domain.Order, error)
	UpdateOrder(ctx context.Context, companyID int64, o domain.Order) (domain.Order, error)
	DeleteOrder(ctx context.Context, companyID int64, id string) error
}

// Actor is the authenticated caller.
type Actor struct {
	UserID    int64
	CompanyID int64
	Role      string
}

func (a Actor) IsAdmin() bool { return a.Role == enum.UserRoleAdmin }

// OrderService handles order business logic. Order mutations are serialised;
// stock changes go through the store's atomic quantity delta and are given
// back if a later step fails.
type OrderService struct {
	store OrderStore
	mu    sync.Mutex
}

func NewOrderService(store OrderStore) *OrderService {
	return &OrderService{store: store}
}

// stockMove is an applied quantity change, kept so it can be undone.
type stockMove struct {
	itemID int64
	delta  int
}

// moves accumulates stock changes for one operation.
type moves struct {
	s       *OrderService
	company int64
	applied []stockMove
}

// take removes qty units of an item from stock.
func (m *moves) take(ctx context.Context, itemID int64, qty int) (domain.Item, error) {
	return m.apply(ctx, itemID, -qty)
}

// give returns qty units of an item to stock.
func (m *moves) give(ctx context.Context, itemID int64, qty int) (domain.Item, error) {
	return m.apply(ctx, itemID, qty)
}

func (m *moves) apply(ctx context.Context, itemID int64, delta int) (domain.Item, error) {
	item, err := m.s.store.AdjustItemQuantity(ctx, m.company, itemID, delta)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return domain.Item{}, fmt.Errorf("%w: %d", ErrItemNotFound, itemID)
	case errors.Is(err, store.ErrNegativeStock):
		return domain.Item{}, fmt.Errorf("%w for item %d", ErrInsufficientStock, itemID)
	case err != nil:
		return domain.Item{}, fmt.Errorf("adjust item %d: %w", itemID, err)
	}
	m.applied = append(m.applied, stockMove{itemID: itemID, delta: delta})
	return item, nil
}

// undo reverses every applied move, newest first.
func (m *moves) undo(ctx context.Context) {
	for i := len(m.applied) - 1; i >= 0; i-- {
		mv := m.applied[i]
		if _, err := m.s.store.AdjustItemQuantity(ctx, m.company, mv.itemID, -mv.delta); err != nil {
			log.Printf("ERROR: undo stock move item=%d delta=%d: %v", mv.itemID, mv.delta, err)
		}
	}
	m.applied = nil
}

func (s *OrderService) newMoves(companyID int64) *moves {
	return &moves{s: s, company: companyID}
}

// CreateOrder takes every requested quantity out of stock and stores a new
// open order. Nothing is taken if any line cannot be satisfied.
func (s *OrderService) CreateOrder(ctx context.Context, actor Actor, req domain.CreateOrderRequest) (domain.Order, error) {
	if len(req.Items) == 0 {
		return domain.Order{}, ErrEmptyItems
	}
	for _, it := range req.Items {
		if it.Quantity <= 0 {
			return domain.Order{}, ErrInvalidQuantity
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	mv := s.newMoves(actor.CompanyID)
	o := domain.Order{
		UUID:   uuid.NewString(),
		UserID: actor.UserID,
		Status: enum.OrderStatusOpen,
	}
	for _, it := range req.Items {
		item, err := mv.take(ctx, it.ID, it.Quantity)
		if err != nil {
			mv.undo(ctx)
			return domain.Order{}, err
		}
		o.Items = addLine(o.Items, item, it.Quantity, s.store.NextOrderItemID)
	}

	if err := s.price(ctx, actor.CompanyID, &o); err != nil {
		mv.undo(ctx)
		return domain.Order{}, err
	}
	created, err := s.store.InsertOrder(ctx, actor.CompanyID, o)
	if err != nil {
		mv.undo(ctx)
		return domain.Order{}, fmt.Errorf("insert order: %w", err)
	}
	return created, nil
}

// addLine merges qty into an existing line for the item or appends a new one.
func addLine(lines []domain.LineItem, item domain.Item, qty int, nextID func() int64) []domain.LineItem {
	for i := range lines {
		if lines[i].ID == item.ID {
			lines[i].Quantity += qty
			return lines
		}
	}
	return append(lines, domain.LineItem{
		ID:          item.ID,
		OrderItemID: nextID(),
		Name:        item.Name,
		Quantity:    qty,
		Unit:        item.Unit,
		Price:       item.Price,
		CategoryID:  item.CategoryID,
	})
}

// price recomputes subtotal, applied fees and total from the lines and the
// company's current fee table.
func (s *OrderService) price(ctx context.Context, companyID int64, o *domain.Order) error {
	feeTable, err := s.store.ListFees(ctx, companyID)
	if err != nil {
		return fmt.Errorf("list fees: %w", err)
	}
	subtotal := decimal.Zero
	for _, li := range o.Items {
		if li.Price != nil {
			subtotal = subtotal.Add(li.Price.Mul(decimal.NewFromInt(int64(li.Quantity))))
		}
	}
	p := fees.PreviewFees(feeTable, subtotal)
	o.Subtotal = p.Subtotal
	o.Fees = p.Applied
	if o.Fees == nil {
		o.Fees = []domain.AppliedFee{}
	}
	o.Total = p.Total
	return nil
}

func (s *OrderService) load(ctx context.Context, companyID int64, id string) (domain.Order, error) {
	o, err := s.store.GetOrder(ctx, companyID, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Order{}, ErrOrderNotFound
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

// validateStatusTransition checks a client-requested status change.
func validateStatusTransition(o domain.Order, next string) error {
	if !enum.IsOrderStatus(next) {
		return ErrInvalidStatus
	}
	if next == o.Status {
		return nil
	}
	if o.Receipt() != "" {
		return fmt.Errorf("%w: order has a receipt", ErrInvalidTransition)
	}
	if slices.Contains(allowedTransitions[o.Status], next) {
		return nil
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, next)
}

// UpdateOrder applies a PATCH. Line quantities are applied first, then either
// the receipt (admin only; non-empty derives completed, empty reopens a
// completed order) or a requested status change. A status sent together
// with a receipt is ignored.
func (s *OrderService) UpdateOrder(ctx context.Context, actor Actor, id string, req domain.UpdateOrderRequest) (domain.Order, error) {
	if req.ReceiptID != nil && !actor.IsAdmin() {
		return domain.Order{}, fmt.Errorf("%w: only admins may set the receipt", ErrForbidden)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := s.load(ctx, actor.CompanyID, id)
	if err != nil {
		return domain.Order{}, err
	}

	mv := s.newMoves(actor.CompanyID)
	if req.Items != nil {
		if err := s.setQuantities(ctx, mv, &o, req.Items); err != nil {
			mv.undo(ctx)
			return domain.Order{}, err
		}
	}

	switch {
	case req.ReceiptID != nil:
		if r := strings.TrimSpace(*req.ReceiptID); r != "" {
			o.ReceiptID = &r
			o.Status = enum.OrderStatusCompleted
		} else {
			o.ReceiptID = nil
			if o.Status == enum.OrderStatusCompleted {
				o.Status = enum.OrderStatusOpen
			}
		}
	case req.Status != nil:
		if err := validateStatusTransition(o, *req.Status); err != nil {
			mv.undo(ctx)
			return domain.Order{}, err
		}
		o.Status = *req.Status
	}
	return s.save(ctx, mv, actor.CompanyID, o)
}

// setQuantities moves stock for every changed line. A quantity of zero
// removes the line.
func (s *OrderService) setQuantities(ctx context.Context, mv *moves, o *domain.Order, lines []domain.LineItem) error {
	if o.Status != enum.OrderStatusOpen {
		return ErrOrderNotOpen
	}
	for _, want := range lines {
		if want.Quantity < 0 {
			return ErrInvalidQuantity
		}
		i := slices.IndexFunc(o.Items, func(li domain.LineItem) bool { return li.OrderItemID == want.OrderItemID })
		if i < 0 {
			return fmt.Errorf("%w: %d", ErrLineNotFound, want.OrderItemID)
		}
		cur := o.Items[i]
		var err error
		switch delta := want.Quantity - cur.Quantity; {
		case delta > 0:
			_, err = mv.take(ctx, cur.ID, delta)
		case delta < 0:
			_, err = mv.give(ctx, cur.ID, -delta)
		}
		if err != nil {
			return err
		}
		o.Items[i].Quantity = want.Quantity
	}
	o.Items = slices.DeleteFunc(o.Items, func(li domain.LineItem) bool { return li.Quantity == 0 })
	return nil
}

// save reprices and stores o, undoing mv if that fails.
func (s *OrderService) save(ctx context.Context, mv *moves, companyID int64, o domain.Order) (domain.Order, error) {
	if err := s.price(ctx, companyID, &o); err != nil {
		mv.undo(ctx)
		return domain.Order{}, err
	}
	updated, err := s.store.UpdateOrder(ctx, companyID, o)
	if err != nil {
		mv.undo(ctx)
		if errors.Is(err, store.ErrNotFound) {
			return domain.Order{}, ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("update order: %w", err)
	}
	return updated, nil
}

// AddItem takes qty of an inventory item out of stock and adds it to an
// open order, merging with an existing line for the same item.
func (s *OrderService) AddItem(ctx context.Context, actor Actor, id string, req domain.AddOrderItemRequest) (domain.Order, error) {
	if req.Quantity <= 0 {
		return domain.Order{}, ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := s.load(ctx, actor.CompanyID, id)
	if err != nil {
		return domain.Order{}, err
	}
	if o.Status != enum.OrderStatusOpen {
		return domain.Order{}, ErrOrderNotOpen
	}

	mv := s.newMoves(actor.CompanyID)
	item, err := mv.take(ctx, req.ItemID, req.Quantity)
	if err != nil {
		return domain.Order{}, err
	}
	o.Items = addLine(o.Items, item, req.Quantity, s.store.NextOrderItemID)
	return s.save(ctx, mv, actor.CompanyID, o)
}

// RemoveItem drops a line from an open order and returns its quantity to stock.
func (s *OrderService) RemoveItem(ctx context.Context, actor Actor, id string, orderItemID int64) (domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := s.load(ctx, actor.CompanyID, id)
	if err != nil {
		return domain.Order{}, err
	}
	if o.Status != enum.OrderStatusOpen {
		return domain.Order{}, ErrOrderNotOpen
	}
	i := slices.IndexFunc(o.Items, func(li domain.LineItem) bool { return li.OrderItemID == orderItemID })
	if i < 0 {
		return domain.Order{}, ErrLineNotFound
	}

	mv := s.newMoves(actor.CompanyID)
	line := o.Items[i]
	if _, err := mv.give(ctx, line.ID, line.Quantity); err != nil {
		// The inventory item may be gone; the line still leaves the order.
		if !errors.Is(err, ErrItemNotFound) {
			return domain.Order{}, err
		}
		log.Printf("WARN: order %s line %d refers to deleted item %d", id, orderItemID, line.ID)
	}
	o.Items = slices.Delete(o.Items, i, i+1)
	return s.save(ctx, mv, actor.CompanyID, o)
}

// CanDelete reports whether actor may delete o: admins always, the creator
// while the order is not completed.
func CanDelete(actor Actor, o domain.Order) bool {
	if actor.IsAdmin() {
		return true
	}
	return actor.UserID == o.UserID && o.Status != enum.OrderStatusCompleted
}

// DeleteOrder removes the order. Stock is not touched; callers that want it
// back adjust quantities first.
func (s *OrderService) DeleteOrder(ctx context.Context, actor Actor, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := s.load(ctx, actor.CompanyID, id)
	if err != nil {
		return err
	}
	if !CanDelete(actor, o) {
		return fmt.Errorf("%w: cannot delete this order", ErrForbidden)
	}
	if err := s.store.DeleteOrder(ctx, actor.CompanyID, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("delete order: %w", err)
	}
	return nil
}
