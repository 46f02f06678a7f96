package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kiwari-pos/stockroom/internal/cursor"
	"github.com/kiwari-pos/stockroom/internal/domain"
	"github.com/kiwari-pos/stockroom/internal/enum"
	"github.com/kiwari-pos/stockroom/internal/service"
	"github.com/kiwari-pos/stockroom/internal/store"
)

// PageSize is the number of orders per listing page.
const PageSize = 10

// OrderServicer defines the service methods the order handler calls.
// Satisfied by *service.OrderService.
type OrderServicer interface {
	CreateOrder(ctx context.Context, actor service.Actor, req domain.CreateOrderRequest) (domain.Order, error)
	UpdateOrder(ctx context.Context, actor service.Actor, id string, req domain.UpdateOrderRequest) (domain.Order, error)
	AddItem(ctx context.Context, actor service.Actor, id string, req domain.AddOrderItemRequest) (domain.Order, error)
	RemoveItem(ctx context.Context, actor service.Actor, id string, orderItemID int64) (domain.Order, error)
	DeleteOrder(ctx context.Context, actor service.Actor, id string) error
}

// OrderReader defines the read-only store methods used by the order handler.
// Satisfied by *store.Store.
type OrderReader interface {
	GetOrder(ctx context.Context, companyID int64, id string) (domain.Order, error)
	ListOrders(ctx context.Context, companyID int64, f store.OrderFilter) ([]domain.OrderListItem, int, error)
}

// Broadcaster pushes order events to subscribed clients.
// Satisfied by *ws.Hub.
type Broadcaster interface {
	Broadcast(companyID int64, event domain.Event)
}

// OrderHandler handles order endpoints.
type OrderHandler struct {
	svc    OrderServicer
	reader OrderReader
	events Broadcaster
	loc    *time.Location
}

// NewOrderHandler creates an OrderHandler. Listing dates are read in loc;
// nil means time.Local.
func NewOrderHandler(svc OrderServicer, reader OrderReader, events Broadcaster, loc *time.Location) *OrderHandler {
	if loc == nil {
		loc = time.Local
	}
	return &OrderHandler{svc: svc, reader: reader, events: events, loc: loc}
}

// RegisterRoutes registers order endpoints, mounted at /orders.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/items", h.AddItem)
	r.Delete("/{id}/items/{orderItemID}", h.RemoveItem)
}

// List returns one page of orders filtered by status and an inclusive date range.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	page := 1
	if s := q.Get("page"); s != "" {
		p, err := strconv.Atoi(s)
		if err != nil || p < 1 {
			writeMessage(w, http.StatusBadRequest, "invalid page")
			return
		}
		page = p
	}

	f := store.OrderFilter{Limit: PageSize, Offset: (page - 1) * PageSize}
	if s := q.Get("status"); s != "" {
		if !enum.IsOrderStatus(s) {
			writeMessage(w, http.StatusBadRequest, "invalid status")
			return
		}
		f.Status = s
	}
	if s := q.Get("start_date"); s != "" {
		d, err := time.ParseInLocation(cursor.DateLayout, s, h.loc)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid start_date")
			return
		}
		f.Start = cursor.StartOfDay(d)
	}
	if s := q.Get("end_date"); s != "" {
		d, err := time.ParseInLocation(cursor.DateLayout, s, h.loc)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid end_date")
			return
		}
		f.End = cursor.EndOfDay(d)
	}
	if !f.Start.IsZero() && !f.End.IsZero() && f.Start.After(f.End) {
		writeMessage(w, http.StatusBadRequest, "start_date must not be after end_date")
		return
	}

	rows, total, err := h.reader.ListOrders(r.Context(), a.CompanyID, f)
	if err != nil {
		log.Printf("ERROR: list orders: %v", err)
		writeMessage(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, domain.PaginatedOrders{
		Data:       rows,
		Pagination: paginate(page, total),
	})
}

func paginate(page, total int) domain.Pagination {
	pages := (total + PageSize - 1) / PageSize
	return domain.Pagination{
		CurrentPage: page,
		TotalPages:  pages,
		TotalCount:  total,
		HasNext:     page < pages,
		HasPrevious: page > 1,
	}
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	o, err := h.reader.GetOrder(r.Context(), a.CompanyID, chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, "get order", err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	var req domain.CreateOrderRequest
	if !decodeBody(w, r, &req) {
		return
	}

	o, err := h.svc.CreateOrder(r.Context(), a, req)
	if err != nil {
		writeOrderError(w, "create order", err)
		return
	}
	h.notify(a.CompanyID, enum.EventOrderUpdated, o.UUID)
	writeJSON(w, http.StatusCreated, o)
}

func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	var req domain.UpdateOrderRequest
	if !decodeBody(w, r, &req) {
		return
	}

	o, err := h.svc.UpdateOrder(r.Context(), a, chi.URLParam(r, "id"), req)
	if err != nil {
		writeOrderError(w, "update order", err)
		return
	}
	h.notify(a.CompanyID, enum.EventOrderUpdated, o.UUID)
	writeJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.svc.DeleteOrder(r.Context(), a, id); err != nil {
		writeOrderError(w, "delete order", err)
		return
	}
	h.notify(a.CompanyID, enum.EventOrderDeleted, id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *OrderHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	var req domain.AddOrderItemRequest
	if !decodeBody(w, r, &req) {
		return
	}

	o, err := h.svc.AddItem(r.Context(), a, chi.URLParam(r, "id"), req)
	if err != nil {
		writeOrderError(w, "add order item", err)
		return
	}
	h.notify(a.CompanyID, enum.EventOrderUpdated, o.UUID)
	writeJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	lineID, ok := pathID(w, r, "orderItemID")
	if !ok {
		return
	}

	o, err := h.svc.RemoveItem(r.Context(), a, chi.URLParam(r, "id"), lineID)
	if err != nil {
		writeOrderError(w, "remove order item", err)
		return
	}
	h.notify(a.CompanyID, enum.EventOrderUpdated, o.UUID)
	writeJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) notify(companyID int64, kind, orderID string) {
	if h.events != nil {
		h.events.Broadcast(companyID, domain.Event{Type: kind, OrderID: orderID})
	}
}

// writeOrderError maps order service errors to statuses.
func writeOrderError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyItems),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrItemNotFound):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrLineNotFound):
		writeMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrForbidden):
		writeMessage(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrInsufficientStock),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrOrderNotOpen):
		writeMessage(w, http.StatusConflict, err.Error())
	default:
		log.Printf("ERROR: %s: %v", op, err)
		writeMessage(w, http.StatusInternalServerError, "internal server error")
	}
}
