package handler

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kiwari-pos/stockroom/internal/domain"
	"github.com/kiwari-pos/stockroom/internal/enum"
)

// InventoryStore defines the store methods needed by inventory handlers.
// Satisfied by *store.Store; narrow interface for testability.
type InventoryStore interface {
	ListInventory(ctx context.Context, companyID int64) ([]domain.Category, error)
	CreateCategory(ctx context.Context, companyID int64, name string) (domain.Category, error)
	UpdateCategory(ctx context.Context, companyID, id int64, name string) (domain.Category, error)
	DeleteCategory(ctx context.Context, companyID, id int64) error
	CreateItem(ctx context.Context, companyID int64, req domain.CreateItemRequest) (domain.Item, error)
	UpdateItem(ctx context.Context, companyID int64, item domain.Item) (domain.Item, error)
	DeleteItem(ctx context.Context, companyID, id int64) error
	AdjustItemQuantity(ctx context.Context, companyID, id int64, delta int) (domain.Item, error)
}

// InventoryHandler handles category and item endpoints.
type InventoryHandler struct {
	store InventoryStore
}

func NewInventoryHandler(store InventoryStore) *InventoryHandler {
	return &InventoryHandler{store: store}
}

func (h *InventoryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/inventory", h.List)

	r.Post("/categories", h.CreateCategory)
	r.Patch("/categories/{id}", h.UpdateCategory)
	r.Delete("/categories/{id}", h.DeleteCategory)

	r.Post("/items", h.CreateItem)
	r.Patch("/items/{id}", h.UpdateItem)
	r.Delete("/items/{id}", h.DeleteItem)
	r.Patch("/items/{id}/quantity", h.AdjustQuantity)
}

// List returns every category with its items.
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	cats, err := h.store.ListInventory(r.Context(), a.CompanyID)
	if err != nil {
		writeStoreError(w, "list inventory", err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

// CreateCategory creates a category and any items sent along with it.
func (h *InventoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	var req domain.CreateCategoryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeMessage(w, http.StatusBadRequest, "name is required")
		return
	}
	for _, it := range req.Items {
		if msg := validateItem(it.Name, it.Quantity); msg != "" {
			writeMessage(w, http.StatusBadRequest, msg)
			return
		}
	}

	cat, err := h.store.CreateCategory(r.Context(), a.CompanyID, req.Name)
	if err != nil {
		writeStoreError(w, "create category", err)
		return
	}
	for _, it := range req.Items {
		created, err := h.store.CreateItem(r.Context(), a.CompanyID, domain.CreateItemRequest{
			Name:       it.Name,
			Quantity:   it.Quantity,
			Unit:       unitOrDefault(it.Unit),
			Price:      it.Price,
			CategoryID: cat.ID,
		})
		if err != nil {
			log.Printf("ERROR: create item %q in new category %d: %v", it.Name, cat.ID, err)
			continue
		}
		cat.Items = append(cat.Items, created)
	}
	writeJSON(w, http.StatusCreated, cat)
}

func (h *InventoryHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req domain.Category
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeMessage(w, http.StatusBadRequest, "name is required")
		return
	}

	cat, err := h.store.UpdateCategory(r.Context(), a.CompanyID, id, req.Name)
	if err != nil {
		writeStoreError(w, "update category", err)
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

func (h *InventoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteCategory(r.Context(), a.CompanyID, id); err != nil {
		writeStoreError(w, "delete category", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func validateItem(name string, quantity int) string {
	if strings.TrimSpace(name) == "" {
		return "name is required"
	}
	if quantity < 0 {
		return "quantity must not be negative"
	}
	return ""
}

func unitOrDefault(unit string) string {
	if strings.TrimSpace(unit) == "" {
		return enum.DefaultUnit
	}
	return unit
}

func (h *InventoryHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	var req domain.CreateItemRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if msg := validateItem(req.Name, req.Quantity); msg != "" {
		writeMessage(w, http.StatusBadRequest, msg)
		return
	}
	req.Unit = unitOrDefault(req.Unit)

	item, err := h.store.CreateItem(r.Context(), a.CompanyID, req)
	if err != nil {
		writeStoreError(w, "create item", err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *InventoryHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req domain.Item
	if !decodeBody(w, r, &req) {
		return
	}
	if msg := validateItem(req.Name, req.Quantity); msg != "" {
		writeMessage(w, http.StatusBadRequest, msg)
		return
	}
	req.ID = id
	req.Unit = unitOrDefault(req.Unit)

	item, err := h.store.UpdateItem(r.Context(), a.CompanyID, req)
	if err != nil {
		writeStoreError(w, "update item", err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *InventoryHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteItem(r.Context(), a.CompanyID, id); err != nil {
		writeStoreError(w, "delete item", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AdjustQuantity applies a signed delta. Results below zero are refused
// with 409.
func (h *InventoryHandler) AdjustQuantity(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req domain.QuantityDelta
	if !decodeBody(w, r, &req) {
		return
	}

	item, err := h.store.AdjustItemQuantity(r.Context(), a.CompanyID, id, req.Quantity)
	if err != nil {
		writeStoreError(w, "adjust item quantity", err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}
