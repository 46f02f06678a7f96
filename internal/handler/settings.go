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

// LabelStore defines the store methods needed by label handlers.
// Satisfied by *store.Store.
type LabelStore interface {
	ListLabels(ctx context.Context, companyID int64) ([]domain.Label, error)
	CreateLabel(ctx context.Context, companyID int64, name string) (domain.Label, error)
	UpdateLabel(ctx context.Context, companyID, id int64, name string) (domain.Label, error)
	DeleteLabel(ctx context.Context, companyID, id int64) error
}

// FeeStore defines the store methods needed by fee handlers.
// Satisfied by *store.Store.
type FeeStore interface {
	ListFees(ctx context.Context, companyID int64) ([]domain.Fee, error)
	CreateFee(ctx context.Context, companyID int64, f domain.Fee) (domain.Fee, error)
	UpdateFee(ctx context.Context, companyID int64, f domain.Fee) (domain.Fee, error)
	DeleteFee(ctx context.Context, companyID, id int64) error
}

// ExportStore records export requests.
// Satisfied by *store.Store.
type ExportStore interface {
	RecordExport(ctx context.Context, companyID, userID int64, req domain.ExportRequest) error
}

// SettingsStore is everything the settings handler needs.
type SettingsStore interface {
	LabelStore
	FeeStore
	ExportStore
}

// SettingsHandler handles labels, fees and data export.
type SettingsHandler struct {
	store SettingsStore
}

func NewSettingsHandler(store SettingsStore) *SettingsHandler {
	return &SettingsHandler{store: store}
}

func (h *SettingsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/labels", h.ListLabels)
	r.Post("/labels", h.CreateLabel)
	r.Patch("/labels/{id}", h.UpdateLabel)
	r.Delete("/labels/{id}", h.DeleteLabel)

	r.Get("/fees", h.ListFees)
	r.Post("/fees", h.CreateFee)
	r.Patch("/fees/{id}", h.UpdateFee)
	r.Delete("/fees/{id}", h.DeleteFee)

	r.Post("/export", h.Export)
}

// --- Labels ---

func (h *SettingsHandler) ListLabels(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	labels, err := h.store.ListLabels(r.Context(), a.CompanyID)
	if err != nil {
		writeStoreError(w, "list labels", err)
		return
	}
	writeJSON(w, http.StatusOK, labels)
}

func (h *SettingsHandler) CreateLabel(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	var req domain.Label
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeMessage(w, http.StatusBadRequest, "name is required")
		return
	}
	l, err := h.store.CreateLabel(r.Context(), a.CompanyID, req.Name)
	if err != nil {
		writeStoreError(w, "create label", err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

func (h *SettingsHandler) UpdateLabel(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req domain.Label
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeMessage(w, http.StatusBadRequest, "name is required")
		return
	}
	l, err := h.store.UpdateLabel(r.Context(), a.CompanyID, id, req.Name)
	if err != nil {
		writeStoreError(w, "update label", err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (h *SettingsHandler) DeleteLabel(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteLabel(r.Context(), a.CompanyID, id); err != nil {
		writeStoreError(w, "delete label", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Fees ---

func validateFee(f domain.Fee) string {
	switch {
	case strings.TrimSpace(f.Name) == "":
		return "name is required"
	case !enum.IsFeeType(f.Type):
		return "type must be percentage or flat"
	case f.Value.IsNegative():
		return "value must not be negative"
	}
	return ""
}

func (h *SettingsHandler) ListFees(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	fees, err := h.store.ListFees(r.Context(), a.CompanyID)
	if err != nil {
		writeStoreError(w, "list fees", err)
		return
	}
	writeJSON(w, http.StatusOK, fees)
}

func (h *SettingsHandler) CreateFee(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	var req domain.Fee
	if !decodeBody(w, r, &req) {
		return
	}
	if msg := validateFee(req); msg != "" {
		writeMessage(w, http.StatusBadRequest, msg)
		return
	}
	f, err := h.store.CreateFee(r.Context(), a.CompanyID, req)
	if err != nil {
		writeStoreError(w, "create fee", err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

func (h *SettingsHandler) UpdateFee(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req domain.Fee
	if !decodeBody(w, r, &req) {
		return
	}
	req.ID = id
	if msg := validateFee(req); msg != "" {
		writeMessage(w, http.StatusBadRequest, msg)
		return
	}
	f, err := h.store.UpdateFee(r.Context(), a.CompanyID, req)
	if err != nil {
		writeStoreError(w, "update fee", err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (h *SettingsHandler) DeleteFee(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteFee(r.Context(), a.CompanyID, id); err != nil {
		writeStoreError(w, "delete fee", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Export ---

// Export records the request; no mail is sent by the development server.
func (h *SettingsHandler) Export(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	var req domain.ExportRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	switch {
	case req.Email == "":
		writeMessage(w, http.StatusBadRequest, "email is required")
		return
	case !domain.ValidEmail(req.Email):
		writeMessage(w, http.StatusBadRequest, "email is not valid")
		return
	case req.Type != enum.ExportTypeCSV:
		writeMessage(w, http.StatusBadRequest, "type must be csv")
		return
	case req.StartDate <= 0 || req.EndDate <= 0:
		writeMessage(w, http.StatusBadRequest, "start_date and end_date are required")
		return
	case req.StartDate > req.EndDate:
		writeMessage(w, http.StatusBadRequest, "start_date must not be after end_date")
		return
	}

	if err := h.store.RecordExport(r.Context(), a.CompanyID, a.UserID, req); err != nil {
		writeStoreError(w, "record export", err)
		return
	}
	log.Printf("export requested: company=%d user=%d email=%s", a.CompanyID, a.UserID, req.Email)
	writeMessage(w, http.StatusAccepted, "export queued")
}
