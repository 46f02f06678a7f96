package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kiwari-pos/stockroom/internal/middleware"
	"github.com/kiwari-pos/stockroom/internal/service"
	"github.com/kiwari-pos/stockroom/internal/store"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}

// writeMessage writes the {"message": ...} error body clients read.
func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// decodeBody reads a JSON body into v, rejecting unknown trailing data.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// pathID parses an int64 URL parameter.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeMessage(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

// actor returns the authenticated caller. Routes using it sit behind
// middleware.Authenticate.
func actor(w http.ResponseWriter, r *http.Request) (service.Actor, bool) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeMessage(w, http.StatusUnauthorized, "not authenticated")
		return service.Actor{}, false
	}
	return service.Actor{UserID: claims.UserID, CompanyID: claims.CompanyID, Role: claims.Role}, true
}

// writeStoreError maps store sentinels to statuses; anything else is logged
// as an internal error under op.
func writeStoreError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrDuplicate):
		writeMessage(w, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrNegativeStock):
		writeMessage(w, http.StatusConflict, err.Error())
	default:
		log.Printf("ERROR: %s: %v", op, err)
		writeMessage(w, http.StatusInternalServerError, "internal server error")
	}
}
