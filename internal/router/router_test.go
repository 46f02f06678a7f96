package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/kiwari-pos/stockroom/internal/config"
	"github.com/kiwari-pos/stockroom/internal/domain"
	"github.com/kiwari-pos/stockroom/internal/enum"
	mw "github.com/kiwari-pos/stockroom/internal/middleware"
	"github.com/kiwari-pos/stockroom/internal/router"
	"github.com/kiwari-pos/stockroom/internal/store"
	"github.com/kiwari-pos/stockroom/internal/ws"
)

func setup(t *testing.T) (chi.Router, *store.Store) {
	t.Helper()
	cfg := &config.ServerConfig{JWTSecret: "router-test-secret"}
	st := store.New()
	if _, err := store.Seed(context.Background(), st, store.SeedOptions{
		CompanyID: 1,
		Email:     "admin@stockroom.local",
		Password:  "password123",
		Name:      "Admin",
		Cost:      bcrypt.MinCost,
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := ws.NewHub()
	go hub.Run(ctx)

	return router.New(cfg, st, hub, mw.NewMetrics()), st
}

func call(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decode: %v; body: %s", err, rr.Body.String())
	}
}

func TestHealth(t *testing.T) {
	r, _ := setup(t)
	rr := call(t, r, "GET", "/health", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	if !strings.Contains(rr.Body.String(), `"status":"ok"`) {
		t.Errorf("body: %s", rr.Body.String())
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r, _ := setup(t)
	for _, path := range []string{"/auth/me", "/orders", "/inventory", "/labels", "/fees"} {
		if rr := call(t, r, "GET", path, "", nil); rr.Code != http.StatusUnauthorized {
			t.Errorf("%s: got %d, want %d", path, rr.Code, http.StatusUnauthorized)
		}
	}
}

func TestOrderFlow(t *testing.T) {
	r, st := setup(t)

	rr := call(t, r, "POST", "/auth/login", "", domain.LoginRequest{Email: "admin@stockroom.local", Password: "password123"})
	if rr.Code != http.StatusOK {
		t.Fatalf("login: got %d; body: %s", rr.Code, rr.Body.String())
	}
	var auth domain.AuthResponse
	decode(t, rr, &auth)
	token := auth.Token

	inv, _ := st.ListInventory(context.Background(), 1)
	item := inv[0].Items[0]

	rr = call(t, r, "POST", "/orders", token, domain.CreateOrderRequest{Items: []domain.OrderItemRequest{{ID: item.ID, Quantity: 2}}})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create order: got %d; body: %s", rr.Code, rr.Body.String())
	}
	var o domain.Order
	decode(t, rr, &o)

	after, _ := st.GetItem(context.Background(), 1, item.ID)
	if after.Quantity != item.Quantity-2 {
		t.Errorf("stock after order: got %d, want %d", after.Quantity, item.Quantity-2)
	}

	pending := enum.OrderStatusPending
	rr = call(t, r, "PATCH", "/orders/"+o.UUID, token, domain.UpdateOrderRequest{Status: &pending})
	if rr.Code != http.StatusOK {
		t.Fatalf("deliver: got %d; body: %s", rr.Code, rr.Body.String())
	}

	receipt := "R-1"
	rr = call(t, r, "PATCH", "/orders/"+o.UUID, token, domain.UpdateOrderRequest{ReceiptID: &receipt})
	decode(t, rr, &o)
	if o.Status != enum.OrderStatusCompleted {
		t.Fatalf("status after receipt: got %q, want %q", o.Status, enum.OrderStatusCompleted)
	}

	rr = call(t, r, "GET", "/orders?status=completed", token, nil)
	var page domain.PaginatedOrders
	decode(t, rr, &page)
	if len(page.Data) != 1 || page.Data[0].UUID != o.UUID {
		t.Fatalf("listing: got %+v", page)
	}

	rr = call(t, r, "GET", "/metrics", "", nil)
	if !strings.Contains(rr.Body.String(), `route="/orders/{id}"`) {
		t.Errorf("metrics missing order route:\n%s", rr.Body.String())
	}
}
