package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/kiwari-pos/stockroom/internal/api"
	"github.com/kiwari-pos/stockroom/internal/apperr"
	"github.com/kiwari-pos/stockroom/internal/config"
	"github.com/kiwari-pos/stockroom/internal/domain"
	"github.com/kiwari-pos/stockroom/internal/enum"
	mw "github.com/kiwari-pos/stockroom/internal/middleware"
	"github.com/kiwari-pos/stockroom/internal/router"
	"github.com/kiwari-pos/stockroom/internal/service"
	"github.com/kiwari-pos/stockroom/internal/session"
	"github.com/kiwari-pos/stockroom/internal/store"
	"github.com/kiwari-pos/stockroom/internal/ws"
)

// syncBuffer lets the watch loop write while the test reads.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type harness struct {
	t     *testing.T
	srv   *httptest.Server
	cfg   *config.Config
	st    *store.Store
	owner store.User
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	st := store.New()
	owner, err := store.Seed(context.Background(), st, store.SeedOptions{
		CompanyID: 1,
		Email:     "admin@stockroom.local",
		Password:  "password123",
		Name:      "Admin",
		Cost:      bcrypt.MinCost,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	hub := ws.NewHub()
	go hub.Run(ctx)

	srv := httptest.NewServer(router.New(&config.ServerConfig{JWTSecret: "cli-test-secret"}, st, hub, mw.NewMetrics()))
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})

	return &harness{
		t:   t,
		srv: srv,
		st:  st,
		cfg: &config.Config{
			APIURL:          srv.URL,
			WSURL:           "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/orders",
			CredentialsFile: filepath.Join(t.TempDir(), "credentials.json"),
			PollInterval:    time.Hour,
			HTTPTimeout:     5 * time.Second,
		},
		owner: owner,
	}
}

func (h *harness) app(out io.Writer) *app {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return newApp(h.cfg, h.srv.Client(), logger, strings.NewReader(""), out)
}

func (h *harness) run(args ...string) (string, error) {
	var out bytes.Buffer
	err := h.app(&out).run(context.Background(), args)
	return out.String(), err
}

func (h *harness) login() {
	out, err := h.run("login", "-email", "admin@stockroom.local", "-password", "password123")
	require.NoError(h.t, err)
	require.Contains(h.t, out, "signed in as Admin")
}

// createOrder places an order directly through the service.
func (h *harness) createOrder(itemName string, qty int) domain.Order {
	inv, err := h.st.ListInventory(context.Background(), 1)
	require.NoError(h.t, err)
	var id int64
	for _, c := range inv {
		for _, it := range c.Items {
			if it.Name == itemName {
				id = it.ID
			}
		}
	}
	require.NotZero(h.t, id, "no item %q", itemName)

	o, err := service.NewOrderService(h.st).CreateOrder(context.Background(),
		service.Actor{UserID: h.owner.ID, CompanyID: 1, Role: enum.UserRoleAdmin},
		domain.CreateOrderRequest{Items: []domain.OrderItemRequest{{ID: id, Quantity: qty}}})
	require.NoError(h.t, err)
	return o
}

func TestSessionCommands(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("whoami")
	require.ErrorIs(t, err, errNotSignedIn)

	_, err = h.run("login", "-email", "not-an-email", "-password", "password123")
	assert.True(t, apperr.IsValidation(err))

	_, err = h.run("login", "-email", "admin@stockroom.local", "-password", "wrong-password")
	assert.True(t, apperr.IsRemote(err))

	h.login()
	out, err := h.run("whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "admin@stockroom.local")
	assert.Contains(t, out, enum.UserRoleAdmin)

	out, err = h.run("logout")
	require.NoError(t, err)
	assert.Contains(t, out, "signed out")
	_, err = h.run("whoami")
	assert.ErrorIs(t, err, errNotSignedIn)
}

func TestUsageErrors(t *testing.T) {
	h := newHarness(t)
	for _, args := range [][]string{
		{},
		{"frobnicate"},
		{"orders", "-nope"},
		{"order", "show"},
		{"stock", "steal"},
	} {
		_, err := h.run(args...)
		assert.ErrorIs(t, err, errUsage, "args %v", args)
	}
}

func TestOrderCommands(t *testing.T) {
	h := newHarness(t)
	h.login()
	o := h.createOrder("Rice", 2)

	out, err := h.run("orders")
	require.NoError(t, err)
	assert.Contains(t, out, o.UUID)
	assert.Contains(t, out, "page 1 of 1 (1 orders)")

	out, err = h.run("orders", "-status", "completed")
	require.NoError(t, err)
	assert.NotContains(t, out, o.UUID)

	_, err = h.run("orders", "-from", "yesterday")
	assert.True(t, apperr.IsValidation(err))

	out, err = h.run("order", "add-item", o.UUID, "-item", "flour", "-qty", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Flour")

	_, err = h.run("order", "add-item", o.UUID, "-item", "Flour", "-qty", "1000")
	assert.ErrorIs(t, err, apperr.ErrQuantityExceedsAvailable, "stock is checked before the duplicate line")

	_, err = h.run("order", "add-item", o.UUID, "-item", "Flour", "-qty", "1")
	assert.True(t, apperr.IsValidation(err), "flour is already on the order")

	out, err = h.run("order", "add-item", o.UUID, "-item", "Flour", "-qty", "1", "-merge")
	require.NoError(t, err)
	assert.Contains(t, out, "Flour")

	out, err = h.run("order", "deliver", o.UUID)
	require.NoError(t, err)
	assert.Contains(t, out, enum.OrderStatusPending)

	_, err = h.run("order", "add-item", o.UUID, "-item", "Flour")
	assert.ErrorIs(t, err, apperr.ErrOperationDisabled)

	out, err = h.run("order", "receipt", o.UUID, "R-42")
	require.NoError(t, err)
	assert.Contains(t, out, enum.OrderStatusCompleted)
	assert.Contains(t, out, "R-42")

	_, err = h.run("order", "undeliver", o.UUID)
	assert.ErrorIs(t, err, apperr.ErrOperationDisabled)

	out, err = h.run("order", "delete", o.UUID)
	require.NoError(t, err)
	assert.Contains(t, out, "deleted order "+o.UUID)
	assert.NotContains(t, out, "restored", "completed orders keep their stock")

	_, err = h.run("order", "show", o.UUID)
	assert.True(t, apperr.IsRemote(err))
}

func TestDeleteRestoresStock(t *testing.T) {
	h := newHarness(t)
	h.login()
	before, _ := h.st.ListInventory(context.Background(), 1)
	o := h.createOrder("Coffee beans", 4)

	out, err := h.run("order", "delete", o.UUID)
	require.NoError(t, err)
	assert.Contains(t, out, "restored stock for 1 items")

	after, _ := h.st.ListInventory(context.Background(), 1)
	assert.Equal(t, before, after)
}

func TestInventoryCommands(t *testing.T) {
	h := newHarness(t)
	h.login()

	out, err := h.run("inventory")
	require.NoError(t, err)
	assert.Contains(t, out, "Rice")
	assert.Contains(t, out, "Takeaway box")

	out, err = h.run("stock", "buy", "-name", "rice", "-qty", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "Rice: 45 kg in stock")

	_, err = h.run("stock", "sell", "-name", "Rice", "-qty", "1000")
	assert.ErrorIs(t, err, apperr.ErrQuantityExceedsAvailable)

	out, err = h.run("stock", "sell", "-name", "Coffee beans", "-qty", "12")
	require.NoError(t, err)
	assert.Contains(t, out, "sold out")

	out, err = h.run("inventory", "add-category", "Frozen", "food")
	require.NoError(t, err)
	assert.Contains(t, out, `"Frozen food"`)

	_, err = h.run("inventory", "add-category", "frozen food")
	assert.True(t, apperr.IsValidation(err))

	out, err = h.run("labels", "add", "Urgent")
	require.NoError(t, err)
	assert.Contains(t, out, "Urgent")
}

func TestFeeAndExportCommands(t *testing.T) {
	h := newHarness(t)
	h.login()

	out, err := h.run("fees", "-subtotal", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "12.00")

	fees, err := h.st.ListFees(context.Background(), 1)
	require.NoError(t, err)
	var taxID int64
	for _, f := range fees {
		if f.Type == enum.FeeTypePercentage {
			taxID = f.ID
		}
	}
	require.NotZero(t, taxID)

	out, err = h.run("fees", "set", strconv.FormatInt(taxID, 10)+"=15")
	require.NoError(t, err)
	assert.Contains(t, out, "fees saved")

	out, err = h.run("fees", "-subtotal", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "12.50")

	_, err = h.run("export", "-from", "2024-05-03", "-to", "2024-05-01")
	assert.True(t, apperr.IsValidation(err))
	assert.Empty(t, h.st.Exports(1))

	out, err = h.run("export", "-from", "2024-05-01", "-to", "2024-05-03")
	require.NoError(t, err)
	assert.Contains(t, out, "admin@stockroom.local")
	require.Len(t, h.st.Exports(1), 1)
	assert.Equal(t, enum.ExportTypeCSV, h.st.Exports(1)[0].Request.Type)
}

func TestWatchRefreshesOnPush(t *testing.T) {
	h := newHarness(t)
	h.login()
	first := h.createOrder("Rice", 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out := &syncBuffer{}
	done := make(chan error, 1)
	go func() { done <- h.app(out).run(ctx, []string{"watch", "-plain"}) }()

	require.Eventually(t, func() bool { return strings.Contains(out.String(), first.UUID) }, 5*time.Second, 20*time.Millisecond)

	// Give the push stream time to connect before the server emits.
	time.Sleep(200 * time.Millisecond)

	cred, err := session.FileStore{Path: h.cfg.CredentialsFile}.Load()
	require.NoError(t, err)
	client := api.New(h.srv.URL, h.srv.Client())
	client.SetToken(cred.Token)
	inv, _ := h.st.ListInventory(context.Background(), 1)
	second, err := client.CreateOrder(context.Background(), domain.CreateOrderRequest{
		Items: []domain.OrderItemRequest{{ID: inv[0].Items[0].ID, Quantity: 1}},
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return strings.Contains(out.String(), second.UUID) }, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}
