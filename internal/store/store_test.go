package store_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/kiwari-pos/stockroom/internal/domain"
	"github.com/kiwari-pos/stockroom/internal/enum"
	"github.com/kiwari-pos/stockroom/internal/store"
)

var ctx = context.Background()

func TestUsers(t *testing.T) {
	s := store.New()
	u, err := s.CreateUser(ctx, store.User{CompanyID: 1, Email: " Admin@Example.com ", Role: enum.UserRoleAdmin})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := s.CreateUser(ctx, store.User{CompanyID: 1, Email: "admin@example.com"}); !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("duplicate email: got %v, want ErrDuplicate", err)
	}

	got, err := s.GetUserByEmail(ctx, "ADMIN@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("id: got %d, want %d", got.ID, u.ID)
	}
	if d := got.Domain(); d.CompanyID == nil || *d.CompanyID != 1 {
		t.Errorf("domain company id: got %v, want 1", d.CompanyID)
	}
	if _, err := s.GetUser(ctx, 999); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("missing user: got %v, want ErrNotFound", err)
	}
}

func TestInventory_ScopedAndUnique(t *testing.T) {
	s := store.New()
	cat, err := s.CreateCategory(ctx, 1, "Produce")
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	if _, err := s.CreateCategory(ctx, 1, " produce "); !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("duplicate category: got %v, want ErrDuplicate", err)
	}
	if _, err := s.CreateCategory(ctx, 2, "Produce"); err != nil {
		t.Fatalf("same name in another company: %v", err)
	}

	apple, err := s.CreateItem(ctx, 1, domain.CreateItemRequest{Name: "Apple", Quantity: 4, Unit: "kg", CategoryID: cat.ID})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	if _, err := s.CreateItem(ctx, 2, domain.CreateItemRequest{Name: "Pear", CategoryID: cat.ID}); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("item in foreign category: got %v, want ErrNotFound", err)
	}
	if _, err := s.GetItem(ctx, 2, apple.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("foreign item lookup: got %v, want ErrNotFound", err)
	}

	inv, err := s.ListInventory(ctx, 1)
	if err != nil {
		t.Fatalf("list inventory: %v", err)
	}
	if len(inv) != 1 || len(inv[0].Items) != 1 || inv[0].Items[0].Name != "Apple" {
		t.Fatalf("inventory: got %+v", inv)
	}

	if err := s.DeleteCategory(ctx, 1, cat.ID); err != nil {
		t.Fatalf("delete category: %v", err)
	}
	if _, err := s.GetItem(ctx, 1, apple.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("item should go with its category, got %v", err)
	}
}

func TestAdjustItemQuantity(t *testing.T) {
	s := store.New()
	cat, _ := s.CreateCategory(ctx, 1, "Dry")
	rice, _ := s.CreateItem(ctx, 1, domain.CreateItemRequest{Name: "Rice", Quantity: 3, CategoryID: cat.ID})

	tests := []struct {
		delta   int
		want    int
		wantErr error
	}{
		{+2, 5, nil},
		{-5, 0, nil},
		{-1, 0, store.ErrNegativeStock},
		{+1, 1, nil},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%+d", tt.delta), func(t *testing.T) {
			got, err := s.AdjustItemQuantity(ctx, 1, rice.ID, tt.delta)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error: got %v, want %v", err, tt.wantErr)
			}
			if err == nil && got.Quantity != tt.want {
				t.Errorf("quantity: got %d, want %d", got.Quantity, tt.want)
			}
		})
	}
}

func TestLabelsAndFees(t *testing.T) {
	s := store.New()
	l, err := s.CreateLabel(ctx, 1, "Urgent")
	if err != nil {
		t.Fatalf("create label: %v", err)
	}
	other, _ := s.CreateLabel(ctx, 1, "Later")
	if _, err := s.UpdateLabel(ctx, 1, other.ID, "urgent"); !errors.Is(err, store.ErrDuplicate) {
		t.Errorf("rename onto existing: got %v, want ErrDuplicate", err)
	}
	if _, err := s.UpdateLabel(ctx, 1, l.ID, "URGENT"); err != nil {
		t.Errorf("rename to own name with new case: %v", err)
	}

	f, err := s.CreateFee(ctx, 1, domain.Fee{Name: "Tax", Type: enum.FeeTypePercentage})
	if err != nil {
		t.Fatalf("create fee: %v", err)
	}
	if _, err := s.UpdateFee(ctx, 2, f); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("update foreign fee: got %v, want ErrNotFound", err)
	}
	fees, _ := s.ListFees(ctx, 1)
	if len(fees) != 1 {
		t.Errorf("fees: got %d, want 1", len(fees))
	}
}

func TestListOrders_FilterAndPage(t *testing.T) {
	s := store.New()
	admin, _ := s.CreateUser(ctx, store.User{CompanyID: 1, Name: "Ann", Email: "ann@example.com"})
	base := time.Date(2024, time.May, 1, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 12; i++ {
		status := enum.OrderStatusOpen
		if i%3 == 0 {
			status = enum.OrderStatusPending
		}
		_, err := s.InsertOrder(ctx, 1, domain.Order{
			UUID:      fmt.Sprintf("order-%02d", i),
			UserID:    admin.ID,
			Status:    status,
			CreatedAt: base.Add(time.Duration(i) * 24 * time.Hour),
		})
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	_, _ = s.InsertOrder(ctx, 2, domain.Order{UUID: "foreign", Status: enum.OrderStatusOpen, CreatedAt: base})

	rows, total, err := s.ListOrders(ctx, 1, store.OrderFilter{Limit: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 12 || len(rows) != 10 {
		t.Fatalf("page 1: got %d rows of %d, want 10 of 12", len(rows), total)
	}
	if rows[0].UUID != "order-11" {
		t.Errorf("newest first: got %s", rows[0].UUID)
	}
	if rows[0].User.Name != "Ann" {
		t.Errorf("user join: got %+v", rows[0].User)
	}

	rows, _, _ = s.ListOrders(ctx, 1, store.OrderFilter{Limit: 10, Offset: 10})
	if len(rows) != 2 {
		t.Errorf("page 2: got %d rows, want 2", len(rows))
	}

	rows, total, _ = s.ListOrders(ctx, 1, store.OrderFilter{
		Status: enum.OrderStatusPending,
		Start:  base,
		End:    base.Add(6 * 24 * time.Hour),
	})
	if total != 3 {
		t.Errorf("pending within range (inclusive): got %d, want 3", total)
	}
	for _, r := range rows {
		if r.Status != enum.OrderStatusPending {
			t.Errorf("status filter leaked %s", r.Status)
		}
	}
}

func TestOrders_NoAliasing(t *testing.T) {
	s := store.New()
	o, _ := s.InsertOrder(ctx, 1, domain.Order{UUID: "o", Items: []domain.LineItem{{ID: 1, Quantity: 1}}})
	o.Items[0].Quantity = 99

	got, err := s.GetOrder(ctx, 1, "o")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Items[0].Quantity != 1 {
		t.Errorf("stored order was mutated through returned copy")
	}
	if _, err := s.GetOrder(ctx, 2, "o"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("foreign order: got %v, want ErrNotFound", err)
	}
}
