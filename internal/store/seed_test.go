package store_test

import (
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/kiwari-pos/stockroom/internal/enum"
	"github.com/kiwari-pos/stockroom/internal/store"
)

func TestSeed(t *testing.T) {
	s := store.New()
	opts := store.SeedOptions{CompanyID: 1, Email: "admin@stockroom.local", Password: "password123", Name: "Admin", Cost: bcrypt.MinCost}

	owner, err := store.Seed(ctx, s, opts)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if owner.Role != enum.UserRoleAdmin || owner.CompanyID != 1 {
		t.Errorf("owner: got %+v", owner)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(owner.PasswordHash), []byte("password123")); err != nil {
		t.Errorf("password hash does not match: %v", err)
	}

	inv, _ := s.ListInventory(ctx, 1)
	fees, _ := s.ListFees(ctx, 1)
	if len(inv) == 0 || len(fees) != 2 {
		t.Fatalf("seeded data: %d categories, %d fees", len(inv), len(fees))
	}

	again, err := store.Seed(ctx, s, opts)
	if err != nil {
		t.Fatalf("second seed: %v", err)
	}
	if again.ID != owner.ID {
		t.Errorf("second seed created a new owner: got %d, want %d", again.ID, owner.ID)
	}
	inv2, _ := s.ListInventory(ctx, 1)
	fees2, _ := s.ListFees(ctx, 1)
	if len(inv2) != len(inv) || len(fees2) != len(fees) {
		t.Errorf("second seed duplicated data: %d/%d categories, %d/%d fees", len(inv2), len(inv), len(fees2), len(fees))
	}
}
