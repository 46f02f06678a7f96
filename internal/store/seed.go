package store

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/kiwari-pos/stockroom/internal/domain"
	"github.com/kiwari-pos/stockroom/internal/enum"
)

// SeedOptions describes the owner account created by Seed.
type SeedOptions struct {
	CompanyID int64
	Email     string
	Password  string
	Name      string
	// Cost is the bcrypt cost; zero means bcrypt.DefaultCost.
	Cost int
}

// Seed creates the admin user plus a small sample inventory and fee table.
// Running it twice is harmless: existing rows are skipped.
func Seed(ctx context.Context, s *Store, opts SeedOptions) (User, error) {
	owner, err := seedOwner(ctx, s, opts)
	if err != nil {
		return User{}, fmt.Errorf("seed owner: %w", err)
	}
	if err := seedInventory(ctx, s, opts.CompanyID); err != nil {
		return User{}, fmt.Errorf("seed inventory: %w", err)
	}
	if err := seedFees(ctx, s, opts.CompanyID); err != nil {
		return User{}, fmt.Errorf("seed fees: %w", err)
	}
	return owner, nil
}

// seedOwner creates the admin user if it doesn't exist.
func seedOwner(ctx context.Context, s *Store, opts SeedOptions) (User, error) {
	existing, err := s.GetUserByEmail(ctx, opts.Email)
	if err == nil {
		log.Printf("User '%s' already exists (ID: %d), skipping", opts.Email, existing.ID)
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return User{}, fmt.Errorf("check user: %w", err)
	}

	cost := opts.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(opts.Password), cost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.CreateUser(ctx, User{
		CompanyID:    opts.CompanyID,
		Name:         opts.Name,
		Email:        opts.Email,
		Role:         enum.UserRoleAdmin,
		PasswordHash: string(hashed),
	})
	if err != nil {
		return User{}, fmt.Errorf("insert user: %w", err)
	}
	log.Printf("Created admin user '%s' (ID: %d)", opts.Email, u.ID)
	return u, nil
}

type seedCategory struct {
	name  string
	items []domain.CreateItemRequest
}

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

var sampleInventory = []seedCategory{
	{"Dry goods", []domain.CreateItemRequest{
		{Name: "Rice", Quantity: 40, Unit: "kg", Price: price("2.50")},
		{Name: "Flour", Quantity: 25, Unit: "kg", Price: price("1.80")},
	}},
	{"Beverages", []domain.CreateItemRequest{
		{Name: "Coffee beans", Quantity: 12, Unit: "bag", Price: price("9.00")},
		{Name: "Bottled water", Quantity: 96, Unit: enum.DefaultUnit, Price: price("0.40")},
	}},
	{"Packaging", []domain.CreateItemRequest{
		{Name: "Takeaway box", Quantity: 200, Unit: enum.DefaultUnit},
	}},
}

func seedInventory(ctx context.Context, s *Store, companyID int64) error {
	existing, err := s.ListInventory(ctx, companyID)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		log.Printf("Inventory for company %d already exists, skipping", companyID)
		return nil
	}
	for _, sc := range sampleInventory {
		cat, err := s.CreateCategory(ctx, companyID, sc.name)
		if err != nil {
			return fmt.Errorf("insert category %q: %w", sc.name, err)
		}
		for _, req := range sc.items {
			req.CategoryID = cat.ID
			if _, err := s.CreateItem(ctx, companyID, req); err != nil {
				return fmt.Errorf("insert item %q: %w", req.Name, err)
			}
		}
	}
	log.Printf("Created %d sample categories", len(sampleInventory))
	return nil
}

func seedFees(ctx context.Context, s *Store, companyID int64) error {
	existing, err := s.ListFees(ctx, companyID)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	for _, f := range []domain.Fee{
		{Name: "Tax", Value: decimal.NewFromInt(10), Type: enum.FeeTypePercentage},
		{Name: "Service", Value: decimal.RequireFromString("1.00"), Type: enum.FeeTypeFlat},
	} {
		if _, err := s.CreateFee(ctx, companyID, f); err != nil {
			return fmt.Errorf("insert fee %q: %w", f.Name, err)
		}
	}
	return nil
}
