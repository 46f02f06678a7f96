package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Item struct {
	ID         int64            `json:"id"`
	Name       string           `json:"name"`
	Quantity   int              `json:"quantity"`
	Unit       string           `json:"type_of_unit"`
	Price      *decimal.Decimal `json:"price,omitempty"`
	CategoryID int64            `json:"category_id"`
}

type Category struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Items []Item `json:"items"`
}

type CreateCategoryRequest struct {
	Name  string `json:"name"`
	Items []Item `json:"items"`
}

type CreateItemRequest struct {
	Name       string           `json:"name"`
	Quantity   int              `json:"quantity"`
	Unit       string           `json:"type_of_unit"`
	Price      *decimal.Decimal `json:"price,omitempty"`
	CategoryID int64            `json:"category_id"`
}

// QuantityDelta is the body of PATCH /items/{id}/quantity. Quantity is signed.
type QuantityDelta struct {
	Quantity int `json:"quantity"`
}

type Label struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

type Fee struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Value     decimal.Decimal `json:"value"`
	Type      string          `json:"type"`
	AppliesTo string          `json:"applies_to,omitempty"`
}

// ExportRequest asks the server to e-mail order data. Dates are epoch millis.
type ExportRequest struct {
	Email     string `json:"email"`
	Type      string `json:"type"`
	StartDate int64  `json:"start_date"`
	EndDate   int64  `json:"end_date"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// AuthResponse is returned by login and refresh.
type AuthResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	User         *User  `json:"user"`
}
