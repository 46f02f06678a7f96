package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is the signed-in principal as reported by the API.
type User struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role,omitempty"`
	CompanyID *int64 `json:"company_id,omitempty"`
}

// LineItem is one inventory item quantity attached to an order.
type LineItem struct {
	ID          int64            `json:"id"`
	OrderItemID int64            `json:"order_item_id"`
	Name        string           `json:"name"`
	Quantity    int              `json:"quantity"`
	Unit        string           `json:"type_of_unit"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	CategoryID  int64            `json:"category_id"`
}

// AppliedFee is the fee snapshot stored on an order.
type AppliedFee struct {
	ID    int64           `json:"id,omitempty"`
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
}

type Order struct {
	UUID      string          `json:"uuid"`
	UserID    int64           `json:"user_id"`
	Items     []LineItem      `json:"items"`
	Fees      []AppliedFee    `json:"fees"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Total     decimal.Decimal `json:"total"`
	Status    string          `json:"status"`
	ReceiptID *string         `json:"receipt_id"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Receipt returns the receipt id, or "" when none has been assigned.
func (o Order) Receipt() string {
	if o.ReceiptID == nil {
		return ""
	}
	return *o.ReceiptID
}

// HasItem reports whether the inventory item is already on the order.
func (o Order) HasItem(itemID int64) bool {
	for _, li := range o.Items {
		if li.ID == itemID {
			return true
		}
	}
	return false
}

// OrderListItem is the summary row returned by the paginated order listing.
type OrderListItem struct {
	UUID      string          `json:"uuid"`
	User      User            `json:"user"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Total     decimal.Decimal `json:"total"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalCount  int  `json:"totalCount"`
	HasNext     bool `json:"hasNext"`
	HasPrevious bool `json:"hasPrevious"`
}

type PaginatedOrders struct {
	Data       []OrderListItem `json:"data"`
	Pagination Pagination      `json:"pagination"`
}

// OrderQuery is the filter window sent to GET /orders. Zero values are omitted.
type OrderQuery struct {
	Page      int
	StartDate string // YYYY-MM-DD
	EndDate   string // YYYY-MM-DD
	Status    string
}

// OrderItemRequest is one entry of a create-order request.
type OrderItemRequest struct {
	ID       int64 `json:"id"`
	Quantity int   `json:"quantity"`
}

type CreateOrderRequest struct {
	Items []OrderItemRequest `json:"items"`
}

// UpdateOrderRequest is the PATCH body; nil fields are left untouched.
type UpdateOrderRequest struct {
	ReceiptID *string    `json:"receipt_id,omitempty"`
	Status    *string    `json:"status,omitempty"`
	Items     []LineItem `json:"items,omitempty"`
}

type AddOrderItemRequest struct {
	ItemID   int64 `json:"item_id"`
	Quantity int   `json:"quantity"`
}

// Event is a server push notification about an order.
type Event struct {
	Type    string `json:"type"`
	OrderID string `json:"order_id"`
}
