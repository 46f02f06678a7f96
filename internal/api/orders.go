package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/kiwari-pos/stockroom/internal/apperr"
	"github.com/kiwari-pos/stockroom/internal/domain"
)

// orderPath validates the order id before it goes on the wire.
func orderPath(id string) (string, error) {
	if _, err := uuid.Parse(id); err != nil {
		return "", apperr.Invalid("order_uuid", "invalid order id")
	}
	return "/orders/" + url.PathEscape(id), nil
}

// ListOrders handles GET /orders with the given filter window.
func (c *Client) ListOrders(ctx context.Context, q domain.OrderQuery) (*domain.PaginatedOrders, error) {
	params := url.Values{}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	if q.StartDate != "" {
		params.Set("start_date", q.StartDate)
	}
	if q.EndDate != "" {
		params.Set("end_date", q.EndDate)
	}
	if q.Status != "" {
		params.Set("status", q.Status)
	}
	path := "/orders"
	if enc := params.Encode(); enc != "" {
		path += "?" + enc
	}

	var out domain.PaginatedOrders
	if err := c.do(ctx, "list orders", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	path, err := orderPath(id)
	if err != nil {
		return nil, err
	}
	var out domain.Order
	if err := c.do(ctx, "get order", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateOrder(ctx context.Context, req domain.CreateOrderRequest) (*domain.Order, error) {
	var out domain.Order
	if err := c.do(ctx, "create order", http.MethodPost, "/orders", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateOrder handles PATCH /orders/{uuid}. Only non-nil fields are sent.
func (c *Client) UpdateOrder(ctx context.Context, id string, req domain.UpdateOrderRequest) (*domain.Order, error) {
	path, err := orderPath(id)
	if err != nil {
		return nil, err
	}
	var out domain.Order
	if err := c.do(ctx, "update order", http.MethodPatch, path, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteOrder(ctx context.Context, id string) error {
	path, err := orderPath(id)
	if err != nil {
		return err
	}
	return c.do(ctx, "delete order", http.MethodDelete, path, nil, nil)
}

// AddOrderItem handles POST /orders/{uuid}/items and returns the updated order.
func (c *Client) AddOrderItem(ctx context.Context, id string, req domain.AddOrderItemRequest) (*domain.Order, error) {
	path, err := orderPath(id)
	if err != nil {
		return nil, err
	}
	var out domain.Order
	if err := c.do(ctx, "add order item", http.MethodPost, path+"/items", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteOrderItem handles DELETE /orders/{uuid}/items/{order_item_id}.
func (c *Client) DeleteOrderItem(ctx context.Context, id string, orderItemID int64) (*domain.Order, error) {
	path, err := orderPath(id)
	if err != nil {
		return nil, err
	}
	var out domain.Order
	path += "/items/" + strconv.FormatInt(orderItemID, 10)
	if err := c.do(ctx, "delete order item", http.MethodDelete, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
