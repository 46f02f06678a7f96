package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/kiwari-pos/stockroom/internal/domain"
)

func idPath(prefix string, id int64) string {
	return prefix + "/" + strconv.FormatInt(id, 10)
}

// Inventory returns every category with its items.
func (c *Client) Inventory(ctx context.Context) ([]domain.Category, error) {
	var out []domain.Category
	if err := c.do(ctx, "get inventory", http.MethodGet, "/inventory", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateCategory(ctx context.Context, name string) (*domain.Category, error) {
	var out domain.Category
	req := domain.CreateCategoryRequest{Name: name, Items: []domain.Item{}}
	if err := c.do(ctx, "create category", http.MethodPost, "/categories", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateCategory(ctx context.Context, cat domain.Category) (*domain.Category, error) {
	var out domain.Category
	if err := c.do(ctx, "update category", http.MethodPatch, idPath("/categories", cat.ID), cat, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteCategory(ctx context.Context, id int64) error {
	return c.do(ctx, "delete category", http.MethodDelete, idPath("/categories", id), nil, nil)
}

func (c *Client) CreateItem(ctx context.Context, req domain.CreateItemRequest) (*domain.Item, error) {
	var out domain.Item
	if err := c.do(ctx, "create item", http.MethodPost, "/items", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateItem(ctx context.Context, item domain.Item) (*domain.Item, error) {
	var out domain.Item
	if err := c.do(ctx, "update item", http.MethodPatch, idPath("/items", item.ID), item, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteItem(ctx context.Context, id int64) error {
	return c.do(ctx, "delete item", http.MethodDelete, idPath("/items", id), nil, nil)
}

// AdjustItemQuantity applies a signed stock delta server-side.
func (c *Client) AdjustItemQuantity(ctx context.Context, id int64, delta int) (*domain.Item, error) {
	var out domain.Item
	path := idPath("/items", id) + "/quantity"
	if err := c.do(ctx, "adjust item quantity", http.MethodPatch, path, domain.QuantityDelta{Quantity: delta}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Labels(ctx context.Context) ([]domain.Label, error) {
	var out []domain.Label
	if err := c.do(ctx, "get labels", http.MethodGet, "/labels", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateLabel(ctx context.Context, name string) (*domain.Label, error) {
	var out domain.Label
	if err := c.do(ctx, "create label", http.MethodPost, "/labels", domain.Label{Name: name}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateLabel(ctx context.Context, l domain.Label) (*domain.Label, error) {
	var out domain.Label
	if err := c.do(ctx, "update label", http.MethodPatch, idPath("/labels", l.ID), l, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteLabel(ctx context.Context, id int64) error {
	return c.do(ctx, "delete label", http.MethodDelete, idPath("/labels", id), nil, nil)
}

func (c *Client) Fees(ctx context.Context) ([]domain.Fee, error) {
	var out []domain.Fee
	if err := c.do(ctx, "get fees", http.MethodGet, "/fees", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateFee(ctx context.Context, f domain.Fee) (*domain.Fee, error) {
	var out domain.Fee
	if err := c.do(ctx, "create fee", http.MethodPost, "/fees", f, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateFee(ctx context.Context, f domain.Fee) (*domain.Fee, error) {
	var out domain.Fee
	if err := c.do(ctx, "update fee", http.MethodPatch, idPath("/fees", f.ID), f, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteFee(ctx context.Context, id int64) error {
	return c.do(ctx, "delete fee", http.MethodDelete, idPath("/fees", id), nil, nil)
}

// ExportData asks the server to e-mail an export of the order data.
func (c *Client) ExportData(ctx context.Context, req domain.ExportRequest) error {
	return c.do(ctx, "export data", http.MethodPost, "/export", req, nil)
}
