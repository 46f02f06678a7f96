package inventory

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/kiwari-pos/stockroom/internal/apperr"
	"github.com/kiwari-pos/stockroom/internal/domain"
	"github.com/kiwari-pos/stockroom/internal/enum"
	"github.com/kiwari-pos/stockroom/internal/panel"
)

// API is the slice of the REST client the inventory editor calls.
// Satisfied by *api.Client; narrow interface for testability.
type API interface {
	Inventory(ctx context.Context) ([]domain.Category, error)
	CreateCategory(ctx context.Context, name string) (*domain.Category, error)
	UpdateCategory(ctx context.Context, cat domain.Category) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
	CreateItem(ctx context.Context, req domain.CreateItemRequest) (*domain.Item, error)
	UpdateItem(ctx context.Context, item domain.Item) (*domain.Item, error)
	DeleteItem(ctx context.Context, id int64) error
	AdjustItemQuantity(ctx context.Context, id int64, delta int) (*domain.Item, error)
	Labels(ctx context.Context) ([]domain.Label, error)
	CreateLabel(ctx context.Context, name string) (*domain.Label, error)
	UpdateLabel(ctx context.Context, l domain.Label) (*domain.Label, error)
	DeleteLabel(ctx context.Context, id int64) error
}

// Form names the dropdown form open on the inventory screen.
type Form int

const (
	FormNone Form = iota
	FormAddCategory
	FormRenameCategory
	FormAddItem
	FormEditItem
	FormAddLabel
	FormRenameLabel
	FormManualEntry
)

// Editor drives the inventory screen. Submissions are pessimistic: local
// state changes only after the server confirms, then the catalog is reloaded.
type Editor struct {
	api    API
	logger *slog.Logger

	mu      sync.Mutex
	catalog *Catalog
	labels  []domain.Label
	forms   panel.Region[Form]
}

func NewEditor(api API, logger *slog.Logger) *Editor {
	return &Editor{api: api, logger: logger, catalog: NewCatalog(nil)}
}

// Reload fetches categories and labels.
func (e *Editor) Reload(ctx context.Context) error {
	cats, err := e.api.Inventory(ctx)
	if err != nil {
		return err
	}
	labels, err := e.api.Labels(ctx)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.catalog = NewCatalog(cats)
	e.labels = labels
	e.mu.Unlock()
	return nil
}

func (e *Editor) Catalog() *Catalog {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.catalog
}

func (e *Editor) Labels() []domain.Label {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.labels
}

// ToggleForm opens f, closing any other form, or closes f if it is open.
func (e *Editor) ToggleForm(f Form) {
	e.mu.Lock()
	e.forms.Toggle(f)
	e.mu.Unlock()
}

func (e *Editor) ActiveForm() Form {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.forms.Active()
}

// submitted closes the form and reloads. A failed reload is logged only: the
// mutation itself went through.
func (e *Editor) submitted(ctx context.Context, op string) {
	e.mu.Lock()
	e.forms.Close()
	e.mu.Unlock()
	if err := e.Reload(ctx); err != nil {
		e.logger.Warn("inventory reload failed", "after", op, "error", err)
	}
}

func (e *Editor) AddCategory(ctx context.Context, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Invalid("name", "category name is required")
	}
	if e.Catalog().HasCategoryName(name, 0) {
		return nil, apperr.Invalid("name", "a category with this name already exists")
	}
	cat, err := e.api.CreateCategory(ctx, name)
	if err != nil {
		return nil, err
	}
	e.submitted(ctx, "add category")
	return cat, nil
}

func (e *Editor) RenameCategory(ctx context.Context, id int64, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Invalid("name", "category name is required")
	}
	cat, ok := e.Catalog().Category(id)
	if !ok {
		return nil, apperr.Invalid("category", "unknown category")
	}
	if e.Catalog().HasCategoryName(name, id) {
		return nil, apperr.Invalid("name", "a category with this name already exists")
	}
	cat.Name = name
	updated, err := e.api.UpdateCategory(ctx, cat)
	if err != nil {
		return nil, err
	}
	e.submitted(ctx, "rename category")
	return updated, nil
}

func (e *Editor) DeleteCategory(ctx context.Context, id int64) error {
	if err := e.api.DeleteCategory(ctx, id); err != nil {
		return err
	}
	e.submitted(ctx, "delete category")
	return nil
}

// AddItem creates an item. An empty unit becomes the default unit.
func (e *Editor) AddItem(ctx context.Context, req domain.CreateItemRequest) (*domain.Item, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, apperr.Invalid("name", "item name is required")
	}
	if req.Quantity < 0 {
		return nil, apperr.Invalid("quantity", "quantity cannot be negative")
	}
	if _, ok := e.Catalog().Category(req.CategoryID); !ok {
		return nil, apperr.Invalid("category", "unknown category")
	}
	if e.Catalog().HasItemName(req.Name, 0) {
		return nil, apperr.Invalid("name", "an item with this name already exists")
	}
	if req.Unit == "" {
		req.Unit = enum.DefaultUnit
	}
	item, err := e.api.CreateItem(ctx, req)
	if err != nil {
		return nil, err
	}
	e.submitted(ctx, "add item")
	return item, nil
}

func (e *Editor) EditItem(ctx context.Context, item domain.Item) (*domain.Item, error) {
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		return nil, apperr.Invalid("name", "item name is required")
	}
	if item.Quantity < 0 {
		return nil, apperr.Invalid("quantity", "quantity cannot be negative")
	}
	if e.Catalog().HasItemName(item.Name, item.ID) {
		return nil, apperr.Invalid("name", "an item with this name already exists")
	}
	updated, err := e.api.UpdateItem(ctx, item)
	if err != nil {
		return nil, err
	}
	e.submitted(ctx, "edit item")
	return updated, nil
}

func (e *Editor) DeleteItem(ctx context.Context, id int64) error {
	if err := e.api.DeleteItem(ctx, id); err != nil {
		return err
	}
	e.submitted(ctx, "delete item")
	return nil
}

func (e *Editor) AddLabel(ctx context.Context, name string) (*domain.Label, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Invalid("name", "label name is required")
	}
	if HasLabelName(e.Labels(), name, 0) {
		return nil, apperr.Invalid("name", "a label with this name already exists")
	}
	l, err := e.api.CreateLabel(ctx, name)
	if err != nil {
		return nil, err
	}
	e.submitted(ctx, "add label")
	return l, nil
}

func (e *Editor) RenameLabel(ctx context.Context, id int64, name string) (*domain.Label, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Invalid("name", "label name is required")
	}
	if HasLabelName(e.Labels(), name, id) {
		return nil, apperr.Invalid("name", "a label with this name already exists")
	}
	l, err := e.api.UpdateLabel(ctx, domain.Label{ID: id, Name: name})
	if err != nil {
		return nil, err
	}
	e.submitted(ctx, "rename label")
	return l, nil
}

func (e *Editor) DeleteLabel(ctx context.Context, id int64) error {
	if err := e.api.DeleteLabel(ctx, id); err != nil {
		return err
	}
	e.submitted(ctx, "delete label")
	return nil
}
