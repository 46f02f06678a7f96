// Package fees is the extra fee and tax table: editable values, bulk save
// and a total preview.
package fees

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/kiwari-pos/stockroom/internal/apperr"
	"github.com/kiwari-pos/stockroom/internal/domain"
	"github.com/kiwari-pos/stockroom/internal/enum"
)

// ErrSaveFailed is returned when at least one fee update of a bulk save
// failed. Updates that went through are not rolled back.
var ErrSaveFailed = errors.New("failed to save fee changes")

// API is the slice of the REST client the fee table calls.
// Satisfied by *api.Client; narrow interface for testability.
type API interface {
	Fees(ctx context.Context) ([]domain.Fee, error)
	CreateFee(ctx context.Context, f domain.Fee) (*domain.Fee, error)
	UpdateFee(ctx context.Context, f domain.Fee) (*domain.Fee, error)
	DeleteFee(ctx context.Context, id int64) error
}

// Row is one fee with its text input and the last saved text.
type Row struct {
	Fee   domain.Fee
	Input string
	saved string
}

func (r Row) Changed() bool { return r.Input != r.saved }

type Table struct {
	api    API
	logger *slog.Logger

	mu   sync.Mutex
	rows []Row
}

func NewTable(api API, logger *slog.Logger) *Table {
	return &Table{api: api, logger: logger.With("component", "fees")}
}

// Load replaces the table with the server's fees.
func (t *Table) Load(ctx context.Context) error {
	fees, err := t.api.Fees(ctx)
	if err != nil {
		return err
	}
	rows := make([]Row, len(fees))
	for i, f := range fees {
		v := f.Value.String()
		rows[i] = Row{Fee: f, Input: v, saved: v}
	}
	t.mu.Lock()
	t.rows = rows
	t.mu.Unlock()
	return nil
}

func (t *Table) Rows() []Row {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Row(nil), t.rows...)
}

// Sanitize keeps the digits and decimal point of text. Input with more than
// one decimal point is refused and prev is returned.
func Sanitize(prev, text string) string {
	var b strings.Builder
	dots := 0
	for _, r := range text {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.':
			dots++
			b.WriteRune(r)
		}
	}
	if dots > 1 {
		return prev
	}
	return b.String()
}

// SetValue edits the input of fee id and returns the sanitised text.
func (t *Table) SetValue(id int64, text string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.rows {
		if t.rows[i].Fee.ID == id {
			t.rows[i].Input = Sanitize(t.rows[i].Input, text)
			return t.rows[i].Input, nil
		}
	}
	return "", apperr.Invalid("fee", "unknown fee")
}

// HasChanges reports whether any input differs from its saved value.
func (t *Table) HasChanges() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, r := range t.rows {
		if r.Changed() {
			return true
		}
	}
	return false
}

// Save sends every changed fee at once and waits for all of them. If any
// update fails the saved values stay where they were and ErrSaveFailed is
// returned, joined with the individual errors.
func (t *Table) Save(ctx context.Context) error {
	t.mu.Lock()
	var changed []domain.Fee
	sent := make(map[int64]string)
	for _, r := range t.rows {
		if !r.Changed() {
			continue
		}
		v, err := decimal.NewFromString(r.Input)
		if err != nil {
			t.mu.Unlock()
			return apperr.Invalid(r.Fee.Name, "value must be a number")
		}
		f := r.Fee
		f.Value = v
		changed = append(changed, f)
		sent[f.ID] = r.Input
	}
	t.mu.Unlock()
	if len(changed) == 0 {
		return nil
	}

	errs := make([]error, len(changed))
	var g errgroup.Group
	for i, f := range changed {
		i, f := i, f
		g.Go(func() error {
			if _, err := t.api.UpdateFee(ctx, f); err != nil {
				t.logger.Error("failed to update fee", "fee_id", f.ID, "error", err)
				errs[i] = err
			}
			return nil
		})
	}
	_ = g.Wait()
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for _, f := range changed {
		for i := range t.rows {
			if t.rows[i].Fee.ID == f.ID {
				t.rows[i].Fee.Value = f.Value
				t.rows[i].saved = sent[f.ID]
			}
		}
	}
	return nil
}

// Add creates a fee and reloads the table.
func (t *Table) Add(ctx context.Context, name, feeType, value string) (*domain.Fee, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Invalid("name", "fee name is required")
	}
	if !enum.IsFeeType(feeType) {
		return nil, apperr.Invalid("type", "fee type must be percentage or flat")
	}
	v, err := decimal.NewFromString(Sanitize("", value))
	if err != nil {
		return nil, apperr.Invalid("value", "value must be a number")
	}
	f, err := t.api.CreateFee(ctx, domain.Fee{Name: name, Type: feeType, Value: v})
	if err != nil {
		return nil, err
	}
	return f, t.Load(ctx)
}

// Remove deletes a fee and reloads the table.
func (t *Table) Remove(ctx context.Context, id int64) error {
	if err := t.api.DeleteFee(ctx, id); err != nil {
		return err
	}
	return t.Load(ctx)
}

// Preview is the display breakdown of a subtotal with the saved fees applied.
type Preview struct {
	Subtotal decimal.Decimal
	Applied  []domain.AppliedFee
	Total    decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// Apply computes the amount fee f adds to subtotal.
func Apply(f domain.Fee, subtotal decimal.Decimal) decimal.Decimal {
	if f.Type == enum.FeeTypePercentage {
		return subtotal.Mul(f.Value).Div(hundred).Round(2)
	}
	return f.Value
}

// PreviewFees applies fees to subtotal.
func PreviewFees(fees []domain.Fee, subtotal decimal.Decimal) Preview {
	p := Preview{Subtotal: subtotal, Total: subtotal}
	for _, f := range fees {
		amount := Apply(f, subtotal)
		p.Applied = append(p.Applied, domain.AppliedFee{ID: f.ID, Name: f.Name, Value: amount})
		p.Total = p.Total.Add(amount)
	}
	return p
}

// Preview applies the table's saved fee values to subtotal.
func (t *Table) Preview(subtotal decimal.Decimal) Preview {
	t.mu.Lock()
	fees := make([]domain.Fee, len(t.rows))
	for i, r := range t.rows {
		fees[i] = r.Fee
	}
	t.mu.Unlock()
	return PreviewFees(fees, subtotal)
}
