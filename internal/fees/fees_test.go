package fees

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiwari-pos/stockroom/internal/apperr"
	"github.com/kiwari-pos/stockroom/internal/domain"
	"github.com/kiwari-pos/stockroom/internal/enum"
)

type fakeAPI struct {
	mu      sync.Mutex
	fees    []domain.Fee
	updated []domain.Fee
	failIDs map[int64]bool

	beforeUpdateFn func(fee domain.Fee)
}

func (f *fakeAPI) Fees(context.Context) ([]domain.Fee, error) {
	return f.fees, nil
}

func (f *fakeAPI) CreateFee(_ context.Context, fee domain.Fee) (*domain.Fee, error) {
	fee.ID = int64(len(f.fees) + 1)
	f.fees = append(f.fees, fee)
	return &fee, nil
}

func (f *fakeAPI) UpdateFee(_ context.Context, fee domain.Fee) (*domain.Fee, error) {
	if f.beforeUpdateFn != nil {
		f.beforeUpdateFn(fee)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated = append(f.updated, fee)
	if f.failIDs[fee.ID] {
		return nil, &apperr.RemoteError{Op: "update fee", Status: 500}
	}
	return &fee, nil
}

func (f *fakeAPI) DeleteFee(context.Context, int64) error { return nil }

func sampleFees() []domain.Fee {
	return []domain.Fee{
		{ID: 1, Name: "Tax", Type: enum.FeeTypePercentage, Value: decimal.NewFromInt(10)},
		{ID: 2, Name: "Delivery", Type: enum.FeeTypeFlat, Value: decimal.RequireFromString("2.50")},
		{ID: 3, Name: "Service", Type: enum.FeeTypePercentage, Value: decimal.NewFromInt(5)},
	}
}

func loadedTable(t *testing.T, api *fakeAPI) *Table {
	t.Helper()
	api.fees = sampleFees()
	tbl := NewTable(api, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, tbl.Load(context.Background()))
	return tbl
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		prev, in, want string
	}{
		{"", "12.5", "12.5"},
		{"", "1a2b", "12"},
		{"", "$7.25%", "7.25"},
		{"1.2", "1.2.3", "1.2"},
		{"", ".", "."},
		{"", "", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Sanitize(tt.prev, tt.in), "Sanitize(%q, %q)", tt.prev, tt.in)
	}
}

func TestSetValue_TracksChanges(t *testing.T) {
	tbl := loadedTable(t, &fakeAPI{})
	assert.False(t, tbl.HasChanges())

	got, err := tbl.SetValue(1, "11")
	require.NoError(t, err)
	assert.Equal(t, "11", got)
	assert.True(t, tbl.HasChanges())

	_, err = tbl.SetValue(1, "10")
	require.NoError(t, err)
	assert.False(t, tbl.HasChanges())

	_, err = tbl.SetValue(42, "1")
	assert.True(t, apperr.IsValidation(err))
}

func TestSave_OnlyChangedRows(t *testing.T) {
	api := &fakeAPI{}
	tbl := loadedTable(t, api)

	_, _ = tbl.SetValue(1, "12")
	_, _ = tbl.SetValue(2, "3.75")
	require.NoError(t, tbl.Save(context.Background()))

	assert.Len(t, api.updated, 2)
	assert.False(t, tbl.HasChanges())
	rows := tbl.Rows()
	assert.True(t, decimal.NewFromInt(12).Equal(rows[0].Fee.Value))
}

func TestSave_EditDuringSaveStaysDirty(t *testing.T) {
	api := &fakeAPI{}
	tbl := loadedTable(t, api)
	api.beforeUpdateFn = func(domain.Fee) {
		_, err := tbl.SetValue(1, "15")
		assert.NoError(t, err)
	}

	_, _ = tbl.SetValue(1, "12")
	require.NoError(t, tbl.Save(context.Background()))

	require.Len(t, api.updated, 1)
	assert.True(t, decimal.NewFromInt(12).Equal(api.updated[0].Value))
	rows := tbl.Rows()
	assert.True(t, decimal.NewFromInt(12).Equal(rows[0].Fee.Value))
	assert.Equal(t, "15", rows[0].Input)
	assert.True(t, tbl.HasChanges(), "the unsent edit is still pending")
}

func TestSave_PartialFailure(t *testing.T) {
	api := &fakeAPI{failIDs: map[int64]bool{2: true}}
	tbl := loadedTable(t, api)

	_, _ = tbl.SetValue(1, "12")
	_, _ = tbl.SetValue(2, "4")
	_, _ = tbl.SetValue(3, "6")
	err := tbl.Save(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSaveFailed)
	assert.True(t, apperr.IsRemote(err))
	assert.Len(t, api.updated, 3, "every update is attempted")
	assert.True(t, tbl.HasChanges(), "baseline is not advanced")
}

func TestSave_InvalidNumber(t *testing.T) {
	api := &fakeAPI{}
	tbl := loadedTable(t, api)

	_, _ = tbl.SetValue(1, "")
	err := tbl.Save(context.Background())
	assert.True(t, apperr.IsValidation(err))
	assert.Empty(t, api.updated)
}

func TestSave_NothingChanged(t *testing.T) {
	api := &fakeAPI{}
	tbl := loadedTable(t, api)
	require.NoError(t, tbl.Save(context.Background()))
	assert.Empty(t, api.updated)
}

func TestPreview(t *testing.T) {
	tbl := loadedTable(t, &fakeAPI{})
	p := tbl.Preview(decimal.NewFromInt(80))

	require.Len(t, p.Applied, 3)
	assert.Equal(t, "8", p.Applied[0].Value.String())
	assert.Equal(t, "2.5", p.Applied[1].Value.String())
	assert.Equal(t, "4", p.Applied[2].Value.String())
	assert.Equal(t, "94.5", p.Total.String())
}

func TestAdd(t *testing.T) {
	api := &fakeAPI{}
	tbl := loadedTable(t, api)

	_, err := tbl.Add(context.Background(), "Tip", "bonus", "1")
	assert.True(t, apperr.IsValidation(err))

	f, err := tbl.Add(context.Background(), "Tip", enum.FeeTypeFlat, "1.5")
	require.NoError(t, err)
	assert.Equal(t, "Tip", f.Name)
	assert.Len(t, tbl.Rows(), 4)
}

