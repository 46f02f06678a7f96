// Package export builds and sends the "e-mail me my orders" request.
package export

import (
	"context"
	"strings"
	"time"

	"github.com/kiwari-pos/stockroom/internal/apperr"
	"github.com/kiwari-pos/stockroom/internal/cursor"
	"github.com/kiwari-pos/stockroom/internal/domain"
	"github.com/kiwari-pos/stockroom/internal/enum"
)

// Exporter sends an export request.
// Satisfied by *api.Client.
type Exporter interface {
	ExportData(ctx context.Context, req domain.ExportRequest) error
}

// Form is the export form. Zero dates are unset.
type Form struct {
	Email string
	Start time.Time
	End   time.Time
}

// NewForm prefills the address with the signed-in user's.
func NewForm(user domain.User) Form {
	return Form{Email: user.Email}
}

// Request validates the form and renders it. The window covers the whole of
// the start and end days.
func (f Form) Request() (domain.ExportRequest, error) {
	email := strings.TrimSpace(f.Email)
	switch {
	case email == "":
		return domain.ExportRequest{}, apperr.Invalid("email", "email is required")
	case !domain.ValidEmail(email):
		return domain.ExportRequest{}, apperr.Invalid("email", "email is not valid")
	case f.Start.IsZero():
		return domain.ExportRequest{}, apperr.Invalid("start_date", "start date is required")
	case f.End.IsZero():
		return domain.ExportRequest{}, apperr.Invalid("end_date", "end date is required")
	}
	start, end := cursor.StartOfDay(f.Start), cursor.EndOfDay(f.End)
	if start.After(end) {
		return domain.ExportRequest{}, apperr.Invalid("start_date", "start date must not be after end date")
	}
	return domain.ExportRequest{
		Email:     email,
		Type:      enum.ExportTypeCSV,
		StartDate: start.UnixMilli(),
		EndDate:   end.UnixMilli(),
	}, nil
}

// Submit validates f and sends it. Nothing is sent for an invalid form.
func Submit(ctx context.Context, api Exporter, f Form) error {
	req, err := f.Request()
	if err != nil {
		return err
	}
	return api.ExportData(ctx, req)
}
