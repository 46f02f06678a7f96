// Package cursor holds the page and filter window of the order history list.
package cursor

import (
	"time"

	"github.com/kiwari-pos/stockroom/internal/apperr"
	"github.com/kiwari-pos/stockroom/internal/domain"
	"github.com/kiwari-pos/stockroom/internal/enum"
)

// DateLayout is the wire format of start_date and end_date.
const DateLayout = "2006-01-02"

// StartOfDay returns 00:00:00.000 of t's day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns 23:59:59.999 of t's day in t's location.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// Filter is the date window and status the list is restricted to. An empty
// Status means every status.
type Filter struct {
	Start  time.Time
	End    time.Time
	Status string
}

// DefaultFilter covers yesterday and today, open orders only.
func DefaultFilter(now time.Time) Filter {
	return Filter{
		Start:  StartOfDay(now.AddDate(0, 0, -1)),
		End:    EndOfDay(now),
		Status: enum.OrderStatusOpen,
	}
}

// Cursor is not safe for concurrent use.
type Cursor struct {
	page        int
	filter      Filter
	hasNext     bool
	hasPrevious bool
}

func New(now time.Time) *Cursor {
	return &Cursor{page: 1, filter: DefaultFilter(now)}
}

func (c *Cursor) Page() int      { return c.page }
func (c *Cursor) Filter() Filter { return c.filter }

// HasNext and HasPrevious report the last server-provided flags.
func (c *Cursor) HasNext() bool     { return c.hasNext }
func (c *Cursor) HasPrevious() bool { return c.hasPrevious }

// Query renders the cursor for GET /orders.
func (c *Cursor) Query() domain.OrderQuery {
	return domain.OrderQuery{
		Page:      c.page,
		StartDate: c.filter.Start.Format(DateLayout),
		EndDate:   c.filter.End.Format(DateLayout),
		Status:    c.filter.Status,
	}
}

// Observe records the pagination block of a response.
func (c *Cursor) Observe(p domain.Pagination) {
	if p.CurrentPage > 0 {
		c.page = p.CurrentPage
	}
	c.hasNext = p.HasNext
	c.hasPrevious = p.HasPrevious
}

// Next moves one page forward if the server said there is one. The flags are
// cleared until the next response is observed.
func (c *Cursor) Next() bool {
	if !c.hasNext {
		return false
	}
	c.page++
	c.hasNext, c.hasPrevious = false, false
	return true
}

// Previous moves one page back if the server said there is one. The page
// never drops below 1.
func (c *Cursor) Previous() bool {
	if !c.hasPrevious {
		return false
	}
	c.page = max(c.page-1, 1)
	c.hasNext, c.hasPrevious = false, false
	return true
}

// SetStatus changes the status filter and reports whether it changed.
func (c *Cursor) SetStatus(status string) (bool, error) {
	if status != "" && !enum.IsOrderStatus(status) {
		return false, apperr.Invalid("status", "unknown order status")
	}
	if status == c.filter.Status {
		return false, nil
	}
	c.filter.Status = status
	c.resetPage()
	return true, nil
}

// SetRange changes the date window. start is moved to the beginning of its
// day and end to the end of its day. An inverted window is rejected and the
// cursor is left as it was.
func (c *Cursor) SetRange(start, end time.Time) (bool, error) {
	if start.IsZero() || end.IsZero() {
		return false, apperr.Invalid("date", "start and end dates are required")
	}
	start, end = StartOfDay(start), EndOfDay(end)
	if start.After(end) {
		return false, apperr.Invalid("date", "start date must not be after end date")
	}
	if start.Equal(c.filter.Start) && end.Equal(c.filter.End) {
		return false, nil
	}
	c.filter.Start, c.filter.End = start, end
	c.resetPage()
	return true, nil
}

// SetStart changes only the start of the window.
func (c *Cursor) SetStart(start time.Time) (bool, error) {
	return c.SetRange(start, c.filter.End)
}

// SetEnd changes only the end of the window.
func (c *Cursor) SetEnd(end time.Time) (bool, error) {
	return c.SetRange(c.filter.Start, end)
}

func (c *Cursor) resetPage() {
	c.page = 1
	c.hasNext, c.hasPrevious = false, false
}
