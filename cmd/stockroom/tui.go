package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kiwari-pos/stockroom/internal/history"
	"github.com/kiwari-pos/stockroom/internal/subscription"
)

var (
	docStyle = lipgloss.NewStyle().Margin(1, 2)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#0a84ff")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#ff453a")).
			Padding(0, 1)
)

// snapshotMsg carries one fetched history page into the watch screen.
type snapshotMsg struct {
	title  string
	footer string
	rows   []table.Row
	at     time.Time
}

type refreshErrMsg struct{ err error }

func snapshot(h *history.History, now time.Time) snapshotMsg {
	f := h.Filter()
	status := f.Status
	if status == "" {
		status = "all"
	}
	msg := snapshotMsg{
		title: fmt.Sprintf("%s orders from %s to %s", status, f.Start.Format(timeLayout), f.End.Format(timeLayout)),
		at:    now,
	}
	for _, o := range h.Orders() {
		msg.rows = append(msg.rows, table.Row{
			o.UUID, o.Status, o.User.Name, o.Total.StringFixed(2), o.CreatedAt.Local().Format(timeLayout),
		})
	}
	if p := h.Pagination(); p.TotalPages == 0 {
		msg.footer = "no orders"
	} else {
		msg.footer = fmt.Sprintf("page %d of %d (%d orders)", p.CurrentPage, p.TotalPages, p.TotalCount)
	}
	return msg
}

type watchModel struct {
	orders table.Model
	focus  *subscription.Focus
	title  string
	footer string
	at     time.Time
	err    error
}

func newWatchModel(focus *subscription.Focus) watchModel {
	columns := []table.Column{
		{Title: "UUID", Width: 36},
		{Title: "STATUS", Width: 10},
		{Title: "BY", Width: 16},
		{Title: "TOTAL", Width: 10},
		{Title: "CREATED", Width: 16},
	}
	return watchModel{
		orders: table.New(
			table.WithColumns(columns),
			table.WithFocused(true),
			table.WithHeight(12),
		),
		focus: focus,
		title: "loading orders...",
	}
}

func (m watchModel) Init() tea.Cmd {
	return nil
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r", "enter":
			m.focus.Notify()
			return m, nil
		}
	case tea.WindowSizeMsg:
		if h := msg.Height - 8; h > 3 {
			m.orders.SetHeight(h)
		}
	case snapshotMsg:
		m.title, m.footer, m.at, m.err = msg.title, msg.footer, msg.at, nil
		m.orders.SetRows(msg.rows)
		return m, nil
	case refreshErrMsg:
		m.err = msg.err
		return m, nil
	}

	var cmd tea.Cmd
	m.orders, cmd = m.orders.Update(msg)
	return m, cmd
}

func (m watchModel) View() string {
	s := titleStyle.Render(m.title) + "\n\n" + m.orders.View() + "\n" + m.footer + "\n"
	if !m.at.IsZero() {
		s += infoStyle.Render("updated "+m.at.Format("15:04:05")) + "\n"
	}
	if m.err != nil {
		s += errorStyle.Render(m.err.Error()) + "\n"
	}
	s += "\nPress 'r' to refresh, 'q' to quit\n"
	return docStyle.Render(s)
}
