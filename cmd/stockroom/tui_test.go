package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiwari-pos/stockroom/internal/subscription"
)

func TestWatchModelShowsSnapshot(t *testing.T) {
	m := newWatchModel(subscription.NewFocus())
	at := time.Date(2024, 5, 1, 9, 30, 0, 0, time.Local)

	next, cmd := m.Update(snapshotMsg{
		title:  "open orders",
		footer: "page 1 of 1 (1 orders)",
		rows:   []table.Row{{"0f8c", "open", "Admin", "12.00", "2024-05-01 09:00"}},
		at:     at,
	})
	assert.Nil(t, cmd)
	view := next.View()
	assert.Contains(t, view, "open orders")
	assert.Contains(t, view, "page 1 of 1 (1 orders)")
	assert.Contains(t, view, "updated 09:30:00")
	assert.Len(t, next.(watchModel).orders.Rows(), 1)

	next, _ = next.Update(refreshErrMsg{err: errors.New("server unreachable")})
	assert.Contains(t, next.View(), "server unreachable")
	assert.Len(t, next.(watchModel).orders.Rows(), 1, "a failed refresh keeps the last rows")
}

func TestWatchModelKeys(t *testing.T) {
	focus := subscription.NewFocus()
	m := newWatchModel(focus)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	assert.Nil(t, cmd)

	ctx, cancel := context.WithCancel(context.Background())
	kicked := make(chan struct{}, 1)
	go focus.Run(ctx, func() {
		kicked <- struct{}{}
		cancel()
	})
	select {
	case <-kicked:
	case <-time.After(time.Second):
		t.Fatal("refresh key did not notify focus")
	}

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
