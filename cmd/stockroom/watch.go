package main

import (
	"bufio"
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kiwari-pos/stockroom/internal/history"
	"github.com/kiwari-pos/stockroom/internal/subscription"
)

// watch keeps the order list current on every poll tick, every server push
// and every manual refresh. It runs until interrupted or quit.
func (a *app) watch(ctx context.Context, args []string) error {
	fs := a.newFlags("watch")
	status := fs.String("status", "open", "open, pending, completed or all")
	plain := fs.Bool("plain", false, "reprint plain text instead of the interactive screen")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if _, err := a.signedIn(ctx); err != nil {
		return err
	}

	h := history.New(a.client, a.logger, a.now())
	if err := applyFilter(ctx, h, *status, "", ""); err != nil {
		return err
	}

	focus := subscription.NewFocus()
	newSub := func(fetch subscription.FetchFunc) *subscription.Subscription {
		return subscription.New(fetch, a.logger,
			subscription.Interval(a.cfg.PollInterval),
			&subscription.Push{
				URL:    a.cfg.WSURL,
				Token:  a.client.Token,
				Logger: a.logger,
			},
			focus,
		)
	}

	if *plain {
		go func() {
			sc := bufio.NewScanner(a.in)
			for sc.Scan() {
				focus.Notify()
			}
		}()
		return newSub(func(ctx context.Context) error {
			if err := h.Refresh(ctx); err != nil {
				return err
			}
			fmt.Fprint(a.out, "\033[H\033[2J")
			fmt.Fprintf(a.out, "updated %s, press Enter to refresh\n\n", a.now().Format("15:04:05"))
			return printOrders(a.out, h)
		}).Run(ctx)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newWatchModel(focus),
		tea.WithInput(a.in),
		tea.WithOutput(a.out),
		tea.WithAltScreen(),
	)
	sub := newSub(func(ctx context.Context) error {
		if err := h.Refresh(ctx); err != nil {
			p.Send(refreshErrMsg{err: err})
			return err
		}
		p.Send(snapshot(h, a.now()))
		return nil
	})

	subErr := make(chan error, 1)
	go func() {
		subErr <- sub.Run(ctx)
		p.Quit()
	}()

	_, err := p.Run()
	cancel()
	if serr := <-subErr; err == nil {
		err = serr
	}
	return err
}
