// Package subscription keeps a view fresh by running one fetch function
// whenever any of its triggers fires.
package subscription

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// FetchFunc reloads the subscribed data.
type FetchFunc func(ctx context.Context) error

// Trigger asks for a refetch by calling kick. Run blocks until ctx is done.
type Trigger interface {
	Run(ctx context.Context, kick func()) error
}

// Subscription serialises fetches: at most one runs at a time and at most
// one more is queued, however many triggers fire meanwhile.
type Subscription struct {
	fetch    FetchFunc
	triggers []Trigger
	logger   *slog.Logger
	kicks    chan struct{}
}

func New(fetch FetchFunc, logger *slog.Logger, triggers ...Trigger) *Subscription {
	return &Subscription{
		fetch:    fetch,
		triggers: triggers,
		logger:   logger.With("component", "subscription"),
		kicks:    make(chan struct{}, 1),
	}
}

// Kick requests a refetch. It never blocks.
func (s *Subscription) Kick() {
	select {
	case s.kicks <- struct{}{}:
	default:
	}
}

// Run fetches once, then again on every trigger, until ctx is done. Fetch
// errors are logged and do not stop the subscription.
func (s *Subscription) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	s.Kick()
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-s.kicks:
				if err := s.fetch(ctx); err != nil && ctx.Err() == nil {
					s.logger.Error("refresh failed", "error", err)
				}
			}
		}
	})
	for _, t := range s.triggers {
		t := t
		g.Go(func() error {
			return t.Run(ctx, s.Kick)
		})
	}
	return g.Wait()
}

// Interval fires every d.
type Interval time.Duration

func (d Interval) Run(ctx context.Context, kick func()) error {
	ticker := time.NewTicker(time.Duration(d))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			kick()
		}
	}
}

// Focus fires each time the view regains focus.
type Focus struct {
	ch chan struct{}
}

func NewFocus() *Focus {
	return &Focus{ch: make(chan struct{}, 1)}
}

// Notify reports a focus regain. It never blocks.
func (f *Focus) Notify() {
	select {
	case f.ch <- struct{}{}:
	default:
	}
}

func (f *Focus) Run(ctx context.Context, kick func()) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-f.ch:
			kick()
		}
	}
}
