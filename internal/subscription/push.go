package subscription

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kiwari-pos/stockroom/internal/domain"
)

const defaultRetry = 5 * time.Second

// Push fires on every order event received from the server's websocket
// stream. A dropped connection is redialled after Retry.
type Push struct {
	URL    string
	Token  func() string
	Dialer *websocket.Dialer
	Retry  time.Duration
	Logger *slog.Logger
}

func (p *Push) Run(ctx context.Context, kick func()) error {
	retry := p.Retry
	if retry <= 0 {
		retry = defaultRetry
	}
	for {
		err := p.listen(ctx, kick)
		if ctx.Err() != nil {
			return nil
		}
		p.Logger.Warn("order event stream lost", "error", err, "retry_in", retry)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(retry):
		}
	}
}

func (p *Push) listen(ctx context.Context, kick func()) error {
	target, err := url.Parse(p.URL)
	if err != nil {
		return err
	}
	q := target.Query()
	q.Set("token", p.Token())
	target.RawQuery = q.Encode()

	dialer := p.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	conn, _, err := dialer.DialContext(ctx, target.String(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	p.Logger.Debug("order event stream connected")
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		n, err := countEvents(msg)
		if err != nil {
			p.Logger.Warn("ignoring malformed order event", "error", err)
			continue
		}
		if n > 0 {
			kick()
		}
	}
}

// countEvents counts the order events in a frame. The server batches queued
// events into one frame separated by newlines.
func countEvents(msg []byte) (int, error) {
	dec := json.NewDecoder(bytes.NewReader(msg))
	n := 0
	for {
		var ev domain.Event
		err := dec.Decode(&ev)
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		if ev.OrderID != "" {
			n++
		}
	}
}
