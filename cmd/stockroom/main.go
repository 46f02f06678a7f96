// Command stockroom is a terminal client for the stockroom order and
// inventory API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/kiwari-pos/stockroom/internal/api"
	"github.com/kiwari-pos/stockroom/internal/apperr"
	"github.com/kiwari-pos/stockroom/internal/config"
	"github.com/kiwari-pos/stockroom/internal/cursor"
	"github.com/kiwari-pos/stockroom/internal/session"
)

const usage = `usage: stockroom [-v] <command> [arguments]

commands:
  login -email E [-password P]      sign in (password read from stdin when omitted)
  logout                            forget the stored credential
  whoami                            show the signed-in user
  orders [-status S] [-from D] [-to D] [-page N]
  order show <uuid>
  order deliver|undeliver <uuid>
  order receipt <uuid> <receipt id> (empty id reopens the order)
  order add-item <uuid> -item NAME [-qty N] [-merge]
  order remove-item <uuid> <order item id>
  order delete <uuid> [-restore=false]
  inventory                         list categories and items
  inventory add-category <name>
  inventory rm-item <id>
  labels [add <name> | rm <id>]
  stock buy|sell -name NAME [-qty N] [-category ID] [-price P]
  fees [-subtotal AMOUNT]
  fees set <id>=<value> ...
  export [-email E] -from D -to D
  watch [-status S] [-plain]        live order list, refreshed on change (r refresh, q quit)

dates are YYYY-MM-DD; status is open, pending, completed or all.
`

var (
	errUsage       = errors.New("invalid usage")
	errNotSignedIn = errors.New("not signed in, run: stockroom login")
)

type app struct {
	cfg    *config.Config
	client *api.Client
	creds  session.Store
	logger *slog.Logger
	in     io.Reader
	out    io.Writer
	now    func() time.Time
}

func newApp(cfg *config.Config, httpClient *http.Client, logger *slog.Logger, in io.Reader, out io.Writer) *app {
	return &app{
		cfg:    cfg,
		client: api.New(cfg.APIURL, httpClient),
		creds:  session.FileStore{Path: cfg.CredentialsFile},
		logger: logger,
		in:     in,
		out:    out,
		now:    time.Now,
	}
}

func main() {
	_ = godotenv.Load()

	global := flag.NewFlagSet("stockroom", flag.ContinueOnError)
	verbose := global.Bool("v", false, "log debug output to stderr")
	global.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	if err := global.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg := config.Load()
	httpClient := &http.Client{
		Timeout:   cfg.HTTPTimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := newApp(cfg, httpClient, logger, os.Stdin, os.Stdout)
	if err := a.run(ctx, global.Args()); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "error: %v\n\n%s", err, usage)
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "error:", apperr.Message(err, ""))
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "login":
		return a.login(ctx, rest)
	case "logout":
		return a.logout()
	case "whoami":
		return a.whoami(ctx)
	case "orders":
		return a.orders(ctx, rest)
	case "order":
		return a.order(ctx, rest)
	case "inventory":
		return a.inventory(ctx, rest)
	case "labels":
		return a.labels(ctx, rest)
	case "stock":
		return a.stock(ctx, rest)
	case "fees":
		return a.fees(ctx, rest)
	case "export":
		return a.export(ctx, rest)
	case "watch":
		return a.watch(ctx, rest)
	case "help", "-h", "-help":
		fmt.Fprint(a.out, usage)
		return nil
	}
	return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
}

// signedIn restores the stored session. Every command except login needs one.
func (a *app) signedIn(ctx context.Context) (session.State, error) {
	st := session.Bootstrap(ctx, a.creds, a.client, a.logger, a.now())
	if !st.Authenticated() {
		return st, errNotSignedIn
	}
	return st, nil
}

// newFlags returns a flag set whose errors are returned instead of exiting.
func (a *app) newFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%s: %v: %w", fs.Name(), err, errUsage)
	}
	return nil
}

// parseDate reads a YYYY-MM-DD day in local time. Empty input yields the
// zero time.
func parseDate(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(cursor.DateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, apperr.Invalid(field, field+" must be a YYYY-MM-DD date")
	}
	return t, nil
}
