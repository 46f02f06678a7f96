package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/kiwari-pos/stockroom/internal/apperr"
	"github.com/kiwari-pos/stockroom/internal/domain"
	"github.com/kiwari-pos/stockroom/internal/history"
	"github.com/kiwari-pos/stockroom/internal/inventory"
	"github.com/kiwari-pos/stockroom/internal/order"
)

const timeLayout = "2006-01-02 15:04"

// statusFilter maps the CLI status word to the list filter. "all" clears it.
func statusFilter(s string) string {
	if s == "all" {
		return ""
	}
	return s
}

// applyFilter moves the history cursor to the requested window and makes
// sure the current page has been fetched at least once.
func applyFilter(ctx context.Context, h *history.History, status, from, to string) error {
	fetched, err := h.SetStatus(ctx, statusFilter(status))
	if err != nil {
		return err
	}
	if from != "" || to != "" {
		start, err := parseDate("from", from)
		if err != nil {
			return err
		}
		end, err := parseDate("to", to)
		if err != nil {
			return err
		}
		f := h.Filter()
		if start.IsZero() {
			start = f.Start
		}
		if end.IsZero() {
			end = f.End
		}
		moved, err := h.SetRange(ctx, start, end)
		if err != nil {
			return err
		}
		fetched = fetched || moved
	}
	if !fetched {
		return h.Refresh(ctx)
	}
	return nil
}

func (a *app) orders(ctx context.Context, args []string) error {
	fs := a.newFlags("orders")
	status := fs.String("status", "open", "open, pending, completed or all")
	from := fs.String("from", "", "first day (default yesterday)")
	to := fs.String("to", "", "last day (default today)")
	page := fs.Int("page", 1, "page number")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if _, err := a.signedIn(ctx); err != nil {
		return err
	}

	h := history.New(a.client, a.logger, a.now())
	if err := applyFilter(ctx, h, *status, *from, *to); err != nil {
		return err
	}
	for p := 1; p < *page; p++ {
		moved, err := h.NextPage(ctx)
		if err != nil {
			return err
		}
		if !moved {
			break
		}
	}
	return printOrders(a.out, h)
}

func printOrders(w io.Writer, h *history.History) error {
	f := h.Filter()
	status := f.Status
	if status == "" {
		status = "all"
	}
	fmt.Fprintf(w, "%s orders from %s to %s\n", status, f.Start.Format(timeLayout), f.End.Format(timeLayout))

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "UUID\tSTATUS\tBY\tTOTAL\tCREATED")
	for _, o := range h.Orders() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", o.UUID, o.Status, o.User.Name, o.Total.StringFixed(2), o.CreatedAt.Local().Format(timeLayout))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	p := h.Pagination()
	if p.TotalPages == 0 {
		fmt.Fprintln(w, "no orders")
		return nil
	}
	fmt.Fprintf(w, "page %d of %d (%d orders)\n", p.CurrentPage, p.TotalPages, p.TotalCount)
	return nil
}

func printOrder(w io.Writer, o domain.Order, receipt order.ReceiptField) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "uuid\t%s\n", o.UUID)
	fmt.Fprintf(tw, "status\t%s\n", o.Status)
	fmt.Fprintf(tw, "receipt\t%s\n", receipt.Confirmed)
	fmt.Fprintf(tw, "created\t%s\n", o.CreatedAt.Local().Format(timeLayout))
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "LINE\tITEM\tQTY\tUNIT\tPRICE")
	for _, li := range o.Items {
		price := "-"
		if li.Price != nil {
			price = li.Price.StringFixed(2)
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n", li.OrderItemID, li.Name, li.Quantity, li.Unit, price)
	}
	fmt.Fprintln(tw)
	fmt.Fprintf(tw, "subtotal\t%s\n", o.Subtotal.StringFixed(2))
	for _, f := range o.Fees {
		fmt.Fprintf(tw, "%s\t%s\n", f.Name, f.Value.StringFixed(2))
	}
	fmt.Fprintf(tw, "total\t%s\n", o.Total.StringFixed(2))
	return tw.Flush()
}

// order runs one action against a single order: order <action> <uuid> ...
func (a *app) order(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("order needs an action and an order id: %w", errUsage)
	}
	action, id, rest := args[0], args[1], args[2:]

	st, err := a.signedIn(ctx)
	if err != nil {
		return err
	}
	m := order.NewManager(a.client, *st.User, a.logger)
	if err := m.Load(ctx, id); err != nil {
		return err
	}

	switch action {
	case "show":
	case "deliver", "undeliver":
		if err := m.SetDelivered(ctx, action == "deliver"); err != nil {
			return err
		}
	case "receipt":
		if len(rest) != 1 {
			return fmt.Errorf("order receipt needs exactly one receipt id: %w", errUsage)
		}
		if err := m.EditReceipt(rest[0]); err != nil {
			return err
		}
		if err := m.SaveReceipt(ctx); err != nil {
			return err
		}
	case "add-item":
		if err := a.addOrderItem(ctx, m, rest); err != nil {
			return err
		}
	case "remove-item":
		if len(rest) != 1 {
			return fmt.Errorf("order remove-item needs an order item id: %w", errUsage)
		}
		lineID, err := strconv.ParseInt(rest[0], 10, 64)
		if err != nil {
			return apperr.Invalid("order_item_id", "order item id must be a number")
		}
		if err := m.RequestRemoveItem(lineID); err != nil {
			return err
		}
		if err := m.ConfirmRemoveItem(ctx); err != nil {
			return err
		}
	case "delete":
		return a.deleteOrder(ctx, m, rest)
	default:
		return fmt.Errorf("unknown order action %q: %w", action, errUsage)
	}
	return printOrder(a.out, m.Order(), m.Receipt())
}

func (a *app) addOrderItem(ctx context.Context, m *order.Manager, args []string) error {
	fs := a.newFlags("add-item")
	name := fs.String("item", "", "inventory item name")
	qty := fs.Int("qty", 1, "quantity to take from stock")
	merge := fs.Bool("merge", false, "add to a line already on the order")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	ed := inventory.NewEditor(a.client, a.logger)
	if err := ed.Reload(ctx); err != nil {
		return err
	}
	item, ok := ed.Catalog().FindItem(*name)
	if !ok {
		return apperr.Invalid("item", fmt.Sprintf("no inventory item named %q", *name))
	}
	return m.AddItem(ctx, item, *qty, *merge)
}

func (a *app) deleteOrder(ctx context.Context, m *order.Manager, args []string) error {
	fs := a.newFlags("delete")
	restore := fs.Bool("restore", true, "give the order's items back to stock")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	if err := m.RequestDelete(); err != nil {
		return err
	}
	m.SetRestoreInventory(*restore)
	res, err := m.ConfirmDelete(ctx)
	if err != nil {
		return err
	}
	if len(res.Restored) > 0 {
		fmt.Fprintf(a.out, "restored stock for %d items\n", len(res.Restored))
	}
	if res.Partial != nil {
		for _, f := range res.Partial.Failures {
			fmt.Fprintf(a.out, "warning: %s: %v\n", f.Step, f.Err)
		}
	}
	fmt.Fprintf(a.out, "deleted order %s\n", m.Order().UUID)
	return nil
}
