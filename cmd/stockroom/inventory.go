package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/kiwari-pos/stockroom/internal/apperr"
	"github.com/kiwari-pos/stockroom/internal/domain"
	"github.com/kiwari-pos/stockroom/internal/inventory"
)

// editor returns a loaded inventory editor for a signed-in session.
func (a *app) editor(ctx context.Context) (*inventory.Editor, error) {
	if _, err := a.signedIn(ctx); err != nil {
		return nil, err
	}
	ed := inventory.NewEditor(a.client, a.logger)
	if err := ed.Reload(ctx); err != nil {
		return nil, err
	}
	return ed, nil
}

func parseID(field, s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Invalid(field, field+" must be a positive number")
	}
	return id, nil
}

func (a *app) inventory(ctx context.Context, args []string) error {
	ed, err := a.editor(ctx)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return printInventory(a.out, ed.Catalog())
	}

	switch args[0] {
	case "add-category":
		name := strings.Join(args[1:], " ")
		cat, err := ed.AddCategory(ctx, name)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "created category %d %q\n", cat.ID, cat.Name)
	case "rm-item":
		if len(args) != 2 {
			return fmt.Errorf("inventory rm-item needs an item id: %w", errUsage)
		}
		id, err := parseID("item", args[1])
		if err != nil {
			return err
		}
		if err := ed.DeleteItem(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "deleted item %d\n", id)
	default:
		return fmt.Errorf("unknown inventory action %q: %w", args[0], errUsage)
	}
	return printInventory(a.out, ed.Catalog())
}

func printInventory(w io.Writer, cat *inventory.Catalog) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tID\tITEM\tQTY\tUNIT\tPRICE")
	for _, c := range cat.Categories() {
		if len(c.Items) == 0 {
			fmt.Fprintf(tw, "%s (%d)\t\t\t\t\t\n", c.Name, c.ID)
			continue
		}
		for i, it := range c.Items {
			label := ""
			if i == 0 {
				label = fmt.Sprintf("%s (%d)", c.Name, c.ID)
			}
			price := "-"
			if it.Price != nil {
				price = it.Price.StringFixed(2)
			}
			fmt.Fprintf(tw, "%s\t%d\t%s\t%d\t%s\t%s\n", label, it.ID, it.Name, it.Quantity, it.Unit, price)
		}
	}
	return tw.Flush()
}

func (a *app) labels(ctx context.Context, args []string) error {
	ed, err := a.editor(ctx)
	if err != nil {
		return err
	}
	if len(args) > 0 {
		switch args[0] {
		case "add":
			l, err := ed.AddLabel(ctx, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "created label %d %q\n", l.ID, l.Name)
		case "rm":
			if len(args) != 2 {
				return fmt.Errorf("labels rm needs a label id: %w", errUsage)
			}
			id, err := parseID("label", args[1])
			if err != nil {
				return err
			}
			if err := ed.DeleteLabel(ctx, id); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown labels action %q: %w", args[0], errUsage)
		}
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tLABEL")
	for _, l := range ed.Labels() {
		fmt.Fprintf(tw, "%d\t%s\n", l.ID, l.Name)
	}
	return tw.Flush()
}

// stock records a manual purchase or sale: stock buy|sell -name N ...
func (a *app) stock(ctx context.Context, args []string) error {
	if len(args) == 0 || (args[0] != "buy" && args[0] != "sell") {
		return fmt.Errorf("stock needs buy or sell: %w", errUsage)
	}
	fs := a.newFlags("stock " + args[0])
	name := fs.String("name", "", "item name")
	qty := fs.Int("qty", 1, "quantity")
	category := fs.Int64("category", 0, "category id for a new item")
	priceText := fs.String("price", "", "unit price for a new item")
	if err := parseFlags(fs, args[1:]); err != nil {
		return err
	}

	entry := inventory.Entry{Name: *name, Quantity: *qty, CategoryID: *category}
	if *priceText != "" {
		p, err := decimal.NewFromString(*priceText)
		if err != nil {
			return apperr.Invalid("price", "price must be a number")
		}
		entry.Price = &p
	}

	ed, err := a.editor(ctx)
	if err != nil {
		return err
	}
	var item *domain.Item
	if args[0] == "buy" {
		item, err = ed.Buy(ctx, entry)
	} else {
		item, err = ed.Sell(ctx, entry)
	}
	if err != nil {
		return err
	}
	if item == nil {
		fmt.Fprintf(a.out, "%s sold out and removed\n", strings.TrimSpace(*name))
		return nil
	}
	fmt.Fprintf(a.out, "%s: %d %s in stock\n", item.Name, item.Quantity, item.Unit)
	return nil
}
