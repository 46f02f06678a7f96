package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/kiwari-pos/stockroom/internal/apperr"
	"github.com/kiwari-pos/stockroom/internal/export"
	"github.com/kiwari-pos/stockroom/internal/fees"
)

func (a *app) fees(ctx context.Context, args []string) error {
	if _, err := a.signedIn(ctx); err != nil {
		return err
	}
	table := fees.NewTable(a.client, a.logger)
	if err := table.Load(ctx); err != nil {
		return err
	}

	if len(args) > 0 && args[0] == "set" {
		return a.setFees(ctx, table, args[1:])
	}

	fs := a.newFlags("fees")
	subtotal := fs.String("subtotal", "", "show what the fees add to this amount")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tVALUE")
	for _, r := range table.Rows() {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", r.Fee.ID, r.Fee.Name, r.Fee.Type, r.Input)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if *subtotal == "" {
		return nil
	}

	amount, err := decimal.NewFromString(*subtotal)
	if err != nil {
		return apperr.Invalid("subtotal", "subtotal must be a number")
	}
	p := table.Preview(amount)
	fmt.Fprintln(a.out)
	tw = tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "subtotal\t%s\n", p.Subtotal.StringFixed(2))
	for _, f := range p.Applied {
		fmt.Fprintf(tw, "%s\t%s\n", f.Name, f.Value.StringFixed(2))
	}
	fmt.Fprintf(tw, "total\t%s\n", p.Total.StringFixed(2))
	return tw.Flush()
}

// setFees applies id=value pairs and saves every changed row at once.
func (a *app) setFees(ctx context.Context, table *fees.Table, pairs []string) error {
	if len(pairs) == 0 {
		return fmt.Errorf("fees set needs at least one id=value: %w", errUsage)
	}
	for _, pair := range pairs {
		idText, value, ok := strings.Cut(pair, "=")
		if !ok {
			return fmt.Errorf("%q is not id=value: %w", pair, errUsage)
		}
		id, err := parseID("fee", idText)
		if err != nil {
			return err
		}
		if _, err := table.SetValue(id, value); err != nil {
			return err
		}
	}
	if !table.HasChanges() {
		fmt.Fprintln(a.out, "nothing changed")
		return nil
	}
	if err := table.Save(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "fees saved")
	return nil
}

func (a *app) export(ctx context.Context, args []string) error {
	st, err := a.signedIn(ctx)
	if err != nil {
		return err
	}
	form := export.NewForm(*st.User)

	fs := a.newFlags("export")
	fs.StringVar(&form.Email, "email", form.Email, "address to send the export to")
	from := fs.String("from", "", "first day")
	to := fs.String("to", "", "last day")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if form.Start, err = parseDate("start_date", *from); err != nil {
		return err
	}
	if form.End, err = parseDate("end_date", *to); err != nil {
		return err
	}

	if err := export.Submit(ctx, a.client, form); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "export requested, it will be sent to %s\n", strings.TrimSpace(form.Email))
	return nil
}
