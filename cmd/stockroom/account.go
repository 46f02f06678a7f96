package main

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/kiwari-pos/stockroom/internal/session"
)

func (a *app) login(ctx context.Context, args []string) error {
	fs := a.newFlags("login")
	email := fs.String("email", "", "account e-mail")
	password := fs.String("password", "", "account password")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *password == "" {
		line, err := bufio.NewReader(a.in).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read password: %w", err)
		}
		*password = strings.TrimRight(line, "\r\n")
	}

	st, err := session.Login(ctx, a.creds, a.client, *email, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "signed in as %s (%s)\n", st.User.Name, st.User.Role)
	return nil
}

func (a *app) logout() error {
	if err := session.Logout(a.creds, a.client); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "signed out")
	return nil
}

func (a *app) whoami(ctx context.Context) error {
	st, err := a.signedIn(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "id\t%d\n", st.User.ID)
	fmt.Fprintf(tw, "name\t%s\n", st.User.Name)
	fmt.Fprintf(tw, "email\t%s\n", st.User.Email)
	fmt.Fprintf(tw, "role\t%s\n", st.User.Role)
	return tw.Flush()
}
