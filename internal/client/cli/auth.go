package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/client/client"
	"github.com/dmitrijs2005/fintrack/internal/client/session"
	"github.com/dmitrijs2005/fintrack/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

var (
	ErrNotLoggedIn = errors.New("not logged in")
	ErrLoginFailed = errors.New("login failed")
)

// Login prompts for an email and a password and hands them to
// the session controller. The password buffer is wiped before returning.
func (a *App) Login(ctx context.Context) error {
	identifier, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return a.promptFailed(err)
	}

	password, err := getPassword(a.out)
	if err != nil {
		return a.promptFailed(err)
	}
	defer common.WipeByteArray(password)

	st := a.controller.Login(ctx, identifier, string(password))
	if st.Status != session.Authenticated {
		fmt.Fprintln(a.out, st.Err)
		return fmt.Errorf("%w: %s", ErrLoginFailed, st.Err)
	}

	fmt.Fprintf(a.out, "Logged in as %s\n", st.User.DisplayName())
	return nil
}

func (a *App) promptFailed(err error) error {
	if errors.Is(err, ErrEmptyInput) {
		fmt.Fprintln(a.out, "Email and password are required")
	}
	return err
}

// Logout forgets the stored token. The server keeps no session, so there
// is nothing to call.
func (a *App) Logout(ctx context.Context) error {
	a.controller.Logout(ctx)
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// savedAtReporter is implemented by stores that know when the token was
// written.
type savedAtReporter interface {
	SavedAt(ctx context.Context) (time.Time, bool)
}

// Status prints the session phase and, when known, the user.
func (a *App) Status(ctx context.Context) error {
	st := a.controller.State()
	fmt.Fprintf(a.out, "Session: %s\n", st.Status)
	if st.User != nil {
		fmt.Fprintf(a.out, "User:    %s <%s>\n", st.User.DisplayName(), st.User.Email)
	}
	if r, ok := a.store.(savedAtReporter); ok && st.Status == session.Authenticated {
		if at, ok := r.SavedAt(ctx); ok {
			fmt.Fprintf(a.out, "Saved:   %s\n", at.Local().Format(time.DateTime))
		}
	}
	if st.Err != "" {
		fmt.Fprintf(a.out, "Note:    %s\n", st.Err)
	}
	if m := a.Mode(); m != "" {
		fmt.Fprintf(a.out, "Server:  %s\n", m)
	}
	return nil
}

// Profile prints the authenticated user's details.
func (a *App) Profile(ctx context.Context) error {
	st, err := a.requireSession(ctx)
	if err != nil {
		return err
	}

	u := st.User
	fmt.Fprintf(a.out, "ID:       %s\n", u.ID)
	fmt.Fprintf(a.out, "Email:    %s\n", u.Email)
	fmt.Fprintf(a.out, "Username: %s\n", u.Username)
	fmt.Fprintf(a.out, "Name:     %s\n", u.DisplayName())
	return nil
}

// Insights fetches an insight of the given kind ("insights" or
// "prediction") for the current user and prints it as indented JSON.
func (a *App) Insights(ctx context.Context, kind string) error {
	st, err := a.requireSession(ctx)
	if err != nil {
		return err
	}

	raw, err := a.api.Insights(ctx, st.Token, kind, st.User.ID)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			a.controller.Logout(ctx)
			fmt.Fprintln(a.out, session.MsgSessionExpired)
			return ErrNotLoggedIn
		}
		fmt.Fprintln(a.out, "Insights unavailable:", err)
		return err
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		buf.Reset()
		buf.Write(raw)
	}
	fmt.Fprintln(a.out, buf.String())
	return nil
}

// requireSession waits for the session to settle and lets the command run
// only when it ends up authenticated.
func (a *App) requireSession(ctx context.Context) (session.State, error) {
	st, d := a.gate.Await(ctx)
	switch d {
	case session.Render:
		return st, nil
	case session.Redirect:
		if st.Err != "" {
			fmt.Fprintln(a.out, st.Err)
		}
		fmt.Fprintln(a.out, "Please log in first")
		return st, ErrNotLoggedIn
	default:
		if err := ctx.Err(); err != nil {
			return st, err
		}
		return st, ErrNotLoggedIn
	}
}
