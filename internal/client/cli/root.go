package cli

import (
	"bufio"
	"context"

	"github.com/dmitrijs2005/fintrack/internal/client/config"
	"github.com/dmitrijs2005/fintrack/internal/logging"
	"github.com/spf13/cobra"
)

// newAppFn is a test seam for NewApp.
var newAppFn = NewApp

// NewRootCmd builds the fintrack command tree. Without a subcommand the
// interactive REPL starts.
func NewRootCmd(l logging.Logger) *cobra.Command {
	var (
		flags config.Flags
		app   *App
	)

	root := &cobra.Command{
		Use:   "fintrack",
		Short: "FinTrack command-line client",
		Long: `FinTrack command-line client.

Run without arguments for an interactive session, or use one of the
subcommands for a single action. The session token is kept in a local
SQLite file between runs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Flags(), &flags)
			if err != nil {
				return err
			}
			app, err = newAppFn(cmd.Context(), cfg, l)
			if err != nil {
				return err
			}
			app.reader = bufio.NewReader(cmd.InOrStdin())
			app.out = cmd.OutOrStdout()
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return app.Close()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			app.Root(cmd.Context())
			return nil
		},
	}
	flags.Register(root.PersistentFlags())

	root.AddCommand(
		&cobra.Command{
			Use:   "login",
			Short: "Log in and remember the session",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return app.Login(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "logout",
			Short: "Forget the stored session",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return app.Logout(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show the session state",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				app.checkOnline(cmd.Context())
				app.controller.Start(cmd.Context())
				return app.Status(cmd.Context())
			},
		},
		protectedCmd(&app, "profile", "Show the logged-in user", func(ctx context.Context, a *App) error {
			return a.Profile(ctx)
		}),
		protectedCmd(&app, "insights", "Show spending insights", func(ctx context.Context, a *App) error {
			return a.Insights(ctx, "insights")
		}),
		protectedCmd(&app, "prediction", "Show the spending prediction", func(ctx context.Context, a *App) error {
			return a.Insights(ctx, "prediction")
		}),
	)

	return root
}

// protectedCmd restores the stored session before running fn; the gate
// inside fn then decides whether it may proceed.
func protectedCmd(app **App, use, short string, fn func(context.Context, *App) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := *app
			a.controller.Start(cmd.Context())
			return fn(cmd.Context(), a)
		},
	}
}
