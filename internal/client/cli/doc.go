// Package cli is the FinTrack command-line client.
//
// Without a subcommand it starts an interactive REPL: the stored session is
// restored, a background watcher tracks server reachability and the user
// types commands (login, profile, insights, logout...). The same commands
// are available one-shot as cobra subcommands.
//
// Commands that need an account (profile, insights, prediction) go through
// session.Gate: they wait while the session is being restored or a login
// is in flight and refuse to run unless it ends up authenticated.
package cli
