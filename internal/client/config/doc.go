// Package config loads runtime configuration for the FinTrack CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file named by --config / -c.
//  3. Command-line flags explicitly set by the user.
//
// Flags are registered on the cobra root command (see Flags.Register), so
// every subcommand and the REPL share them.
//
//	-a, --server string      base URL of the API (http://host:port)
//	-f, --db string          SQLite file holding the session
//	-t, --timeout duration   per-request timeout
//	-i, --interval duration  online status check interval
//
// # JSON schema
//
// Durations use timex.Duration, so values can be strings like "10s" or
// integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "http://127.0.0.1:5001",
//	  "database_dsn": "session.db",
//	  "request_timeout": "10s",
//	  "online_check_interval": "3s"
//	}
package config
