package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/timex"
	"github.com/spf13/pflag"
)

// Config holds runtime settings for the FinTrack CLI.
//
// Fields:
//   - ServerEndpointAddr: base URL of the JSON API.
//   - DatabaseDSN: SQLite file that keeps the session token.
//   - RequestTimeout: upper bound for a single API call.
//   - OnlineCheckInterval: how often the REPL probes server reachability.
type Config struct {
	ServerEndpointAddr  string
	DatabaseDSN         string
	RequestTimeout      time.Duration
	OnlineCheckInterval time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "http://127.0.0.1:5001"
	c.DatabaseDSN = "session.db"
	c.RequestTimeout = 10 * time.Second
	c.OnlineCheckInterval = 3 * time.Second
}

// JsonConfig is the on-disk shape of the CLI configuration.
type JsonConfig struct {
	ServerEndpointAddr  string         `json:"server_endpoint_addr"`
	DatabaseDSN         string         `json:"database_dsn"`
	RequestTimeout      timex.Duration `json:"request_timeout"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
}

// parseJson overlays values present in the file at path onto c.
func parseJson(c *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if jc.ServerEndpointAddr != "" {
		c.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.DatabaseDSN != "" {
		c.DatabaseDSN = jc.DatabaseDSN
	}
	if jc.RequestTimeout.Duration != 0 {
		c.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.OnlineCheckInterval.Duration != 0 {
		c.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	return nil
}

// Flags receives the raw command-line values.
type Flags struct {
	ConfigFile          string
	ServerEndpointAddr  string
	DatabaseDSN         string
	RequestTimeout      time.Duration
	OnlineCheckInterval time.Duration
}

// Register adds the CLI flags to fs with the defaults as their defaults.
func (f *Flags) Register(fs *pflag.FlagSet) {
	var d Config
	d.LoadDefaults()

	fs.StringVarP(&f.ConfigFile, "config", "c", "", "path to a JSON config file")
	fs.StringVarP(&f.ServerEndpointAddr, "server", "a", d.ServerEndpointAddr, "base URL of the API")
	fs.StringVarP(&f.DatabaseDSN, "db", "f", d.DatabaseDSN, "SQLite file holding the session")
	fs.DurationVarP(&f.RequestTimeout, "timeout", "t", d.RequestTimeout, "per-request timeout")
	fs.DurationVarP(&f.OnlineCheckInterval, "interval", "i", d.OnlineCheckInterval, "online status check interval")
}

// Load builds a Config from defaults, the optional JSON file and the
// flags the user actually set on fs.
func Load(fs *pflag.FlagSet, f *Flags) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if f.ConfigFile != "" {
		if err := parseJson(cfg, f.ConfigFile); err != nil {
			return nil, err
		}
	}

	if fs.Changed("server") {
		cfg.ServerEndpointAddr = f.ServerEndpointAddr
	}
	if fs.Changed("db") {
		cfg.DatabaseDSN = f.DatabaseDSN
	}
	if fs.Changed("timeout") {
		cfg.RequestTimeout = f.RequestTimeout
	}
	if fs.Changed("interval") {
		cfg.OnlineCheckInterval = f.OnlineCheckInterval
	}

	if cfg.RequestTimeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive, got %s", cfg.RequestTimeout)
	}
	if cfg.OnlineCheckInterval <= 0 {
		return nil, fmt.Errorf("interval must be positive, got %s", cfg.OnlineCheckInterval)
	}
	return cfg, nil
}
