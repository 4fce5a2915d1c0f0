package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/fintrack/internal/flagx"
)

// parseFlags populates server Config fields from command-line flags.
//
// Supported flags:
//
//	-a string     HTTP bind address (e.g., ":5001")
//	-g string     gRPC bind address (e.g., ":50051")
//	-d string     PostgreSQL DSN
//	-s string     token signing secret
//	-t duration   token validity (e.g., "24h")
//	-k int        bcrypt cost
//	-i string     insights service URL, empty to disable
//	-seed         create the demo account
//	-w duration   shutdown timeout
//
// os.Args is first filtered to the flags handled here so the -c/-config
// flag does not collide.
func parseFlags(config *Config) {
	args := flagx.Filter(os.Args[1:], []string{"a", "g", "d", "s", "t", "k", "i", "w"}, "seed")

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "gRPC address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "token signing secret")
	fs.DurationVar(&config.TokenValidityDuration, "t", config.TokenValidityDuration, "token validity")
	fs.IntVar(&config.BcryptCost, "k", config.BcryptCost, "bcrypt cost")
	fs.StringVar(&config.AIServiceURL, "i", config.AIServiceURL, "insights service URL")
	fs.BoolVar(&config.SeedDemoAccount, "seed", config.SeedDemoAccount, "create the demo account")
	fs.DurationVar(&config.ShutdownTimeout, "w", config.ShutdownTimeout, "shutdown timeout")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
