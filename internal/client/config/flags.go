package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/strapiclient/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// args are filtered with flagx.FilterArgs first, so flags owned by other
// components (e.g. -c) do not trip the parser.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-t", "-l", "-d", "-s"})

	fs := flag.NewFlagSet("strapiclient", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.BaseURL, "a", cfg.BaseURL, "base URL of the content API")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.Store.WebStorageDriver, "d", cfg.Store.WebStorageDriver, "kv driver")
	fs.StringVar(&cfg.Store.WebStorageDSN, "s", cfg.Store.WebStorageDSN, "kv data source")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("flags: %w", err)
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			cfg.RequestTimeout = time.Duration(*timeout) * time.Second
		}
	})
	return nil
}
