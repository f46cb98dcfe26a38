package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/nbaelo/internal/verify"
	"github.com/okian/nbaelo/pkg/logger"
)

// Default configuration constants.
const (
	defaultTop         = 10
	defaultTolerance   = 5.0
	defaultTimeout     = 2 * time.Minute
	defaultTestTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL   = flag.String("url", "http://localhost:9080", "Base URL of the service")
		top       = flag.Int("top", defaultTop, "Number of entries to print")
		tolerance = flag.Float64("tolerance", defaultTolerance, "Allowed drift of the mean rating from 1505")
		timeout   = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		verbose   = flag.Bool("verbose", false, "Enable debug logging")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	cfg := &verify.Config{
		BaseURL:   *baseURL,
		Timeout:   *timeout,
		Top:       *top,
		Tolerance: *tolerance,
	}
	if _, err := verify.Run(ctx, cfg, logger.Named("verify")); err != nil {
		os.Stderr.WriteString("verification failed: " + err.Error() + "\n")
		cancel()
		os.Exit(1)
	}
}
