// Command test-traffic seeds a running triage server with sample
// developers and drives issue lifecycles against it.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/triage/internal/traffic"
	"github.com/okian/triage/pkg/logger"
)

func main() {
	var (
		baseURL     = flag.String("url", "http://localhost:9090", "base URL of the triage server")
		developers  = flag.Int("developers", 5, "number of sample developers to seed")
		issues      = flag.Int("issues", 20, "number of issue lifecycles to drive")
		concurrency = flag.Int("concurrency", 4, "max in-flight lifecycles")
		seed        = flag.Int64("seed", 42, "RNG seed for reproducible runs")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := traffic.NewRunner(*baseURL,
		traffic.WithDevelopers(*developers),
		traffic.WithIssues(*issues),
		traffic.WithConcurrency(*concurrency),
		traffic.WithSeed(*seed),
	)
	if err := runner.Run(ctx); err != nil {
		logger.Get().Error(ctx, "traffic run failed", logger.Error(err))
		os.Exit(1)
	}
}
