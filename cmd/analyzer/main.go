package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"pagespeed-campaign/internal/cli"
	"pagespeed-campaign/internal/shared/config"
	"pagespeed-campaign/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	defer telemetry.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand(cli.Deps{Config: cfg}).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		telemetry.Sync()
		os.Exit(1)
	}
}
