package main

// Storefront is the main entry point for the application.

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gitshopapp/storefront/internal/cli"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cli.SetVersion(version)
	if err := cli.Execute(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
