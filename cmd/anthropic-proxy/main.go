package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/m0n0x41d/anthropic-proxy/cmd/anthropic-proxy/commands"
)

// Set through -ldflags at release build time.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := commands.Execute(ctx, os.Args, version, commit); err != nil {
		// The log pipeline may not be installed yet when this fires, so the
		// failure goes to stderr directly.
		fmt.Fprintln(os.Stderr, "anthropic-proxy:", err)
		os.Exit(1)
	}
}
