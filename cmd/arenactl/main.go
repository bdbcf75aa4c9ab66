// Package main runs the arenactl operator CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/louisbranch/ironarena/internal/cmd/arenactl"
	"github.com/louisbranch/ironarena/internal/platform/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := arenactl.Run(ctx, os.Args[1:], os.Stdout); err != nil {
		config.Exitf("Error: %v", err)
	}
}
