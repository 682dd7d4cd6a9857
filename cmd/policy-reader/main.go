// Command policy-reader serves document retrieval tools over MCP and the
// command line.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/policy-reader/internal/adapters/driving/cli"
	"github.com/custodia-labs/policy-reader/internal/app"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx, version, app.Bootstrap); err != nil {
		// cobra has already printed the error.
		stop()
		os.Exit(1)
	}
}
