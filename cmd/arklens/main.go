// Command arklens merges a species-management roster with a
// conservation-status registry and reports the results.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/arkstack-labs/arklens/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		os.Exit(1)
	}
}
