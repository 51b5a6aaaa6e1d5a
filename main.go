// ./main.go
package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/xkilldash9x/replay-cli/cmd"
)

// main is the entry point for the replay CLI. Command-line parsing,
// configuration, and execution all live in the cmd package; main only
// provides the signal-aware context so Ctrl-C tears sessions down cleanly.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd.ExecuteContext(ctx)
}
