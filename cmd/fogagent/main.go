package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/benmeehan/fog-agent/internal/cli"
)

var version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI under a signal-aware context and returns the exit code
// once the signal handler has been released.
func run(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return cli.Execute(ctx, args, version, stdout, stderr)
}
