package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// buildID is set at link time: -ldflags "-X main.buildID=$(git rev-parse --short HEAD)".
var buildID = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := buildRootCmd(buildID).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "mlserved:", err)
		os.Exit(1)
	}
}
