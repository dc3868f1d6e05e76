package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/samvad-hq/samvad-webui-client/internal/cli"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return cli.Execute(ctx, os.Args[1:], cli.Options{})
}
