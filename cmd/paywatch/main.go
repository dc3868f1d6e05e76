// Command paywatch runs the payment watcher as a long-lived service. It takes
// all settings from the environment and has no flags, so it can run under a
// process supervisor or container runtime. `webuictl watch` runs the same loop
// from the CLI for interactive and one-shot use.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samvad-hq/samvad-webui-client/internal/app"
	"github.com/samvad-hq/samvad-webui-client/internal/config"
	"github.com/samvad-hq/samvad-webui-client/internal/logger"
	"github.com/samvad-hq/samvad-webui-client/internal/watcher"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "paywatch start failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.InfoObj("paywatch starting", "config", cfg.Redacted())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clients, err := app.NewClients(cfg, log)
	if err != nil {
		return err
	}

	w, err := app.NewWatcher(ctx, cfg, log, clients.Payments, watcher.Options{Token: cfg.APIToken})
	if err != nil {
		logger.ErrorObj("failed to initialize watcher", "error", err.Error())
		return err
	}

	if err := w.Run(ctx); err != nil {
		return fmt.Errorf("watcher run: %w", err)
	}
	return nil
}
