package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/noah-isme/growth-archive/internal/app"
	"github.com/noah-isme/growth-archive/internal/cli"
	"github.com/noah-isme/growth-archive/pkg/config"
	appErrors "github.com/noah-isme/growth-archive/pkg/errors"
	"github.com/noah-isme/growth-archive/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logr, err := logger.New(cfg, "archive-cli")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	factory := func(ctx context.Context) (*cli.Runtime, error) {
		a, err := app.New(ctx, cfg, logr, nil)
		if err != nil {
			return nil, err
		}
		return cli.NewRuntime(a), nil
	}

	if err := cli.Execute(ctx, factory, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		logr.Debug("command failed", zap.Error(err))
		msg := err.Error()
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			msg = appErr.Message
		}
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
		stop()
		logr.Sync() //nolint:errcheck
		os.Exit(1)
	}
}
