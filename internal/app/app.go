// Package app assembles the token store, API client and session shared by the
// gateway and the CLI.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/growth-archive/internal/apiclient"
	"github.com/noah-isme/growth-archive/internal/normalize"
	"github.com/noah-isme/growth-archive/internal/service"
	"github.com/noah-isme/growth-archive/internal/session"
	"github.com/noah-isme/growth-archive/internal/tokenstore"
	"github.com/noah-isme/growth-archive/pkg/config"
)

// App holds the wired client components.
type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	Tokens  tokenstore.Store
	Client  *apiclient.Client
	Session *session.Store
	Metrics *service.MetricsService

	closeTokens func() error
}

// New wires the components without contacting the backend. metrics may be nil.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, metrics *service.MetricsService) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	tokens, closeTokens, err := tokenstore.New(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init token store: %w", err)
	}

	opts := apiclient.Options{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
		Logger:  logger.Named("apiclient"),
	}
	sessOpts := session.Options{
		Logger:                   logger.Named("session"),
		Locale:                   normalize.ParseLocale(cfg.Session.Locale),
		NotificationRefreshDelay: cfg.Session.NotificationRefreshDelay,
	}
	if metrics != nil {
		opts.Observer = metrics
		sessOpts.JobObserver = metrics.ObserveJob
	}
	client := apiclient.New(tokens, opts)

	return &App{
		Config:      cfg,
		Logger:      logger,
		Tokens:      tokens,
		Client:      client,
		Session:     session.New(client, sessOpts),
		Metrics:     metrics,
		closeTokens: closeTokens,
	}, nil
}

// Close stops background work and releases the token backend.
func (a *App) Close() error {
	a.Session.Close()
	if a.closeTokens != nil {
		return a.closeTokens()
	}
	return nil
}
