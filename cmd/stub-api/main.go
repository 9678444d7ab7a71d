package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/growth-archive/internal/stubapi"
	"github.com/noah-isme/growth-archive/pkg/config"
	"github.com/noah-isme/growth-archive/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg, "stub-api")
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	stub := stubapi.New(stubapi.Options{
		JWTSecret:           cfg.Stub.JWTSecret,
		TokenTTL:            cfg.Stub.TokenTTL,
		AutoApprove:         cfg.Stub.AutoApprove,
		IgnoreStatusUpdates: cfg.Stub.IgnoreStatusUpdates,
		Logger:              logr.Named("stub"),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Stub.Port),
		Handler:           stub.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logr.Sugar().Infow("stub backend starting", "addr", srv.Addr, "auto_approve", cfg.Stub.AutoApprove)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("stub backend failed", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
}
