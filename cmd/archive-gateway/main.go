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

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	_ "github.com/noah-isme/growth-archive/api/swagger"
	"github.com/noah-isme/growth-archive/internal/app"
	"github.com/noah-isme/growth-archive/internal/handler"
	"github.com/noah-isme/growth-archive/internal/router"
	"github.com/noah-isme/growth-archive/internal/service"
	"github.com/noah-isme/growth-archive/pkg/config"
	"github.com/noah-isme/growth-archive/pkg/export"
	"github.com/noah-isme/growth-archive/pkg/imageenc"
	"github.com/noah-isme/growth-archive/pkg/logger"
	"github.com/noah-isme/growth-archive/pkg/storage"
)

// @title Growth Archive Gateway
// @version 0.1.0
// @description Local gateway over the student growth archive session
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg, "archive-gateway")
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := service.NewMetricsService()
	a, err := app.New(ctx, cfg, logr, metrics)
	if err != nil {
		logr.Fatal("failed to init session", zap.Error(err))
	}
	defer a.Close() //nolint:errcheck

	go func() {
		if err := a.Session.Bootstrap(ctx); err != nil {
			logr.Warn("session bootstrap failed; signed out", zap.Error(err))
		}
	}()

	exportStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Fatal("failed to init export storage", zap.Error(err))
	}
	exports := service.NewExportService(
		exportStore,
		storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL),
		service.ExportConfig{APIPrefix: cfg.Gateway.APIPrefix},
		logr.Named("exports"),
		export.NewCSVExporter(export.WithBOM()),
		export.NewPDFExporter(cfg.Exports.PDFFontPath),
		export.NewXLSXExporter(""),
	)
	go cleanupExports(ctx, exports, logr)

	validate := validator.New()
	sessions := service.NewSessionService(a.Session, a.Client, validate, logr)
	archives := service.NewArchiveService(a.Session, imageenc.New(cfg.Images.ArchiveMaxBytes), validate, logr)

	r := router.New(cfg, logr, metrics, router.Handlers{
		Session:       handler.NewSessionHandler(sessions),
		Archives:      handler.NewArchiveHandler(archives),
		Dashboard:     handler.NewDashboardHandler(archives),
		Notifications: handler.NewNotificationHandler(service.NewInboxService(a.Session)),
		Profile:       handler.NewProfileHandler(service.NewProfileService(a.Session, imageenc.New(cfg.Images.AvatarMaxBytes))),
		Exports:       handler.NewExportHandler(exports, archives, validate),
		Metrics:       handler.NewMetricsHandler(metrics, func() bool { return !a.Session.Loading() }),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Gateway.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "api", cfg.API.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
	sessions.Wait()
	logr.Info("server stopped")
}

func cleanupExports(ctx context.Context, exports *service.ExportService, logr *zap.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := exports.Cleanup(0)
			if err != nil {
				logr.Warn("export cleanup failed", zap.Error(err))
				continue
			}
			if len(removed) > 0 {
				logr.Info("expired exports removed", zap.Int("count", len(removed)))
			}
		}
	}
}
