package cli

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/growth-archive/internal/app"
	"github.com/noah-isme/growth-archive/internal/service"
	"github.com/noah-isme/growth-archive/internal/session"
	"github.com/noah-isme/growth-archive/pkg/export"
	"github.com/noah-isme/growth-archive/pkg/imageenc"
)

// Runtime is what the commands operate on.
type Runtime struct {
	Session  *session.Store
	Sessions *service.SessionService
	Archives *service.ArchiveService
	Inbox    *service.InboxService
	Profile  *service.ProfileService
	Exports  *service.ExportService

	ArchiveImages imageenc.Encoder
	AvatarImages  imageenc.Encoder

	Close func() error
}

// Factory builds a Runtime on first use.
type Factory func(ctx context.Context) (*Runtime, error)

// NewRuntime layers the view services over a wired App.
func NewRuntime(a *app.App) *Runtime {
	cfg := a.Config
	validate := validator.New()
	archiveImages := imageenc.New(cfg.Images.ArchiveMaxBytes)
	avatarImages := imageenc.New(cfg.Images.AvatarMaxBytes)
	sessions := service.NewSessionService(a.Session, a.Client, validate, a.Logger)
	closeRuntime := func() error {
		sessions.Wait()
		return a.Close()
	}
	return &Runtime{
		Session:       a.Session,
		Sessions:      sessions,
		Archives:      service.NewArchiveService(a.Session, archiveImages, validate, a.Logger),
		Inbox:         service.NewInboxService(a.Session),
		Profile:       service.NewProfileService(a.Session, avatarImages),
		Exports:       service.NewExportService(nil, nil, service.ExportConfig{}, a.Logger, export.NewCSVExporter(export.WithBOM()), export.NewPDFExporter(cfg.Exports.PDFFontPath), export.NewXLSXExporter("")),
		ArchiveImages: archiveImages,
		AvatarImages:  avatarImages,
		Close:         closeRuntime,
	}
}
