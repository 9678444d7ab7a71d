package service

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/growth-archive/internal/models"
	"github.com/noah-isme/growth-archive/internal/selector"
	appErrors "github.com/noah-isme/growth-archive/pkg/errors"
	"github.com/noah-isme/growth-archive/pkg/export"
	"github.com/noah-isme/growth-archive/pkg/storage"
)

// ExportFormat is the file type of an archive export.
type ExportFormat string

const (
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatPDF  ExportFormat = "pdf"
	ExportFormatXLSX ExportFormat = "xlsx"
)

// ParseExportFormat accepts csv, pdf or xlsx in any case.
func ParseExportFormat(raw string) (ExportFormat, bool) {
	switch f := ExportFormat(strings.ToLower(strings.TrimSpace(raw))); f {
	case ExportFormatCSV, ExportFormatPDF, ExportFormatXLSX:
		return f, true
	default:
		return "", false
	}
}

// ContentType returns the MIME type served for the format.
func (f ExportFormat) ContentType() string {
	switch f {
	case ExportFormatPDF:
		return "application/pdf"
	case ExportFormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/csv; charset=utf-8"
	}
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportRequest selects what to export.
type ExportRequest struct {
	Format ExportFormat
	Tab    selector.Tab
	Query  string
	Title  string
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	ID           string       `json:"id"`
	RelativePath string       `json:"-"`
	Token        string       `json:"token"`
	URL          string       `json:"url"`
	Format       ExportFormat `json:"format"`
	Rows         int          `json:"rows"`
	ExpiresAt    time.Time    `json:"expiresAt"`
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type titledRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportService renders archive items to files and issues signed download links.
type ExportService struct {
	storage fileStorage
	csv     csvRenderer
	pdf     titledRenderer
	xlsx    titledRenderer
	signer  *storage.SignedURLSigner
	logger  *zap.Logger
	cfg     ExportConfig
	now     func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers get defaults.
func NewExportService(store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf, xlsx titledRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter("")
	}
	if xlsx == nil {
		xlsx = export.NewXLSXExporter("")
	}
	return &ExportService{
		storage: store,
		csv:     csv,
		pdf:     pdf,
		xlsx:    xlsx,
		signer:  signer,
		logger:  logger,
		cfg:     cfg,
		now:     time.Now,
	}
}

var archiveHeaders = []string{"ID", "Title", "Category", "Organization", "Date", "Status", "Description"}

// Rendered is an export file held in memory.
type Rendered struct {
	Format  ExportFormat
	Rows    int
	Payload []byte
}

// Render filters items per req and renders them without storing anything.
func (s *ExportService) Render(ctx context.Context, items []models.ArchiveItem, req ExportRequest) (*Rendered, error) {
	if req.Format == "" {
		req.Format = ExportFormatCSV
	}
	if req.Tab == "" {
		req.Tab = selector.TabAll
	}
	selected := selector.FilterItems(items, req.Tab, req.Query)
	dataset := archiveDataset(selected)
	title := req.Title
	if title == "" {
		title = "Growth Archive"
	}

	var (
		payload []byte
		err     error
	)
	switch req.Format {
	case ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	case ExportFormatXLSX:
		payload, err = s.xlsx.Render(dataset, title)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported format %s", req.Format))
	}
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Rendered{Format: req.Format, Rows: len(selected), Payload: payload}, nil
}

// ExportArchive renders items per req, stores the file and signs a download link.
func (s *ExportService) ExportArchive(ctx context.Context, items []models.ArchiveItem, req ExportRequest) (*ExportResult, error) {
	rendered, err := s.Render(ctx, items, req)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	relPath, err := s.storage.Save(s.buildFilename(id, rendered.Format), rendered.Payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(id, relPath)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	s.logger.Debug("archive exported", zap.String("id", id), zap.String("format", string(rendered.Format)), zap.Int("rows", rendered.Rows))

	return &ExportResult{
		ID:           id,
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/exports/download?token=%s", prefix, url.QueryEscape(token)),
		Format:       rendered.Format,
		Rows:         rendered.Rows,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (exportID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) buildFilename(id string, format ExportFormat) string {
	timestamp := s.now().UTC().Format("20060102_150405")
	return fmt.Sprintf("archive_%s_%s.%s", timestamp, sanitizeFilename(id), format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

func archiveDataset(items []models.ArchiveItem) export.Dataset {
	rows := make([]map[string]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, map[string]string{
			"ID":           item.ID,
			"Title":        item.Title,
			"Category":     item.Category,
			"Organization": item.Organization,
			"Date":         item.Date,
			"Status":       string(item.Status),
			"Description":  item.Description,
		})
	}
	return export.Dataset{Headers: archiveHeaders, Rows: rows}
}
