package handler

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/growth-archive/internal/dto"
	"github.com/noah-isme/growth-archive/internal/models"
	"github.com/noah-isme/growth-archive/internal/selector"
	"github.com/noah-isme/growth-archive/internal/service"
	appErrors "github.com/noah-isme/growth-archive/pkg/errors"
	"github.com/noah-isme/growth-archive/pkg/response"
)

type exportService interface {
	ExportArchive(ctx context.Context, items []models.ArchiveItem, req service.ExportRequest) (*service.ExportResult, error)
	ParseToken(token string, allowExpired bool) (exportID, relPath string, expiresAt time.Time, err error)
	Open(relPath string) (*os.File, error)
}

type itemSource interface {
	Items() []models.ArchiveItem
}

// ExportHandler renders the archive to files and serves signed downloads.
type ExportHandler struct {
	exports  exportService
	items    itemSource
	validate *validator.Validate
}

// NewExportHandler constructs the handler.
func NewExportHandler(exports exportService, items itemSource, validate *validator.Validate) *ExportHandler {
	if validate == nil {
		validate = validator.New()
	}
	return &ExportHandler{exports: exports, items: items, validate: validate}
}

// Create godoc
// @Summary Export the archive
// @Tags Exports
// @Accept json
// @Produce json
// @Param payload body dto.ExportForm true "Export options"
// @Success 201 {object} response.Envelope
// @Router /exports [post]
func (h *ExportHandler) Create(c *gin.Context) {
	var form dto.ExportForm
	if err := c.ShouldBindJSON(&form); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export payload"))
		return
	}
	if err := h.validate.Struct(form); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "format must be csv, pdf or xlsx"))
		return
	}
	req := service.ExportRequest{Query: form.Query, Title: form.Title}
	if form.Format != "" {
		req.Format, _ = service.ParseExportFormat(form.Format)
	}
	if raw := strings.TrimSpace(form.Tab); raw != "" {
		tab, ok := selector.ParseTab(raw)
		if !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown tab "+raw))
			return
		}
		req.Tab = tab
	}
	result, err := h.exports.ExportArchive(c.Request.Context(), h.items.Items(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Download godoc
// @Summary Download an export
// @Tags Exports
// @Produce octet-stream
// @Param token query string true "Signed download token"
// @Success 200 {file} binary
// @Failure 401 {object} response.Envelope
// @Router /exports/download [get]
func (h *ExportHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	_, relPath, _, err := h.exports.ParseToken(token, false)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, http.StatusUnauthorized, "invalid or expired download token"))
		return
	}
	file, err := h.exports.Open(relPath)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrNotFound.Code, http.StatusNotFound, "export not found"))
		return
	}
	defer file.Close() //nolint:errcheck

	info, err := file.Stat()
	if err != nil {
		response.Error(c, err)
		return
	}
	format, _ := service.ParseExportFormat(strings.TrimPrefix(filepath.Ext(relPath), "."))
	name := filepath.Base(relPath)
	c.DataFromReader(http.StatusOK, info.Size(), format.ContentType(), file, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", name),
	})
}
