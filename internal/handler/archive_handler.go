package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/growth-archive/internal/models"
	"github.com/noah-isme/growth-archive/internal/selector"
	appErrors "github.com/noah-isme/growth-archive/pkg/errors"
	"github.com/noah-isme/growth-archive/pkg/response"
)

type archiveService interface {
	List(tab selector.Tab, query string) []models.ArchiveItem
	Get(ctx context.Context, id string) (models.ArchiveItem, error)
	Create(ctx context.Context, draft models.ArchiveDraft) (models.ArchiveItem, error)
	Update(ctx context.Context, id string, patch models.ArchivePatch) (models.ArchiveItem, error)
	Delete(ctx context.Context, id string) error
}

// ArchiveHandler exposes the student's growth archive.
type ArchiveHandler struct {
	service archiveService
}

// NewArchiveHandler constructs the handler.
func NewArchiveHandler(service archiveService) *ArchiveHandler {
	return &ArchiveHandler{service: service}
}

func parseTabQuery(c *gin.Context) (selector.Tab, error) {
	raw := strings.TrimSpace(c.Query("tab"))
	if raw == "" {
		return selector.TabAll, nil
	}
	tab, ok := selector.ParseTab(raw)
	if !ok {
		return "", appErrors.Clone(appErrors.ErrValidation, "unknown tab "+raw)
	}
	return tab, nil
}

// List godoc
// @Summary List archive items
// @Tags Archives
// @Produce json
// @Param tab query string false "all, academic, practice, reward or certificate"
// @Param q query string false "Search title, organization and description"
// @Success 200 {object} response.Envelope
// @Router /archives [get]
func (h *ArchiveHandler) List(c *gin.Context) {
	tab, err := parseTabQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	items := h.service.List(tab, c.Query("q"))
	response.JSON(c, http.StatusOK, items, map[string]interface{}{"total": len(items), "tab": tab})
}

// Get godoc
// @Summary Get archive item
// @Tags Archives
// @Produce json
// @Param id path string true "Archive ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /archives/{id} [get]
func (h *ArchiveHandler) Get(c *gin.Context) {
	item, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item)
}

// Create godoc
// @Summary Submit a new archive item
// @Tags Archives
// @Accept json
// @Produce json
// @Param payload body models.ArchiveDraft true "Draft"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /archives [post]
func (h *ArchiveHandler) Create(c *gin.Context) {
	var draft models.ArchiveDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid archive payload"))
		return
	}
	item, err := h.service.Create(c.Request.Context(), draft)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Update godoc
// @Summary Edit an archive item
// @Tags Archives
// @Accept json
// @Produce json
// @Param id path string true "Archive ID"
// @Param payload body models.ArchivePatch true "Changed fields"
// @Success 200 {object} response.Envelope
// @Router /archives/{id} [put]
func (h *ArchiveHandler) Update(c *gin.Context) {
	var patch models.ArchivePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid archive payload"))
		return
	}
	item, err := h.service.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item)
}

// Delete godoc
// @Summary Delete an archive item
// @Tags Archives
// @Param id path string true "Archive ID"
// @Success 204
// @Router /archives/{id} [delete]
func (h *ArchiveHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
