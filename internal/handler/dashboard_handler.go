package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/growth-archive/internal/dto"
	"github.com/noah-isme/growth-archive/internal/models"
	"github.com/noah-isme/growth-archive/internal/service"
	appErrors "github.com/noah-isme/growth-archive/pkg/errors"
	"github.com/noah-isme/growth-archive/pkg/response"
)

type dashboardService interface {
	Dashboard() service.DashboardView
	SetPins(ids []string) []string
	PinCandidates(query string) []models.ArchiveItem
}

// DashboardHandler serves the home screen and its pinned selection.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Get godoc
// @Summary Dashboard view
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Get(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Dashboard())
}

// Candidates godoc
// @Summary Items available for pinning
// @Tags Dashboard
// @Produce json
// @Param q query string false "Title or category search"
// @Success 200 {object} response.Envelope
// @Router /dashboard/candidates [get]
func (h *DashboardHandler) Candidates(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.PinCandidates(c.Query("q")))
}

// SetPins godoc
// @Summary Replace pinned items
// @Tags Dashboard
// @Accept json
// @Produce json
// @Param payload body dto.PinsRequest true "Pinned ids in display order"
// @Success 200 {object} response.Envelope
// @Router /dashboard/pins [put]
func (h *DashboardHandler) SetPins(c *gin.Context) {
	var req dto.PinsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid pins payload"))
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"pinnedIds": h.service.SetPins(req.IDs)})
}
