package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/growth-archive/internal/models"
	appErrors "github.com/noah-isme/growth-archive/pkg/errors"
	"github.com/noah-isme/growth-archive/pkg/response"
)

type profileService interface {
	Get() models.UserProfile
	Update(ctx context.Context, patch models.UserProfilePatch) (models.UserProfile, error)
}

// ProfileHandler exposes the signed-in profile.
type ProfileHandler struct {
	service profileService
}

func NewProfileHandler(service profileService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// Get godoc
// @Summary Current profile
// @Tags Profile
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /profile [get]
func (h *ProfileHandler) Get(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Get())
}

// Update godoc
// @Summary Edit profile fields
// @Tags Profile
// @Accept json
// @Produce json
// @Param payload body models.UserProfilePatch true "Changed fields"
// @Success 200 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Router /profile [put]
func (h *ProfileHandler) Update(c *gin.Context) {
	var patch models.UserProfilePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid profile payload"))
		return
	}
	user, err := h.service.Update(c.Request.Context(), patch)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user)
}
