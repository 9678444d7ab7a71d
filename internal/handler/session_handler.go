package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/growth-archive/internal/dto"
	"github.com/noah-isme/growth-archive/internal/session"
	appErrors "github.com/noah-isme/growth-archive/pkg/errors"
	"github.com/noah-isme/growth-archive/pkg/response"
)

type sessionService interface {
	Snapshot() session.Snapshot
	Login(ctx context.Context, form dto.LoginForm) (session.Snapshot, error)
	Register(ctx context.Context, form dto.RegisterForm) (string, error)
	Logout(ctx context.Context)
	DeleteAccount(ctx context.Context) error
	Refresh(ctx context.Context) session.Snapshot
}

// SessionHandler exposes sign-in state and account lifecycle endpoints.
type SessionHandler struct {
	service sessionService
}

// NewSessionHandler constructs the handler.
func NewSessionHandler(service sessionService) *SessionHandler {
	return &SessionHandler{service: service}
}

// Get godoc
// @Summary Current session snapshot
// @Tags Session
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /session [get]
func (h *SessionHandler) Get(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Snapshot())
}

// Login godoc
// @Summary Sign in with phone and password
// @Tags Session
// @Accept json
// @Produce json
// @Param payload body dto.LoginForm true "Credentials"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /session/login [post]
func (h *SessionHandler) Login(c *gin.Context) {
	var form dto.LoginForm
	if err := c.ShouldBindJSON(&form); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}
	snap, err := h.service.Login(c.Request.Context(), form)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snap)
}

// Register godoc
// @Summary Create an account
// @Description Does not sign in; call /session/login afterwards.
// @Tags Session
// @Accept json
// @Produce json
// @Param payload body dto.RegisterForm true "Registration"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /session/register [post]
func (h *SessionHandler) Register(c *gin.Context) {
	var form dto.RegisterForm
	if err := c.ShouldBindJSON(&form); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid registration payload"))
		return
	}
	userID, err := h.service.Register(c.Request.Context(), form)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"userId": userID})
}

// Logout godoc
// @Summary Sign out
// @Tags Session
// @Success 204
// @Router /session/logout [post]
func (h *SessionHandler) Logout(c *gin.Context) {
	h.service.Logout(c.Request.Context())
	response.NoContent(c)
}

// DeleteAccount godoc
// @Summary Delete the signed-in account
// @Tags Session
// @Success 204
// @Failure 502 {object} response.Envelope
// @Router /session/account [delete]
func (h *SessionHandler) DeleteAccount(c *gin.Context) {
	if err := h.service.DeleteAccount(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Refresh godoc
// @Summary Re-fetch profile, archive and notifications
// @Tags Session
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /session/refresh [post]
func (h *SessionHandler) Refresh(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Refresh(c.Request.Context()))
}

// requireLogin rejects requests while no one is signed in.
func requireLogin(snapshot func() session.Snapshot) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !snapshot().IsLoggedIn {
			response.Error(c, appErrors.ErrNotLoggedIn)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireLogin guards routes that need a signed-in session.
func (h *SessionHandler) RequireLogin() gin.HandlerFunc {
	return requireLogin(h.service.Snapshot)
}
