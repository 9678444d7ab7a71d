package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/growth-archive/internal/models"
	"github.com/noah-isme/growth-archive/internal/selector"
	"github.com/noah-isme/growth-archive/internal/service"
	appErrors "github.com/noah-isme/growth-archive/pkg/errors"
	"github.com/noah-isme/growth-archive/pkg/response"
)

type inboxService interface {
	List(tab selector.InboxTab) service.InboxView
	Get(id string) (models.Notification, bool)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) error
}

// NotificationHandler exposes the inbox.
type NotificationHandler struct {
	service inboxService
}

// NewNotificationHandler constructs the handler.
func NewNotificationHandler(service inboxService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// List godoc
// @Summary Inbox grouped by day
// @Tags Notifications
// @Produce json
// @Param tab query string false "all, academic, system or alert"
// @Success 200 {object} response.Envelope
// @Router /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	tab := selector.InboxAll
	if raw := strings.TrimSpace(c.Query("tab")); raw != "" {
		parsed, ok := selector.ParseInboxTab(raw)
		if !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown tab "+raw))
			return
		}
		tab = parsed
	}
	response.JSON(c, http.StatusOK, h.service.List(tab))
}

// Get godoc
// @Summary Get a notification
// @Tags Notifications
// @Produce json
// @Param id path string true "Notification ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /notifications/{id} [get]
func (h *NotificationHandler) Get(c *gin.Context) {
	n, ok := h.service.Get(c.Param("id"))
	if !ok {
		response.Error(c, appErrors.ErrNotFound)
		return
	}
	response.JSON(c, http.StatusOK, n)
}

// MarkRead godoc
// @Summary Mark a notification read
// @Tags Notifications
// @Param id path string true "Notification ID"
// @Success 204
// @Router /notifications/{id}/read [put]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if err := h.service.MarkRead(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// MarkAllRead godoc
// @Summary Mark every notification read
// @Tags Notifications
// @Success 204
// @Router /notifications/read-all [put]
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	if err := h.service.MarkAllRead(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
