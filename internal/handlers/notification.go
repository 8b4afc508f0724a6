package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tbamaint/hogrisk-backend/internal/apperr"
	"github.com/tbamaint/hogrisk-backend/internal/logger"
	"github.com/tbamaint/hogrisk-backend/internal/services"
)

type NotificationHandler struct {
	log                 *logger.Logger
	notificationService services.NotificationService
}

func NewNotificationHandler(log *logger.Logger, notificationService services.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		log:                 log.With("handler", "NotificationHandler"),
		notificationService: notificationService,
	}
}

func (h *NotificationHandler) List(c *gin.Context) {
	notifications, err := h.notificationService.List(c.Request.Context())
	if err != nil {
		h.log.Error("List failed", "error", err)
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"notifications": notifications})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		RespondError(c, apperr.Validation("invalid notification id %q", raw))
		return
	}
	if err := h.notificationService.MarkRead(c.Request.Context(), uint(id)); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"id": id, "read": true})
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	if err := h.notificationService.MarkAllRead(c.Request.Context()); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"read": true})
}
