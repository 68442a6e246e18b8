package handlers

import (
	"net/http"

	"inkwell/internal/middleware"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	Deps
}

func NewNotificationHandler(d Deps) *NotificationHandler {
	return &NotificationHandler{Deps: d}
}

// List GET /api/me/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	inbox, err := h.Notifications.List(c.Request.Context(), middleware.CurrentIdentity(c))
	if err != nil {
		abortJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, inbox)
}

// Read POST /api/me/notifications/:id/read
func (h *NotificationHandler) Read(c *gin.Context) {
	if err := h.Notifications.MarkRead(c.Request.Context(), middleware.CurrentIdentity(c), c.Param("id")); err != nil {
		abortJSON(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ReadAll POST /api/me/notifications/read-all
func (h *NotificationHandler) ReadAll(c *gin.Context) {
	n, err := h.Notifications.MarkAllRead(c.Request.Context(), middleware.CurrentIdentity(c))
	if err != nil {
		abortJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": n})
}

// Delete DELETE /api/me/notifications/:id
func (h *NotificationHandler) Delete(c *gin.Context) {
	if err := h.Notifications.Delete(c.Request.Context(), middleware.CurrentIdentity(c), c.Param("id")); err != nil {
		abortJSON(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
