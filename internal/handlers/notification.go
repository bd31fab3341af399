package handlers

import (
	"net/http"

	"AE-VISA/internal/middleware"
	"AE-VISA/internal/services"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notificationService *services.NotificationService
}

func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// ListMine returns the caller's notifications, newest first
// GET /api/v1/notifications
func (h *NotificationHandler) ListMine(c *gin.Context) {
	page, err := h.notificationService.UserNotifications(middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// ListAdmin returns notifications across all users with filters
// GET /api/v1/notifications/admin?search=...&is_read=true
func (h *NotificationHandler) ListAdmin(c *gin.Context) {
	filter := &services.NotificationFilter{
		Search:    c.Query("search"),
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
	}
	if raw := c.Query("is_read"); raw != "" {
		v := raw == "true"
		filter.IsRead = &v
	}

	page, err := h.notificationService.AdminNotifications(filter)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, page)
}

// Get returns one notification
// GET /api/v1/notifications/:id
func (h *NotificationHandler) Get(c *gin.Context) {
	notification, err := h.notificationService.NotificationByID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notification": notification})
}

// MarkRead flips one notification to read
// PUT /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	notification, err := h.notificationService.MarkRead(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notification": notification})
}

// MarkAllRead flips every unread notification for the caller
// PUT /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	if err := h.notificationService.MarkAllRead(middleware.UserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
