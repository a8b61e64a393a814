package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/clubciclismoepn/backend/internal/domain"
	"github.com/clubciclismoepn/backend/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"
)

type notificationUsecaser interface {
	ListForUser(ctx context.Context, userID string) ([]*domain.Notification, error)
	MarkRead(ctx context.Context, id, userID string) (*domain.Notification, error)
}

type NotificationHandler struct {
	notifications notificationUsecaser
	logger        *slog.Logger
}

func NewNotificationHandler(notifications notificationUsecaser, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{
		notifications: notifications,
		logger:        logger.With("component", "notification_handler"),
	}
}

type notificationResponse struct {
	ID        string    `json:"id"`
	EventID   *string   `json:"event_id,omitempty"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// GET /notifications — the caller's own, newest first.
func (h *NotificationHandler) List(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserID)

	items, err := h.notifications.ListForUser(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("list notifications", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	out := make([]notificationResponse, 0, len(items))
	for _, n := range items {
		out = append(out, toNotificationResponse(n))
	}
	c.JSON(http.StatusOK, out)
}

// POST /notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserID)
	id := c.Param("id")

	n, err := h.notifications.MarkRead(c.Request.Context(), id, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotificationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": errNotificationMissing})
			return
		}
		h.logger.Error("mark notification read", "notification_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, toNotificationResponse(n))
}

func toNotificationResponse(n *domain.Notification) notificationResponse {
	return notificationResponse{
		ID:        n.ID,
		EventID:   n.EventID,
		Kind:      n.Kind,
		Title:     n.Title,
		Message:   n.Message,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}
