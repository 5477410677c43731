package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"go-notify-hub/internal/domain/notification"
	"go-notify-hub/internal/domain/port"
	"go-notify-hub/internal/infrastructure/bus"
	"go-notify-hub/internal/infrastructure/logger"
)

// NotificationHandler is the producer-facing HTTP surface: domain services
// publish events here, and clients read back their recent records.
type NotificationHandler struct {
	bus    *bus.Bus
	store  port.NotificationStore
	logger logger.Logger
}

type PublishRequest struct {
	RecipientID string               `json:"recipientId" binding:"required"`
	Kind        string               `json:"kind"        binding:"required"`
	Payload     notification.Payload `json:"payload"`
}

func NewNotificationHandler(b *bus.Bus, store port.NotificationStore, log logger.Logger) *NotificationHandler {
	return &NotificationHandler{
		bus:    b,
		store:  store,
		logger: log.WithField("handler", "notification"),
	}
}

// Publish validates and publishes one domain event on the bus.
func (h *NotificationHandler) Publish(c *gin.Context) {
	var req PublishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	kind, err := notification.ParseKind(req.Kind)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.bus.Publish(c.Request.Context(), notification.Event{
		Kind:        kind,
		RecipientID: req.RecipientID,
		Payload:     req.Payload,
	})

	h.logger.Infof("published %s event for user %s", kind, req.RecipientID)

	c.JSON(http.StatusAccepted, gin.H{
		"status":      "published",
		"recipientId": req.RecipientID,
		"kind":        string(kind),
	})
}

// List returns the user's most recent notification records.
func (h *NotificationHandler) List(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 100"})
			return
		}
		limit = parsed
	}

	records, err := h.store.ListRecent(c.Request.Context(), userID, limit)
	if err != nil {
		h.logger.Errorf("failed to list notifications for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"userId":        userID,
		"notifications": records,
	})
}
