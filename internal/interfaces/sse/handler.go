package sse

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"go-notify-hub/internal/application/stream"
	"go-notify-hub/internal/domain/port"
	"go-notify-hub/internal/infrastructure/hub"
	"go-notify-hub/internal/infrastructure/logger"
	"go-notify-hub/internal/interfaces/auth"
)

// Handler fronts the Stream Broadcaster with an HTTP endpoint. This surface
// never accepts inbound data; read-state commands travel via the socket
// gateway.
type Handler struct {
	broadcaster *stream.Broadcaster
	verifier    port.IdentityVerifier
	logger      logger.Logger
}

func NewHandler(broadcaster *stream.Broadcaster, verifier port.IdentityVerifier, log logger.Logger) *Handler {
	return &Handler{
		broadcaster: broadcaster,
		verifier:    verifier,
		logger:      log.WithField("handler", "sse"),
	}
}

// Connect authenticates the request, opens a stream connection, and serves it
// until the client goes away. A user at the stream cap gets an immediate
// rejection, never a half-opened stream.
func (h *Handler) Connect(c *gin.Context) {
	token := auth.ExtractToken(c.Request)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing credentials"})
		return
	}

	userID, err := h.verifier.Verify(c.Request.Context(), token)
	if err != nil {
		h.logger.Warnf("rejected stream connect: %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	conn, err := h.broadcaster.Open(c.Request.Context(), userID)
	if err != nil {
		var maxErr *hub.MaxConnectionsError
		if errors.As(err, &maxErr) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": maxErr.Error()})
			return
		}
		h.logger.Errorf("failed to open stream connection: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open stream"})
		return
	}

	h.logger.Infof("stream connection %s open for user %s", conn.ID(), userID)

	if err := h.broadcaster.Serve(c.Request.Context(), conn, c.Writer); err != nil {
		h.logger.Errorf("stream connection %s ended with error: %v", conn.ID(), err)
		return
	}

	h.logger.Infof("stream connection %s disconnected", conn.ID())
}
