package sse

import (
	"github.com/gin-gonic/gin"

	"go-notify-hub/internal/application/stream"
	"go-notify-hub/internal/domain/port"
	"go-notify-hub/internal/infrastructure/logger"
)

// InitRouter mounts the stream broadcaster endpoint.
func InitRouter(log logger.Logger, broadcaster *stream.Broadcaster, verifier port.IdentityVerifier, rg *gin.RouterGroup) {
	handler := NewHandler(broadcaster, verifier, log)

	sseGroup := rg.Group("/sse")
	sseGroup.GET("", HeadersMiddleware(), handler.Connect)
}

// HeadersMiddleware sets the response headers a long-lived event stream needs.
func HeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "text/event-stream")
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Writer.Header().Set("Connection", "keep-alive")
		c.Writer.Header().Set("X-Accel-Buffering", "no") // for nginx
		c.Next()
	}
}
