package websocket

import (
	"github.com/gin-gonic/gin"

	"go-notify-hub/internal/domain/port"
	"go-notify-hub/internal/infrastructure/bus"
	"go-notify-hub/internal/infrastructure/hub"
	"go-notify-hub/internal/infrastructure/logger"
)

// InitRouter mounts the socket gateway.
func InitRouter(log logger.Logger, registry *hub.Registry, b *bus.Bus, verifier port.IdentityVerifier, rg *gin.RouterGroup) {
	handler := NewHandler(registry, b, verifier, log)

	wsGroup := rg.Group("/ws")
	wsGroup.GET("", handler.Connect)
}
