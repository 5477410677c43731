package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appstream "go-notify-hub/internal/application/stream"
	"go-notify-hub/internal/domain/port"
	"go-notify-hub/internal/infrastructure/bus"
	"go-notify-hub/internal/infrastructure/hub"
	"go-notify-hub/internal/infrastructure/logger"
	"go-notify-hub/internal/interfaces/rest/v1/handler"
	"go-notify-hub/internal/interfaces/sse"
	"go-notify-hub/internal/interfaces/websocket"
)

func InitRouter(
	log logger.Logger,
	registry *hub.Registry,
	eventBus *bus.Bus,
	broadcaster *appstream.Broadcaster,
	verifier port.IdentityVerifier,
	store port.NotificationStore,
) http.Handler {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	rootGroup := router.Group("")

	rootGroup.GET("/hub/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "healthy",
			"users":       registry.UserCount(),
			"connections": registry.ConnectionCount(),
		})
	})

	notificationHandler := handler.NewNotificationHandler(eventBus, store, log)
	apiGroup := rootGroup.Group("/api/v1")
	{
		apiGroup.POST("/notifications", notificationHandler.Publish)
		apiGroup.GET("/notifications", notificationHandler.List)
	}

	sse.InitRouter(log, broadcaster, verifier, rootGroup)
	websocket.InitRouter(log, registry, eventBus, verifier, rootGroup)

	return router
}
