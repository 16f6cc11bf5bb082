package handler

import (
	"net/http"

	"gripelogger/backend/internal/api/middleware"
	"gripelogger/backend/internal/models"
	"gripelogger/backend/internal/notify"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Dashboards are served from a separate origin in development.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades the connection and registers the caller with
// the notification hub. RequireAuth has already verified the token
// passed in the "token" query parameter.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	userID, role := middleware.CurrentUser(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to upgrade connection"})
		return
	}

	client := &notify.WebSocketClient{
		UserID: userID,
		Role:   role,
		Conn:   conn,
		Hub:    h.Hub,
		Send:   make(chan models.Event, 16),
	}

	h.Hub.RegisterCh <- client
	client.Run()
}
