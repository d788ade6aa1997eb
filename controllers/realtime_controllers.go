package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/yeremiapane/venue-ops/realtime"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Sesuaikan dengan kebutuhan keamanan
	},
}

// ConsoleStreamHandler -> endpoint WebSocket untuk console kasir/staff.
// Event hanya membawa id; client me-reload session penuh lewat REST.
func ConsoleStreamHandler(c *gin.Context) {
	roleInterface, exists := c.Get("role")
	if !exists {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	role := roleInterface.(string)

	// Validasi role
	if role != "cashier" && role != "staff" && role != "admin" {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	// Register dengan role
	realtime.RegisterClient(ws, role)

	// Baca pesan (jika perlu)
	for {
		_, _, err := ws.ReadMessage()
		if err != nil {
			break
		}
	}

	// Unregister saat disconnect
	realtime.UnregisterClient(ws)
}
