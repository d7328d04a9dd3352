package ws

import (
	"net/http"
	"time"

	"bazario/config"
	"bazario/internal/auth"
	"bazario/internal/presence"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// UpgradeWalletWS upgrades the connection for the per-user wallet event
// channel. Token comes in the query string since browsers cannot set headers
// on WebSocket handshakes.
func UpgradeWalletWS(cfg *config.JWTConfig, hub *Hub, tracker *presence.Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		token := c.Query("token")
		if token == "" {
			conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"token required"}`))
			return
		}
		claims, err := auth.ParseAccessToken(cfg, token)
		if err != nil {
			conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"invalid token"}`))
			return
		}
		client := &Client{
			UserID: claims.UserID,
			Send:   make(chan []byte, 256),
		}
		hub.Register(client)
		if tracker != nil {
			tracker.Connected(c.Request.Context(), claims.UserID)
			defer tracker.Disconnected(c.Request.Context(), claims.UserID)
		}
		defer client.Close()
		refresh := func() {
			if tracker != nil {
				tracker.Refresh(c.Request.Context(), claims.UserID)
			}
		}
		go writePump(client, conn, refresh)
		readPump(conn)
	}
}

// writePump copies messages from client.Send to the connection and keeps the
// presence TTL alive alongside the ping.
func writePump(c *Client, conn *websocket.Conn, refresh func()) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-c.Send:
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
			refresh()
		}
	}
}

func readPump(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
