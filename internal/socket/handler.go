package socket

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/formloom/formloom-backend/internal/repository"
	"github.com/formloom/formloom-backend/internal/service"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browsers cannot set Authorization headers on WebSocket upgrades, so
	// origin policy is handled by the CORS layer in front of us.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler upgrades dashboard connections. The token rides in a query param
// (browsers cannot set headers on upgrade requests) and the caller must be
// a member of the workspace they subscribe to.
func Handler(hub *Hub, auth *service.AuthService, members repository.MemberRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		workspaceID := c.Query("workspaceId")
		if token == "" || workspaceID == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		claims, err := auth.ParseToken(token)
		if err != nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		_, isMember, err := members.GetRole(c.Request.Context(), workspaceID, claims.UserID)
		if err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		if !isMember {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("[SOCKET] Upgrade failed: %v", err)
			return
		}

		client := &Client{
			hub:         hub,
			conn:        conn,
			send:        make(chan []byte, 16),
			userID:      claims.UserID,
			workspaceID: workspaceID,
		}
		hub.register <- client

		go client.writePump()
		go client.readPump()
	}
}
