package ws

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func newConnID() string {
	return uuid.NewString()
}

// tokenFromRequest accepts a bearer header or a token query parameter,
// since browsers cannot set headers on websocket handshakes.
func tokenFromRequest(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header != "" {
		scheme, token, found := strings.Cut(header, " ")
		if found && strings.EqualFold(scheme, "bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return c.Query("token")
}

// drain reads until the peer goes away and returns the close reason.
func drain(conn *websocket.Conn) (reason string, abnormal bool) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			abnormal = !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway)
			return err.Error(), abnormal
		}
	}
}
