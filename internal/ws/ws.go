// Package ws wraps gorilla/websocket with a write-safe connection and an
// origin check suitable for a same-host admin UI.
package ws

import (
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// CheckOrigin accepts requests without an Origin header and requests whose
// Origin host matches the request host.
func CheckOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	origin = strings.TrimPrefix(origin, "http://")
	origin = strings.TrimPrefix(origin, "https://")
	return strings.EqualFold(origin, r.Host)
}

// UpgradeRequest upgrades a gin request to a websocket connection.
func UpgradeRequest(c *gin.Context, checkOrigin func(r *http.Request) bool) (*websocket.Conn, error) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     checkOrigin,
	}
	return upgrader.Upgrade(c.Writer, c.Request, nil)
}

// SafeConn serializes writes; gorilla connections only allow one concurrent
// writer.
type SafeConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func NewSafeConn(conn *websocket.Conn) *SafeConn {
	return &SafeConn{conn: conn}
}

func (s *SafeConn) ReadJSON(v interface{}) error {
	if s.conn == nil {
		return websocket.ErrCloseSent
	}
	return s.conn.ReadJSON(v)
}

func (s *SafeConn) WriteJSON(v interface{}) error {
	if s.conn == nil {
		return websocket.ErrCloseSent
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(v)
}

func (s *SafeConn) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}
