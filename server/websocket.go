package server

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"tangled.org/atscan.net/urlcheck/engine"
)

const (
	wsReadTimeout  = 60 * time.Second
	wsPingInterval = 30 * time.Second
	wsWriteTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// wsConn serializes writes from the reply loop and the pinger
type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsConn) writeJSON(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *wsConn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteTimeout))
}

// handleWebSocket evaluates one URL per inbound message: {"url": "..."}
// in, an evaluation or {"error": "..."} out, in order.
func (s *Server) handleWebSocket() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			s.logf("WebSocket upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		ws := &wsConn{conn: conn}

		conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
			return nil
		})

		done := make(chan struct{})
		defer close(done)

		go func() {
			ticker := time.NewTicker(wsPingInterval)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					if err := ws.ping(); err != nil {
						return
					}
				}
			}
		}()

		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					s.logf("WebSocket read error: %v", err)
				}
				return
			}
			conn.SetReadDeadline(time.Now().Add(wsReadTimeout))

			if err := ws.writeJSON(s.evaluateMessage(message)); err != nil {
				s.logf("WebSocket write error: %v", err)
				return
			}
		}
	}
}

func (s *Server) evaluateMessage(message []byte) interface{} {
	body, err := parseJSONObject(message)
	if err != nil {
		return ErrorResponse{Error: errJSONRequired}
	}

	url, _ := body["url"].(string)

	result, err := s.engine.Evaluate(url)
	if err != nil {
		if errors.Is(err, engine.ErrInvalidInput) {
			return ErrorResponse{Error: errURLRequired}
		}
		return ErrorResponse{Error: err.Error()}
	}

	return result
}

func (s *Server) logf(format string, v ...interface{}) {
	if s.config.Logger != nil {
		s.config.Logger.Printf(format, v...)
	}
}
