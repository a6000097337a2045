package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// upgrader configures the WebSocket upgrader.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		// Origin checking is handled by CORS middleware
		return true
	},
}

// wsClient is one /ws connection attached to a hub listener.
type wsClient struct {
	hub          *Hub
	conn         *websocket.Conn
	l            *listener
	pingInterval time.Duration
	pongWait     time.Duration
	maxMessage   int64
}

// handleWebSocket upgrades the connection and streams change events as
// JSON text frames. Client frames are discarded.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	l, ok := s.hub.Register(listenerWebSocket)
	if !ok {
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "server is stopping")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.hub.Unregister(l)
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	c := &wsClient{
		hub:          s.hub,
		conn:         conn,
		l:            l,
		pingInterval: time.Duration(s.streamCfg.PingInterval) * time.Second,
		pongWait:     time.Duration(s.streamCfg.PongTimeout) * time.Second,
		maxMessage:   int64(s.streamCfg.MaxMessageSize),
	}
	go c.writePump()
	go c.readPump()
}

// readPump keeps the read deadline fresh and unregisters on disconnect.
func (c *wsClient) readPump() {
	defer func() {
		c.hub.Unregister(c.l)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.maxMessage)
	//nolint:errcheck // Best-effort deadline on connection setup
	c.conn.SetReadDeadline(time.Now().Add(c.pingInterval + c.pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.pingInterval + c.pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("websocket read error", "error", err)
			}
			return
		}
		// Any client frame counts as liveness.
		//nolint:errcheck // Best-effort deadline reset
		c.conn.SetReadDeadline(time.Now().Add(c.pingInterval + c.pongWait))
	}
}

// writePump forwards queued events and sends pings. It exits when the
// listener is unregistered or a write fails.
func (c *wsClient) writePump() {
	ticker := time.NewTicker(c.pingInterval)
	defer func() {
		ticker.Stop()
		c.hub.Unregister(c.l)
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.l.send:
			//nolint:errcheck // Best-effort deadline; write error caught below
			c.conn.SetWriteDeadline(time.Now().Add(c.pongWait))
			if !ok {
				//nolint:errcheck // Best-effort close message
				c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			//nolint:errcheck // Best-effort deadline; ping error caught below
			c.conn.SetWriteDeadline(time.Now().Add(c.pongWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
