package api

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/nerrad567/homecast/internal/infrastructure/config"
	"github.com/nerrad567/homecast/internal/infrastructure/logging"
)

// Listener transports.
const (
	listenerSSE       = "sse"
	listenerWebSocket = "ws"

	defaultSendBuffer = 64
)

// listener is one connected stream client.
type listener struct {
	kind string
	send chan []byte
}

// Hub is the set of connected stream listeners shared by /events and /ws.
//
// Thread Safety:
//   - Broadcast holds the read lock while sending; send channels are only
//     closed under the write lock, so a send never hits a closed channel.
//   - A closed send channel still yields its buffered events before
//     reporting closed, so a disconnected listener drains what it had.
type Hub struct {
	logger     *logging.Logger
	sendBuffer int

	mu        sync.RWMutex
	listeners map[*listener]struct{}
	closed    bool
}

// NewHub creates a hub whose listeners buffer sendBuffer events each.
func NewHub(sendBuffer int, logger *logging.Logger) *Hub {
	if sendBuffer <= 0 {
		sendBuffer = defaultSendBuffer
	}
	return &Hub{
		logger:     logger,
		sendBuffer: sendBuffer,
		listeners:  make(map[*listener]struct{}),
	}
}

// Register adds a listener. It reports false once the hub is closed.
func (h *Hub) Register(kind string) (*listener, bool) {
	l := &listener{kind: kind, send: make(chan []byte, h.sendBuffer)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, false
	}
	h.listeners[l] = struct{}{}
	n := len(h.listeners)
	h.mu.Unlock()

	h.logger.Debug("stream listener connected", "transport", kind, "listeners", n)
	return l, true
}

// Unregister removes a listener and closes its send channel. Repeated
// calls are no-ops.
func (h *Hub) Unregister(l *listener) {
	h.mu.Lock()
	_, existed := h.listeners[l]
	if existed {
		delete(h.listeners, l)
		close(l.send)
	}
	n := len(h.listeners)
	h.mu.Unlock()

	if existed {
		h.logger.Debug("stream listener disconnected", "transport", l.kind, "listeners", n)
	}
}

// Broadcast queues data on every listener and returns how many accepted
// it. A listener whose buffer is full is disconnected so its client
// reconnects and re-reads current state instead of silently missing events.
func (h *Hub) Broadcast(data []byte) int {
	h.mu.RLock()
	sent := 0
	var overflowed []*listener
	for l := range h.listeners {
		select {
		case l.send <- data:
			sent++
		default:
			overflowed = append(overflowed, l)
		}
	}
	h.mu.RUnlock()

	for _, l := range overflowed {
		h.logger.Warn("stream listener buffer full, disconnecting", "transport", l.kind)
		h.Unregister(l)
	}
	return sent
}

// Count returns the number of connected listeners.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners)
}

// Open allows listeners to register again after CloseAll.
func (h *Hub) Open() {
	h.mu.Lock()
	h.closed = false
	h.mu.Unlock()
}

// CloseAll disconnects every listener and rejects new ones until Open.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for l := range h.listeners {
		close(l.send)
		delete(h.listeners, l)
	}
}

// handleEvents streams change events as server-sent events.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)
	// The stream outlives the server write timeout.
	//nolint:errcheck // ErrNotSupported on writers without deadlines
	rc.SetWriteDeadline(time.Time{})

	l, ok := s.hub.Register(listenerSSE)
	if !ok {
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "server is stopping")
		return
	}
	defer s.hub.Unregister(l)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		s.logger.Warn("event stream does not support flushing", "error", err)
		return
	}

	keepalive := time.NewTicker(time.Duration(s.streamCfg.KeepaliveInterval) * time.Second)
	defer keepalive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case data, ok := <-l.send:
			if !ok {
				return
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
				return
			}
		case <-keepalive.C:
			if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

// streamSettings returns cfg with unset values defaulted.
func streamSettings(cfg config.StreamConfig) config.StreamConfig {
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = defaultSendBuffer
	}
	if cfg.KeepaliveInterval <= 0 {
		cfg.KeepaliveInterval = 15
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30
	}
	if cfg.PongTimeout <= 0 {
		cfg.PongTimeout = 10
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = 4096
	}
	return cfg
}
