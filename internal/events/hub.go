package events

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub broadcasts event envelopes to connected websocket subscribers. A slow or
// dead subscriber is dropped rather than allowed to back-pressure the engine.
type Hub struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]chan Envelope
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]chan Envelope)}
}

// Emit implements Sink.
func (h *Hub) Emit(event string, timestamp int64, payload interface{}) {
	envelope := Envelope{Event: event, Timestamp: timestamp, Payload: payload}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for conn, ch := range h.clients {
		select {
		case ch <- envelope:
		default:
			log.Warnf("Dropping slow event subscriber %s", conn.RemoteAddr())
		}
	}
}

// Subscribe upgrades the request and streams events until the peer goes away.
func (h *Hub) Subscribe(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Errorf("Failed to upgrade event subscriber: %v", err)
		return
	}

	ch := make(chan Envelope, 64)
	h.mu.Lock()
	h.clients[conn] = ch
	h.mu.Unlock()

	go h.writeLoop(conn, ch)

	// Drain reads so close/ping frames are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.remove(conn)
				return
			}
		}
	}()
}

func (h *Hub) writeLoop(conn *websocket.Conn, ch chan Envelope) {
	for envelope := range ch {
		if err := conn.WriteJSON(envelope); err != nil {
			h.remove(conn)
			return
		}
	}
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	if ch, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		close(ch)
	}
	h.mu.Unlock()
	conn.Close()
}
