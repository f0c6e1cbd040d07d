package display

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"nhooyr.io/websocket"
)

const (
	hubSendBuffer   = 8
	hubWriteTimeout = 5 * time.Second
)

// Hub broadcasts frames to websocket clients. A client that falls behind
// drops frames rather than stalling the tick.
type Hub struct {
	log zerolog.Logger

	mu      sync.Mutex
	clients map[*hubClient]struct{}
	last    []byte
}

type hubClient struct {
	send chan []byte
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		log:     log.With().Str("component", "ws_hub").Logger(),
		clients: make(map[*hubClient]struct{}),
	}
}

func (h *Hub) Update(f Frame) {
	data, err := json.Marshal(f)
	if err != nil {
		h.log.Error().Err(err).Msg("encode frame")
		return
	}
	h.broadcast(data)
}

func (h *Hub) Hide() {
	data, err := json.Marshal(Frame{Hidden: true})
	if err != nil {
		h.log.Error().Err(err).Msg("encode frame")
		return
	}
	h.broadcast(data)
}

func (h *Hub) broadcast(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.last = data
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.log.Debug().Msg("client slow, frame dropped")
		}
	}
}

// Clients reports the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) register() *hubClient {
	c := &hubClient{send: make(chan []byte, hubSendBuffer)}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	if h.last != nil {
		c.send <- h.last
	}
	return c
}

func (h *Hub) unregister(c *hubClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
}

// ServeHTTP upgrades the request and streams frames until the client goes
// away. Incoming messages are ignored.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket accept failed")
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	c := h.register()
	defer h.unregister(c)

	h.log.Debug().Str("remote", r.RemoteAddr).Msg("client connected")

	ctx := conn.CloseRead(r.Context())
	for {
		select {
		case <-ctx.Done():
			h.log.Debug().Str("remote", r.RemoteAddr).Msg("client disconnected")
			return
		case data := <-c.send:
			if err := h.write(ctx, conn, data); err != nil {
				status := websocket.CloseStatus(err)
				if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway {
					h.log.Warn().Err(err).Msg("websocket write failed")
				}
				return
			}
		}
	}
}

func (h *Hub) write(ctx context.Context, conn *websocket.Conn, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, hubWriteTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, data)
}
