// Package stream pushes chart series updates to websocket subscribers.
package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"prediction-dashboard-service/internal/analytics"
	"prediction-dashboard-service/internal/observability/logging"
	"prediction-dashboard-service/internal/observability/metrics"
)

const (
	sendBuffer = 64
	writeWait  = 10 * time.Second
)

// Update is the message written to subscribers for every replaced series.
type Update struct {
	Chart     analytics.ChartName `json:"chart"`
	Timestamp int64               `json:"timestamp"`
	Series    analytics.Series    `json:"series"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub manages websocket subscribers.
type Hub struct {
	clients    map[*client]struct{}
	broadcast  chan []byte
	register   chan *client
	unregister chan *client
	done       chan struct{}
	mu         sync.RWMutex
	upgrader   websocket.Upgrader
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

// NewHub creates a hub. Call Run before serving subscribers.
func NewHub(m *metrics.Metrics) *Hub {
	if m == nil {
		m = metrics.DefaultMetrics
	}
	return &Hub{
		clients:    make(map[*client]struct{}),
		broadcast:  make(chan []byte, 100),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		metrics: m,
		logger:  logging.WithComponent("stream"),
	}
}

// Run dispatches registrations and broadcasts until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				h.drop(c)
			}
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			n := len(h.clients)
			h.mu.Unlock()
			h.metrics.StreamClients.Inc()
			h.logger.Info().Int("clients", n).Msg("Subscriber connected")

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				h.drop(c)
			}
			n := len(h.clients)
			h.mu.Unlock()
			h.logger.Info().Int("clients", n).Msg("Subscriber disconnected")

		case msg := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// Slow subscriber; it reconnects and reads the store.
					h.metrics.StreamDropped.Inc()
					h.drop(c)
				}
			}
			h.mu.Unlock()
		}
	}
}

// drop removes c. Callers hold h.mu.
func (h *Hub) drop(c *client) {
	delete(h.clients, c)
	close(c.send)
	h.metrics.StreamClients.Dec()
}

// Clients returns the number of connected subscribers.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish queues s for every subscriber. It never blocks the refresh pass:
// when the broadcast queue is full the update is dropped.
func (h *Hub) Publish(name analytics.ChartName, s analytics.Series) error {
	payload, err := json.Marshal(Update{
		Chart:     name,
		Timestamp: time.Now().UnixMilli(),
		Series:    s,
	})
	if err != nil {
		return err
	}
	select {
	case h.broadcast <- payload:
	default:
		h.metrics.StreamDropped.Inc()
		h.logger.Warn().Str("chart", string(name)).Msg("Broadcast queue full, update dropped")
	}
	return nil
}

// Handle returns a chart handle that streams every replaced series of name.
func (h *Hub) Handle(name analytics.ChartName) analytics.ChartHandle {
	return analytics.ChartHandleFunc(func(_ context.Context, s analytics.Series) error {
		return h.Publish(name, s)
	})
}

// ServeHTTP upgrades the request and subscribes the connection.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go h.writePump(c)
	go h.readPump(c)
}

func (h *Hub) writePump(c *client) {
	defer c.conn.Close()
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.logger.Debug().Err(err).Msg("Write error")
			h.leave(c)
			// Drain until Run closes send.
			for range c.send {
			}
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// readPump discards inbound frames and detects disconnects.
func (h *Hub) readPump(c *client) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
	h.leave(c)
}

func (h *Hub) leave(c *client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}
