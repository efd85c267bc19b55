// Package realtime pushes dataset changes to websocket subscribers and
// relays Postgres notifications that ask the server to reload.
package realtime

import (
	"encoding/json"
	"time"

	"github.com/gofiber/contrib/v3/websocket"
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"github.com/seuros/salesboard/internal/events"
	"github.com/seuros/salesboard/internal/logging"
	"github.com/seuros/salesboard/internal/store"
)

// DatasetMessage announces a newly published snapshot.
type DatasetMessage struct {
	Type       string           `json:"type"`
	Generation uint64           `json:"generation"`
	Version    string           `json:"version"`
	Stats      events.LoadStats `json:"stats"`
	LoadedAt   time.Time        `json:"loaded_at"`
}

// NewDatasetMessage describes snap.
func NewDatasetMessage(snap store.Snapshot) DatasetMessage {
	return DatasetMessage{
		Type:       "dataset",
		Generation: snap.Generation,
		Version:    snap.Version,
		Stats:      snap.Stats,
		LoadedAt:   snap.LoadedAt,
	}
}

// Hub fans messages out to connected clients. New clients receive the last
// message first so they know which generation they are looking at.
type Hub struct {
	register    chan *Client
	unregister  chan *Client
	broadcast   chan []byte
	clientCount chan chan int
	stop        chan struct{}
	clients     map[*Client]struct{}
	last        []byte
}

type wsConn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(int, []byte) error
	Close() error
}

type Client struct {
	hub  *Hub
	conn wsConn
	send chan []byte
}

type pingTicker interface {
	C() <-chan time.Time
	Stop()
}

type realPingTicker struct {
	*time.Ticker
}

func (t *realPingTicker) C() <-chan time.Time {
	return t.Ticker.C
}

var pingTickerFactory = func() pingTicker {
	return &realPingTicker{time.NewTicker(30 * time.Second)}
}

func NewHub() *Hub {
	h := &Hub{
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		broadcast:   make(chan []byte, 64),
		clientCount: make(chan chan int),
		stop:        make(chan struct{}),
		clients:     make(map[*Client]struct{}),
	}

	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = struct{}{}
			if h.last != nil {
				h.deliver(client, h.last)
			}
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				_ = client.conn.Close()
			}
		case message := <-h.broadcast:
			h.last = message
			for client := range h.clients {
				h.deliver(client, message)
			}
		case response := <-h.clientCount:
			response <- len(h.clients)
		case <-h.stop:
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			return
		}
	}
}

// deliver drops clients that cannot keep up.
func (h *Hub) deliver(client *Client, message []byte) {
	select {
	case client.send <- message:
	default:
		close(client.send)
		delete(h.clients, client)
	}
}

// Broadcast queues a raw message for every client.
func (h *Hub) Broadcast(msg []byte) {
	select {
	case h.broadcast <- msg:
	default:
		logging.L().Warn("dropping realtime payload", zap.String("reason", "slow consumers"))
	}
}

// PublishSnapshot broadcasts a dataset message for snap. It is shaped to
// be registered with store.Holder.OnReload.
func (h *Hub) PublishSnapshot(snap store.Snapshot) {
	data, err := json.Marshal(NewDatasetMessage(snap))
	if err != nil {
		logging.L().Warn("failed to marshal dataset message", zap.Error(err))
		return
	}
	h.Broadcast(data)
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	response := make(chan int)
	h.clientCount <- response
	return <-response
}

// Close disconnects every client and stops the hub loop.
func (h *Hub) Close() {
	close(h.stop)
}

func (h *Hub) Handler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		client := &Client{
			hub:  h,
			conn: conn,
			send: make(chan []byte, 16),
		}

		h.register <- client

		go client.writePump()
		client.readPump()
	})
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.stop:
		}
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (c *Client) writePump() {
	ticker := pingTickerFactory()
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C():
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
