package admin

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"codeblue-sim/internal/sim"
	"codeblue-sim/internal/telemetry"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum message size allowed from peer.
	maxMessageSize = 512

	sendBuffer      = 64
	broadcastBuffer = 256
)

// Message is the envelope pushed to websocket clients.
type Message struct {
	Type string `json:"type"` // vitals, event, outcome or error
	Data any    `json:"data"`
}

// Action is a command sent by a websocket client.
type Action struct {
	Action string `json:"action"` // acknowledge or dismiss
	ID     string `json:"id"`
}

type directMsg struct {
	c       *client
	payload []byte
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub keeps the connected presentation clients and broadcasts session rows to them.
// It implements sim.Writer so it can sit in a MultiWriter.
type Hub struct {
	clients    map[*client]bool
	broadcast  chan []byte
	register   chan *client
	unregister chan *client
	direct     chan directMsg
	quit       chan struct{}
	mu         sync.Mutex
	resolver   sim.Resolver
	upgrader   websocket.Upgrader
	log        *slog.Logger
}

// NewHub initializes a new websocket hub.
func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		clients:    make(map[*client]bool),
		broadcast:  make(chan []byte, broadcastBuffer),
		register:   make(chan *client),
		unregister: make(chan *client),
		direct:     make(chan directMsg, sendBuffer),
		quit:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		log: log,
	}
}

// Run handles registrations and broadcasts until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.quit)
			h.mu.Lock()
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			h.log.Info("websocket hub shutting down")
			return
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()
			h.log.Info("websocket client connected", "remote", c.conn.RemoteAddr().String())
		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				h.log.Info("websocket client disconnected")
			}
			h.mu.Unlock()
		case d := <-h.direct:
			h.mu.Lock()
			if h.clients[d.c] {
				select {
				case d.c.send <- d.payload:
				default:
				}
			}
			h.mu.Unlock()
		case msg := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					close(c.send)
					delete(h.clients, c)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// publish queues a message without blocking the session loop. When the
// broadcast buffer is full the message is dropped.
func (h *Hub) publish(kind string, data any) error {
	payload, err := json.Marshal(Message{Type: kind, Data: data})
	if err != nil {
		return err
	}
	select {
	case h.broadcast <- payload:
	default:
		h.log.Warn("websocket broadcast buffer full, dropping message", "type", kind)
	}
	return nil
}

// WriteVitals implements sim.VitalsWriter.
func (h *Hub) WriteVitals(row telemetry.VitalsRow) error { return h.publish("vitals", row) }

// WriteEvent implements sim.EventWriter.
func (h *Hub) WriteEvent(row telemetry.EventRow) error { return h.publish("event", row) }

// WriteOutcome implements sim.OutcomeWriter.
func (h *Hub) WriteOutcome(row telemetry.OutcomeRow) error { return h.publish("outcome", row) }

// SetResolver lets websocket clients acknowledge and dismiss events.
func (h *Hub) SetResolver(r sim.Resolver) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.resolver = r
}

func (h *Hub) resolve(a Action) error {
	h.mu.Lock()
	r := h.resolver
	h.mu.Unlock()
	if r == nil {
		return errNoSession
	}
	switch a.Action {
	case "acknowledge":
		return r(a.ID, false)
	case "dismiss":
		return r(a.ID, true)
	default:
		return errUnknownAction
	}
}

// ServeWS upgrades the request and attaches the connection to the hub.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	c := &client{hub: h, conn: conn, send: make(chan []byte, sendBuffer)}
	select {
	case h.register <- c:
	case <-h.quit:
		conn.Close()
		return
	}
	go c.writePump()
	go c.readPump()
}

// readPump reads client actions until the connection closes.
func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.quit:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Warn("websocket read failed", "error", err)
			}
			return
		}
		var a Action
		if err := json.Unmarshal(message, &a); err != nil {
			c.reply(Message{Type: "error", Data: "malformed action"})
			continue
		}
		if err := c.hub.resolve(a); err != nil {
			c.reply(Message{Type: "error", Data: err.Error()})
		}
	}
}

// reply sends a message to this client only. The hub owns c.send, so the
// message goes through the hub loop.
func (c *client) reply(m Message) {
	payload, err := json.Marshal(m)
	if err != nil {
		return
	}
	select {
	case c.hub.direct <- directMsg{c: c, payload: payload}:
	default:
	}
}

// writePump forwards queued messages and keeps the connection alive with pings.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
