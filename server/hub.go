package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/TFMV/cohortviz/interact"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// clientMessage is a pointer event relayed from a connected page.
type clientMessage struct {
	Type string  `json:"type"`
	Slug string  `json:"slug"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// positionsFrame is one broadcast tick of node coordinates.
type positionsFrame struct {
	Type  string         `json:"type"`
	Nodes []NodePosition `json:"nodes"`
}

type client struct {
	id    string
	conn  *websocket.Conn
	send  chan []byte
	drags map[string]bool
}

// Hub tracks connected WebSocket clients and routes their pointer events
// into the shared layout through one interaction controller, so drag
// ownership rules hold across clients.
type Hub struct {
	state *State

	controlMu sync.Mutex
	control   *interact.Controller

	mu      sync.Mutex
	clients map[string]*client
}

// NewHub creates a hub over the given state.
func NewHub(state *State) *Hub {
	return &Hub{
		state:   state,
		control: interact.NewController(state),
		clients: make(map[string]*client),
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// HandleWS upgrades the connection and pumps messages until the client goes
// away.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}

	c := &client{
		id:    uuid.New().String(),
		conn:  conn,
		send:  make(chan []byte, 16),
		drags: make(map[string]bool),
	}

	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()
	log.Printf("websocket client connected: %s", c.id)

	go c.writePump()
	h.readPump(c)
}

func (h *Hub) readPump(c *client) {
	defer func() {
		h.drop(c)
		c.conn.Close()
	}()

	for {
		var msg clientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			log.Printf("websocket client disconnected: %s", c.id)
			return
		}

		h.controlMu.Lock()
		switch msg.Type {
		case "pin":
			// First client to pin a node owns the drag; a contending
			// pin from another client is ignored.
			if !h.control.Dragging(msg.Slug) {
				h.control.DragStart(msg.Slug, msg.X, msg.Y)
				c.drags[msg.Slug] = true
			}
		case "move":
			if c.drags[msg.Slug] {
				h.control.DragMove(msg.Slug, msg.X, msg.Y)
			}
		case "release":
			if c.drags[msg.Slug] {
				delete(c.drags, msg.Slug)
				h.control.DragEnd(msg.Slug)
			}
		case "reheat":
			h.state.Reheat()
		}
		h.controlMu.Unlock()
	}
}

// drop unregisters a client, releasing any drags it still held so a closed
// tab cannot leave a node pinned forever.
func (h *Hub) drop(c *client) {
	h.mu.Lock()
	delete(h.clients, c.id)
	h.mu.Unlock()

	h.controlMu.Lock()
	for slug := range c.drags {
		h.control.DragEnd(slug)
	}
	h.controlMu.Unlock()

	close(c.send)
}

func (c *client) writePump() {
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}

// BroadcastPositions fans one positions frame out to every connected client.
// A slow client drops frames instead of stalling the tick loop.
func (h *Hub) BroadcastPositions(nodes []NodePosition) {
	data, err := json.Marshal(positionsFrame{Type: "positions", Nodes: nodes})
	if err != nil {
		return
	}
	h.broadcast(data)
}

// BroadcastReload tells every connected page to reload itself, used after
// the roster is swapped out underneath a running session.
func (h *Hub) BroadcastReload() {
	h.broadcast([]byte(`{"type":"reload"}`))
}

func (h *Hub) broadcast(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.clients {
		select {
		case c.send <- data:
		default:
		}
	}
}
