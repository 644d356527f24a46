package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/seqvarlab/varnorm/internal/logging"
)

// GlobalHub is the shared WebSocket hub for bulk translation clients.
var GlobalHub *Hub

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS is enforced by the outer middleware chain
	},
}

// BulkRequest is one line of a bulk translation stream. Seq correlates
// the response with the request.
type BulkRequest struct {
	Seq        int    `json:"seq"`
	Expression string `json:"expression"`
	From       string `json:"from,omitempty"`
	To         string `json:"to,omitempty"`
}

// BulkResponse is the per-line result of a bulk translation stream.
type BulkResponse struct {
	Seq         int             `json:"seq"`
	Expressions []string        `json:"expressions,omitempty"`
	Allele      json.RawMessage `json:"allele,omitempty"`
	Error       string          `json:"error,omitempty"`
}

// EventMessage is a broadcast event sent to all connected clients.
type EventMessage struct {
	Type      string                 `json:"type"`
	Message   string                 `json:"message"`
	Timestamp string                 `json:"timestamp"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// Client represents a WebSocket client connection.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub maintains active WebSocket connections and broadcasts messages.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new WebSocket hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's main loop to handle client registration and broadcasting.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			logging.WebSocketEvent("client_connected", h.ClientCount())

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			logging.WebSocketEvent("client_disconnected", h.ClientCount())

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Client channel full, disconnect
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends an event message to all connected clients.
func (h *Hub) Broadcast(msg EventMessage) {
	if msg.Timestamp == "" {
		msg.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	data, err := json.Marshal(msg)
	if err != nil {
		logging.Error("failed to marshal event message", "error", err)
		return
	}

	select {
	case h.broadcast <- data:
	default:
		logging.Warn("broadcast channel full, dropping message")
	}
}

// readPump reads bulk translation requests from the connection and
// queues per-line responses.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(64 * 1024)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Error("websocket unexpected close", "error", err)
			}
			break
		}

		var req BulkRequest
		if err := json.Unmarshal(data, &req); err != nil {
			c.reply(BulkResponse{Error: "invalid request: " + err.Error()})
			continue
		}
		c.reply(translateOne(context.Background(), req))
	}
}

// translateOne runs a single bulk translation line.
func translateOne(ctx context.Context, req BulkRequest) BulkResponse {
	resp := BulkResponse{Seq: req.Seq}

	allele, err := engine.Translator.TranslateFrom(ctx, req.Expression, req.From)
	if err != nil {
		resp.Error = err.Error()
		return resp
	}

	if req.To != "" {
		exprs, err := engine.Translator.TranslateTo(ctx, allele, req.To)
		if err != nil {
			resp.Error = err.Error()
			return resp
		}
		resp.Expressions = exprs
	}

	data, err := json.Marshal(allele)
	if err != nil {
		resp.Error = err.Error()
		return resp
	}
	resp.Allele = data
	return resp
}

// reply queues a response for this client, dropping it if the client
// cannot keep up.
func (c *Client) reply(resp BulkResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		logging.Error("failed to marshal bulk response", "error", err)
		return
	}
	select {
	case c.send <- data:
	default:
		logging.Warn("client send buffer full, dropping response", "seq", resp.Seq)
	}
}

// writePump writes queued messages to the WebSocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleWebSocket upgrades HTTP connections to WebSocket and registers clients.
func handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if GlobalHub == nil {
		http.Error(w, "WebSocket hub not initialized", http.StatusInternalServerError)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error("websocket upgrade failed", "error", err)
		return
	}

	client := &Client{
		hub:  GlobalHub,
		conn: conn,
		send: make(chan []byte, 256),
	}

	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}
