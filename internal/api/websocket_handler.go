package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"parkboard/internal/entities"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHub fans dashboard views out to connected clients. The run
// loop is the only writer on the connections, so register, unregister and
// broadcast all go through its channels.
type WebSocketHub struct {
	clients    map[*websocket.Conn]bool
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	broadcast  chan []byte
}

func NewWebSocketHub() *WebSocketHub {
	return &WebSocketHub{
		clients:    make(map[*websocket.Conn]bool),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		broadcast:  make(chan []byte, 8),
	}
}

func (h *WebSocketHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			log.Printf("Dashboard client connected. Total: %d", len(h.clients))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Close()
			}
			log.Printf("Dashboard client disconnected. Total: %d", len(h.clients))

		case message := <-h.broadcast:
			for client := range h.clients {
				if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
					log.Printf("Error writing to dashboard client: %v", err)
					client.Close()
					delete(h.clients, client)
				}
			}
		}
	}
}

// BroadcastView queues the view for delivery, dropping it when the queue
// is full; a newer view follows shortly anyway.
func (h *WebSocketHub) BroadcastView(view entities.DashboardView) {
	message, err := json.Marshal(view)
	if err != nil {
		log.Printf("Error marshaling dashboard view: %v", err)
		return
	}
	select {
	case h.broadcast <- message:
	default:
		log.Println("Broadcast channel is full, dropping view")
	}
}

type WebSocketHandler struct {
	hub  *WebSocketHub
	view func() entities.DashboardView
}

func NewWebSocketHandler(hub *WebSocketHub, view func() entities.DashboardView) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, view: view}
}

// HandleWebSocket upgrades the connection, sends the current view and
// hands the connection to the hub.
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Failed to upgrade to WebSocket: %v", err)
		return
	}

	// Initial snapshot goes out before the hub owns the connection.
	if err := conn.WriteJSON(h.view()); err != nil {
		log.Printf("Error sending initial view: %v", err)
		conn.Close()
		return
	}
	h.hub.register <- conn

	go func() {
		defer func() {
			h.hub.unregister <- conn
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Printf("WebSocket error: %v", err)
				}
				break
			}
		}
	}()
}
