package server

import (
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// EventsHandler streams one JSON message per processed frame over a WebSocket.
type EventsHandler struct {
	hub *Hub
}

// NewEventsHandler creates a new EventsHandler reading from hub.
func NewEventsHandler(hub *Hub) *EventsHandler {
	return &EventsHandler{hub: hub}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	updates, unsubscribe := h.hub.Subscribe()
	defer unsubscribe()

	// The reader notices the client going away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if state := h.hub.State(); state != nil {
		if err := conn.WriteMessage(websocket.TextMessage, state); err != nil {
			return
		}
	}

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case msg := <-updates:
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Debugf("websocket write: %v", err)
				return
			}
		}
	}
}
