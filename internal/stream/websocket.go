package stream

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
)

const subscriptionBuffer = 64

// Message is one outbound market data frame.
type Message struct {
	Type string `json:"type"` // "trade" or "book"
	Data any    `json:"data"`
}

// Server fans market data messages out to websocket clients.
type Server struct {
	hub      *Hub[Message]
	upgrader websocket.Upgrader
}

// NewServer creates a websocket streaming server.
func NewServer() *Server {
	return &Server{
		hub: NewHub[Message](),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Publish broadcasts a message to all connected clients.
func (s *Server) Publish(msg Message) {
	s.hub.Broadcast(msg)
}

// HandleWS upgrades the connection and streams messages until the client
// disconnects.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "component", "stream", "error", err)
		return
	}
	defer conn.Close()

	sub := s.hub.Subscribe(subscriptionBuffer)
	defer s.hub.Unsubscribe(sub)

	// Drain reads so we notice the client going away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case msg := <-sub.C():
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}
