// Package api is the editor's network surface: the websocket live-sync
// server that streams annotation mutations to connected observers, and the
// export client that ships export documents to a companion endpoint with a
// local-file fallback.
package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"realmatlas/editor"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Observers are local companion tools; accept any origin.
		return true
	},
}

// SyncMessage is one websocket frame sent to observers.
type SyncMessage struct {
	Type      string          `json:"type"` // mutation, ack
	Mutation  editor.Mutation `json:"mutation,omitempty"`
	Info      string          `json:"info,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

type syncClient struct {
	conn *websocket.Conn
	send chan SyncMessage
}

// SyncServer broadcasts annotation mutations to websocket observers.
type SyncServer struct {
	clients    map[*syncClient]bool
	broadcast  chan SyncMessage
	register   chan *syncClient
	unregister chan *syncClient
}

// NewSyncServer creates a stopped sync server.
func NewSyncServer() *SyncServer {
	return &SyncServer{
		clients:    make(map[*syncClient]bool),
		broadcast:  make(chan SyncMessage, 256),
		register:   make(chan *syncClient),
		unregister: make(chan *syncClient),
	}
}

// Start runs the hub and the HTTP listener in background goroutines. A
// listener failure is logged and leaves the editor fully usable.
func (s *SyncServer) Start(addr string) {
	go s.run()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)

	go func() {
		log.Info().Str("addr", addr).Msg("live-sync server listening")
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Error().Err(err).Msg("live-sync server stopped")
		}
	}()
}

// Publish queues a mutation for broadcast. It never blocks the update
// thread; with a full queue the frame is dropped.
func (s *SyncServer) Publish(m editor.Mutation) {
	msg := SyncMessage{Type: "mutation", Mutation: m, Timestamp: time.Now()}
	select {
	case s.broadcast <- msg:
	default:
	}
}

func (s *SyncServer) run() {
	for {
		select {
		case client := <-s.register:
			s.clients[client] = true
			ack := SyncMessage{Type: "ack", Info: "connected to realm atlas", Timestamp: time.Now()}
			select {
			case client.send <- ack:
			default:
				close(client.send)
				delete(s.clients, client)
			}
			log.Debug().Msg("sync client connected")

		case client := <-s.unregister:
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				close(client.send)
				log.Debug().Msg("sync client disconnected")
			}

		case msg := <-s.broadcast:
			for client := range s.clients {
				select {
				case client.send <- msg:
				default:
					close(client.send)
					delete(s.clients, client)
				}
			}
		}
	}
}

func (s *SyncServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &syncClient{conn: conn, send: make(chan SyncMessage, 64)}
	s.register <- client

	go client.writePump()
	go client.readPump(s)
}

func (c *syncClient) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// readPump drains incoming frames so pings and closes are processed;
// observers are read-only.
func (c *syncClient) readPump(s *SyncServer) {
	defer func() {
		s.unregister <- c
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
