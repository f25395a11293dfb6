package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// wsUpgrader mirrors the teacher's permissive-origin dev upgrader; CORS on
// the plain HTTP routes is handled separately by rs/cors in router.go.
var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// wsClient is one connected progress subscriber.
type wsClient struct {
	id   string
	conn *websocket.Conn
	send chan []byte

	mu   sync.Mutex
	subs map[string]bool // subscribed job IDs; empty set means "all"
}

// clientMessage is the inbound websocket control message: subscribe to (or
// unsubscribe from) a job's progress feed.
type clientMessage struct {
	Type  string `json:"type"` // "subscribe" | "unsubscribe"
	JobID string `json:"job_id"`
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &wsClient{id: newJobID(), conn: conn, send: make(chan []byte, 256), subs: make(map[string]bool)}

	s.mu.Lock()
	s.clients[client.id] = client
	s.mu.Unlock()

	go s.writePump(client)
	s.readPump(client)
}

func (s *Server) readPump(client *wsClient) {
	defer func() {
		s.mu.Lock()
		delete(s.clients, client.id)
		s.mu.Unlock()
		close(client.send)
		client.conn.Close()
	}()

	client.conn.SetReadLimit(64 * 1024)
	client.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	client.conn.SetPongHandler(func(string) error {
		client.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, raw, err := client.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg clientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue
		}
		client.mu.Lock()
		switch msg.Type {
		case "subscribe":
			client.subs[msg.JobID] = true
		case "unsubscribe":
			delete(client.subs, msg.JobID)
		}
		client.mu.Unlock()
	}
}

func (s *Server) writePump(client *wsClient) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-client.send:
			if !ok {
				client.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			client.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := client.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			client.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// publish broadcasts a ProgressEvent to every client subscribed to jobID
// (or subscribed to nothing in particular, meaning "everything").
func (s *Server) publish(jobID string, event ProgressEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, client := range s.clients {
		client.mu.Lock()
		interested := len(client.subs) == 0 || client.subs[jobID]
		client.mu.Unlock()
		if !interested {
			continue
		}
		select {
		case client.send <- payload:
		default:
		}
	}
}
