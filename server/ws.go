package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Be careful with this in production
	},
}

type wsMessage struct {
	Type    string      `json:"type"`
	Content string      `json:"content"`
	Data    interface{} `json:"data,omitempty"`
}

// handleWebSocket runs a chat session over one connection. Each
// connection gets its own thread ID, so the conversation keeps memory
// for as long as the socket stays open.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.graph == nil {
		http.Error(w, "chatbot is not ready", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	threadID := uuid.NewString()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("Error reading message: %v", err)
			}
			break
		}

		var msg wsMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			log.Printf("Error unmarshaling message: %v", err)
			continue
		}
		if msg.Content == "" {
			continue
		}

		s.handleChatMessage(conn, threadID, msg.Content)
	}
}

func (s *Server) handleChatMessage(conn *websocket.Conn, threadID, content string) {
	s.sendMessage(conn, wsMessage{Type: "status", Content: "답변을 생성하고 있습니다..."})

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	result, err := s.graph.Run(ctx, threadID, content)
	if err != nil {
		log.Printf("[server] ws chat failed: %v", err)
		s.sendMessage(conn, wsMessage{Type: "error", Content: "답변 생성 중 오류가 발생했습니다."})
		return
	}

	response := wsMessage{Type: "response", Content: result.Response}
	if result.StructuredData != nil {
		response.Data = result.StructuredData
	}
	s.sendMessage(conn, response)
}

func (s *Server) sendMessage(conn *websocket.Conn, msg wsMessage) {
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("Error sending message: %v", err)
	}
}
