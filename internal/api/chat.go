package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"orderintake/internal/models"
	"orderintake/internal/pipeline"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

// WebSocket upgrader configuration
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins
	},
}

// chatSession is one websocket conversation. Messages are processed in order,
// one at a time, and the conversation history lives only as long as the
// connection.
type chatSession struct {
	ctx     context.Context
	conn    *websocket.Conn
	send    chan []byte
	api     *OrderAPI
	history []models.Message
}

// Chat upgrades the request to a websocket and serves a conversation on it
func (a *OrderAPI) Chat(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		a.logger.Warn("failed to upgrade connection", zap.Error(err))
		return
	}

	session := &chatSession{
		ctx:  c.Request.Context(),
		conn: conn,
		send: make(chan []byte, 16),
		api:  a,
	}

	go session.writePump()
	session.readPump()
}

// readPump reads frames until the client goes away
func (s *chatSession) readPump() {
	defer func() {
		close(s.send)
		s.conn.Close()
	}()

	s.conn.SetReadLimit(64 * 1024)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, frame, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.api.logger.Warn("websocket error", zap.Error(err))
			}
			return
		}
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		s.handleFrame(frame)
	}
}

// writePump sends queued replies and keeps the connection alive
func (s *chatSession) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case message, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The channel was closed
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleFrame accepts either a JSON order request or plain text
func (s *chatSession) handleFrame(frame []byte) {
	var req orderRequest
	trimmed := strings.TrimSpace(string(frame))
	if strings.HasPrefix(trimmed, "{") {
		if err := json.Unmarshal(frame, &req); err != nil {
			s.sendJSON(gin.H{"error": "invalid message: " + err.Error()})
			return
		}
	} else {
		req.Message = trimmed
	}
	if strings.TrimSpace(req.Message) == "" {
		s.sendJSON(gin.H{"error": "message is required"})
		return
	}

	preq := req.toPipeline()
	preq.History = s.history
	order := s.api.Processor.Process(s.ctx, preq)
	s.history = order.Messages

	s.sendJSON(pipeline.NewResponse(order))
}

func (s *chatSession) sendJSON(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		s.api.logger.Error("failed to encode chat reply", zap.Error(err))
		return
	}
	select {
	case s.send <- data:
	default:
		s.api.logger.Warn("chat buffer full, dropping reply")
	}
}
