package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"surveycast/internal/model"
	"surveycast/internal/service"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	answerTimeout  = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for dev
	},
}

// AnswerSink consumes answer events read from recipient connections
type AnswerSink interface {
	HandleAnswer(ctx context.Context, ev model.AnswerEvent) error
}

// WelcomePayload is sent on connect, echoing the recipient identity
type WelcomePayload struct {
	RecipientID int64 `json:"recipientId"`
}

// PollAnswerPayload is a recipient's choice answer
type PollAnswerPayload struct {
	Token     string `json:"token"`
	OptionIDs []int  `json:"optionIds"`
}

// ResultPayload acknowledges or rejects an inbound answer
type ResultPayload struct {
	Accepted bool   `json:"accepted"`
	Kind     string `json:"kind,omitempty"`
	Message  string `json:"message,omitempty"`
}

// Handler handles WebSocket connections
type Handler struct {
	hub     *Hub
	authSvc *service.AuthService
	sink    AnswerSink
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, authSvc *service.AuthService, sink AnswerSink) *Handler {
	return &Handler{
		hub:     hub,
		authSvc: authSvc,
		sink:    sink,
	}
}

// RecipientWS handles GET /v1/ws/recipient
func (h *Handler) RecipientWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	claims, err := h.authSvc.ValidateRecipientToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	conn := &Connection{
		RecipientID: claims.RecipientID,
		Send:        make(chan []byte, 256),
		Hub:         h.hub,
	}
	if data, err := encode(MsgWelcome, WelcomePayload{RecipientID: claims.RecipientID}); err == nil {
		conn.Send <- data
	}

	h.hub.Register(conn)

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn)
}

func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection) {
	defer func() {
		h.hub.Unregister(conn)
		wsConn.Close()
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
		result := h.handleMessage(conn.RecipientID, data)
		msgType := MsgAnswerResult
		if !result.Accepted {
			msgType = MsgError
		}
		h.hub.reply(conn, msgType, result)
	}
}

// handleMessage turns one inbound frame into an answer event
func (h *Handler) handleMessage(recipientID int64, data []byte) ResultPayload {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return ResultPayload{Kind: string(service.KindParseFailure), Message: "invalid message"}
	}

	ev := model.AnswerEvent{RecipientID: recipientID}
	switch msg.Type {
	case MsgPollAnswer:
		var p PollAnswerPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil || p.Token == "" {
			return ResultPayload{Kind: string(service.KindParseFailure), Message: "invalid poll answer"}
		}
		ev.Token = p.Token
		ev.OptionIDs = p.OptionIDs
	case MsgReply:
		var p TextPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return ResultPayload{Kind: string(service.KindParseFailure), Message: "invalid reply"}
		}
		ev.Text = p.Text
	default:
		return ResultPayload{Kind: string(service.KindParseFailure), Message: "unknown message type"}
	}

	ctx, cancel := context.WithTimeout(context.Background(), answerTimeout)
	defer cancel()
	if err := h.sink.HandleAnswer(ctx, ev); err != nil {
		return ResultPayload{Kind: string(service.KindOf(err)), Message: err.Error()}
	}
	return ResultPayload{Accepted: true}
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := wsConn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
