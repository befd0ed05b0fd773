package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"surveycast/internal/service"

	"github.com/google/uuid"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Server to recipient message types
const (
	MsgWelcome      MessageType = "welcome"
	MsgPoll         MessageType = "poll"
	MsgText         MessageType = "text"
	MsgAnswerResult MessageType = "answer_result"
	MsgError        MessageType = "error"
)

// Recipient to server message types
const (
	MsgPollAnswer MessageType = "poll_answer"
	MsgReply      MessageType = "reply"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// PollPayload carries a choice question to a recipient
type PollPayload struct {
	Token    string   `json:"token"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// TextPayload carries a plain message to a recipient
type TextPayload struct {
	Text string `json:"text"`
}

// Hub tracks one connection per recipient and implements service.DeliveryChannel
type Hub struct {
	conns map[int64]*Connection
	mu    sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	newToken   func() string
}

// Connection represents a recipient WebSocket connection
type Connection struct {
	RecipientID int64
	Send        chan []byte
	Hub         *Hub
}

var _ service.DeliveryChannel = (*Hub)(nil)

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	h := &Hub{
		conns:      make(map[int64]*Connection),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		newToken:   func() string { return uuid.New().String() },
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if old, ok := h.conns[conn.RecipientID]; ok && old != conn {
				// A newer connection replaces the old one
				close(old.Send)
			}
			h.conns[conn.RecipientID] = conn
			h.mu.Unlock()
			log.Printf("Recipient %d connected", conn.RecipientID)

		case conn := <-h.unregister:
			h.mu.Lock()
			if existing, ok := h.conns[conn.RecipientID]; ok && existing == conn {
				delete(h.conns, conn.RecipientID)
				close(conn.Send)
				log.Printf("Recipient %d disconnected", conn.RecipientID)
			}
			h.mu.Unlock()
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// Connected reports whether a recipient currently has a live connection
func (h *Hub) Connected(recipientID int64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.conns[recipientID]
	return ok
}

// SendChoiceQuestion delivers a poll and returns its correlation token
func (h *Hub) SendChoiceQuestion(_ context.Context, recipientID int64, prompt string, options []string) (string, error) {
	token := h.newToken()
	if err := h.send(recipientID, MsgPoll, PollPayload{Token: token, Question: prompt, Options: options}); err != nil {
		return "", err
	}
	return token, nil
}

// SendText delivers a plain message
func (h *Hub) SendText(_ context.Context, recipientID int64, text string) error {
	return h.send(recipientID, MsgText, TextPayload{Text: text})
}

// send enqueues without blocking: a missing connection or a full buffer
// means the recipient is unreachable
func (h *Hub) send(recipientID int64, msgType MessageType, payload interface{}) error {
	data, err := encode(msgType, payload)
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	conn, ok := h.conns[recipientID]
	if !ok {
		return fmt.Errorf("%w: %d is not connected", service.ErrRecipientUnreachable, recipientID)
	}
	select {
	case conn.Send <- data:
		return nil
	default:
		return fmt.Errorf("%w: %d send buffer full", service.ErrRecipientUnreachable, recipientID)
	}
}

func encode(msgType MessageType, payload interface{}) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(&Message{Type: msgType, Payload: raw})
}

// reply sends to a specific connection only while it is still the
// registered one, so a replaced connection is never written to
func (h *Hub) reply(conn *Connection, msgType MessageType, payload interface{}) {
	data, err := encode(msgType, payload)
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.conns[conn.RecipientID] != conn {
		return
	}
	select {
	case conn.Send <- data:
	default:
	}
}
