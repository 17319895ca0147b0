package chat

import (
	"encoding/json"
	"time"

	"tradelink/internal/domain"
)

// SystemSenderName is shown for messages produced by the workflows.
const SystemSenderName = "system"

// InboundMessage is what a participant sends over the socket.
type InboundMessage struct {
	Type string `json:"type"`
	Body string `json:"body"`
}

type MessageEvent struct {
	Type        string             `json:"type"`
	MessageID   int64              `json:"message_id"`
	ChatID      int64              `json:"chat_id"`
	SenderID    int64              `json:"sender_id"`
	SenderName  string             `json:"sender_name"`
	Body        string             `json:"body"`
	MessageType domain.MessageType `json:"message_type"`
	SentAt      time.Time          `json:"sent_at"`
}

type ConnectionEvent struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	ChatID    int64  `json:"chat_id"`
	LinkingID *int64 `json:"linking_id,omitempty"`
	OrderID   *int64 `json:"order_id,omitempty"`
}

type SentEvent struct {
	Type      string    `json:"type"`
	MessageID int64     `json:"message_id"`
	SentAt    time.Time `json:"sent_at"`
}

type ErrorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// StatusChange is the body of every system message.
type StatusChange struct {
	Event     string  `json:"event"`
	Entity    string  `json:"entity"`
	ID        int64   `json:"id"`
	OldStatus *string `json:"old_status"`
	NewStatus string  `json:"new_status"`
}

func NewMessageEvent(msg *domain.Message, senderName string) MessageEvent {
	return MessageEvent{
		Type:        "message",
		MessageID:   msg.ID,
		ChatID:      msg.ChatID,
		SenderID:    msg.SenderID,
		SenderName:  senderName,
		Body:        msg.Body,
		MessageType: msg.Type,
		SentAt:      msg.SentAt,
	}
}

func NewConnectionEvent(chatID int64, key ConversationKey) ConnectionEvent {
	ev := ConnectionEvent{Type: "connection", Message: "Connected to chat", ChatID: chatID}
	id := key.ID
	if key.Kind == KindOrder {
		ev.OrderID = &id
	} else {
		ev.LinkingID = &id
	}
	return ev
}

func NewSentEvent(msg *domain.Message) SentEvent {
	return SentEvent{Type: "message_sent", MessageID: msg.ID, SentAt: msg.SentAt}
}

func NewErrorEvent(message string) ErrorEvent {
	return ErrorEvent{Type: "error", Message: message}
}

func encodeMessage(msg *domain.Message, senderName string) []byte {
	b, _ := json.Marshal(NewMessageEvent(msg, senderName))
	return b
}
