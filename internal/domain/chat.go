package domain

import "time"

// MessageType classifies a chat message
type MessageType string

const (
	MessageText  MessageType = "text"
	MessageAudio MessageType = "audio"
	MessageImage MessageType = "image"
	MessageFile  MessageType = "file"
	// System messages produced by the order and complaint workflows
	MessageOrder     MessageType = "order"
	MessageComplaint MessageType = "complaint"
)

// ParseHumanMessageType maps a client-supplied type to one a person may send.
// Anything else, including the system types, falls back to text.
func ParseHumanMessageType(s string) MessageType {
	switch t := MessageType(s); t {
	case MessageText, MessageAudio, MessageImage, MessageFile:
		return t
	}
	return MessageText
}

// Chat is either the general chat of a linking (OrderID nil) or the chat of one order.
type Chat struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	LinkingID int64     `json:"linking_id" gorm:"not null;index"`
	OrderID   *int64    `json:"order_id,omitempty" gorm:"uniqueIndex"`
	CreatedAt time.Time `json:"created_at"`
}

func (Chat) TableName() string { return "chats" }

type Message struct {
	ID       int64       `json:"id" gorm:"primaryKey"`
	ChatID   int64       `json:"chat_id" gorm:"not null;index"`
	SenderID int64       `json:"sender_id" gorm:"not null"`
	Type     MessageType `json:"type" gorm:"not null;default:'text'"`
	Body     string      `json:"body" gorm:"not null"`
	SentAt   time.Time   `json:"sent_at" gorm:"not null;index"`
}

func (Message) TableName() string { return "messages" }
