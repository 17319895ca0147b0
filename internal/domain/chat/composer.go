package chat

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/gorm"

	"tradelink/internal/domain"
	"tradelink/internal/pkg/metrics"
)

const (
	EntityOrder     = "order"
	EntityComplaint = "complaint"

	eventStatusChange = "status_change"
)

// Transition describes one committed state change of an order or complaint.
// Both kinds are recorded in the order's chat.
type Transition struct {
	Entity    string
	EntityID  int64
	OrderID   int64
	ActorID   int64
	OldStatus *string
	NewStatus string
}

// Composer turns workflow transitions into system messages.
type Composer struct {
	directory *Directory
	messages  *MessageRepository
}

func NewComposer(directory *Directory, messages *MessageRepository) *Composer {
	return &Composer{directory: directory, messages: messages}
}

// Compose writes the system message with tx so it commits or rolls back
// together with the transition itself.
func (c *Composer) Compose(ctx context.Context, tx *gorm.DB, t Transition) (*domain.Message, error) {
	chat, err := c.directory.WithTx(tx).ChatForOrder(ctx, t.OrderID)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(StatusChange{
		Event:     eventStatusChange,
		Entity:    t.Entity,
		ID:        t.EntityID,
		OldStatus: t.OldStatus,
		NewStatus: t.NewStatus,
	})
	if err != nil {
		return nil, err
	}

	msgType := domain.MessageOrder
	if t.Entity == EntityComplaint {
		msgType = domain.MessageComplaint
	}

	msg := &domain.Message{
		ChatID:   chat.ID,
		SenderID: t.ActorID,
		Type:     msgType,
		Body:     string(body),
		SentAt:   time.Now().UTC(),
	}
	if err := c.messages.WithTx(tx).Create(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// Announce pushes a committed system message to everyone in the order
// conversation. Call it only after the transaction committed.
func Announce(b Broadcaster, orderID int64, msg *domain.Message) {
	if b == nil || msg == nil {
		return
	}
	metrics.ChatMessagesTotal.WithLabelValues(string(msg.Type)).Inc()
	b.Broadcast(OrderKey(orderID), encodeMessage(msg, SystemSenderName), NoExclusion)
}

// StatusPtr is a helper for Transition.OldStatus.
func StatusPtr[S ~string](s S) *string {
	v := string(s)
	return &v
}
