package chat

import (
	"context"
	"strings"
	"time"

	"tradelink/internal/domain"
	"tradelink/internal/domain/access"
	"tradelink/internal/pkg/metrics"
	"tradelink/internal/repository"
)

// Session is an authorized participant bound to one conversation.
type Session struct {
	User *domain.User
	Chat *domain.Chat
	Key  ConversationKey
}

type Service struct {
	store       *repository.Store
	directory   *Directory
	messages    *MessageRepository
	broadcaster Broadcaster
}

func NewService(store *repository.Store, directory *Directory, messages *MessageRepository, broadcaster Broadcaster) *Service {
	return &Service{
		store:       store,
		directory:   directory,
		messages:    messages,
		broadcaster: broadcaster,
	}
}

// OpenLinking authorizes userID for the general chat of a linking,
// creating the chat on first use.
func (s *Service) OpenLinking(ctx context.Context, userID, linkingID int64) (*Session, error) {
	user, err := s.store.User(ctx, userID)
	if err != nil {
		return nil, err
	}
	linking, err := s.store.Linking(ctx, linkingID)
	if err != nil {
		return nil, err
	}
	if !access.CanAccessLinkingChat(user, linking) {
		return nil, ErrChatAccessDenied
	}

	chat, err := s.directory.GetOrCreateLinkingChat(ctx, linking.ID)
	if err != nil {
		return nil, err
	}
	return &Session{User: user, Chat: chat, Key: LinkingKey(linking.ID)}, nil
}

// OpenOrder authorizes userID for an order chat. The chat is only looked up.
func (s *Service) OpenOrder(ctx context.Context, userID, orderID int64) (*Session, error) {
	user, err := s.store.User(ctx, userID)
	if err != nil {
		return nil, err
	}
	scope, err := s.store.OrderScope(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !access.CanAccessOrderChat(user, scope.Order, scope.Linking) {
		return nil, ErrChatAccessDenied
	}

	chat, err := s.directory.ChatForOrder(ctx, scope.Order.ID)
	if err != nil {
		return nil, err
	}
	return &Session{User: user, Chat: chat, Key: OrderKey(scope.Order.ID)}, nil
}

// Post persists a human message and then fans it out to the other
// participants. Nothing is stored or sent for an empty body.
func (s *Service) Post(ctx context.Context, sess *Session, in InboundMessage) (*domain.Message, error) {
	body := strings.TrimSpace(in.Body)
	if body == "" {
		return nil, ErrEmptyBody
	}

	msg := &domain.Message{
		ChatID:   sess.Chat.ID,
		SenderID: sess.User.ID,
		Type:     domain.ParseHumanMessageType(in.Type),
		Body:     body,
		SentAt:   time.Now().UTC(),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}
	metrics.ChatMessagesTotal.WithLabelValues(string(msg.Type)).Inc()

	s.broadcaster.Broadcast(sess.Key, encodeMessage(msg, sess.User.FullName()), sess.User.ID)
	return msg, nil
}

type History struct {
	ChatID   int64            `json:"chat_id"`
	Messages []domain.Message `json:"messages"`
}

func (s *Service) LinkingHistory(ctx context.Context, userID, linkingID int64, limit, offset int) (*History, error) {
	sess, err := s.OpenLinking(ctx, userID, linkingID)
	if err != nil {
		return nil, err
	}
	return s.history(ctx, sess, limit, offset)
}

func (s *Service) OrderHistory(ctx context.Context, userID, orderID int64, limit, offset int) (*History, error) {
	sess, err := s.OpenOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	return s.history(ctx, sess, limit, offset)
}

func (s *Service) history(ctx context.Context, sess *Session, limit, offset int) (*History, error) {
	msgs, err := s.messages.ListByChat(ctx, sess.Chat.ID, limit, offset)
	if err != nil {
		return nil, err
	}
	return &History{ChatID: sess.Chat.ID, Messages: msgs}, nil
}
