package chat

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"tradelink/internal/database"
	"tradelink/internal/domain"
)

// Directory resolves which chat belongs to a linking or an order.
type Directory struct {
	db *gorm.DB
}

func NewDirectory(db *gorm.DB) *Directory {
	return &Directory{db: db}
}

func (d *Directory) WithTx(tx *gorm.DB) *Directory {
	return &Directory{db: tx}
}

// GetOrCreateLinkingChat returns the general chat of a linking, creating it
// on first use. Concurrent creators converge on one row through the
// ux_chats_linking_general index. Do not call it inside a transaction:
// PostgreSQL aborts the transaction on the unique violation.
func (d *Directory) GetOrCreateLinkingChat(ctx context.Context, linkingID int64) (*domain.Chat, error) {
	chat, err := d.linkingChat(ctx, linkingID)
	if err == nil {
		return chat, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	chat = &domain.Chat{LinkingID: linkingID}
	if err := d.db.WithContext(ctx).Create(chat).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return d.linkingChat(ctx, linkingID)
		}
		return nil, err
	}
	return chat, nil
}

func (d *Directory) linkingChat(ctx context.Context, linkingID int64) (*domain.Chat, error) {
	var chat domain.Chat
	err := d.db.WithContext(ctx).
		Where("linking_id = ? AND order_id IS NULL", linkingID).
		First(&chat).Error
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

// ChatForOrder never creates. A missing chat means order creation has not
// committed yet and is reported as ErrOrderChatNotReady.
func (d *Directory) ChatForOrder(ctx context.Context, orderID int64) (*domain.Chat, error) {
	var chat domain.Chat
	err := d.db.WithContext(ctx).Where("order_id = ?", orderID).First(&chat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderChatNotReady
		}
		return nil, err
	}
	return &chat, nil
}

// CreateOrderChat is called inside the order creation transaction.
func (d *Directory) CreateOrderChat(ctx context.Context, linkingID, orderID int64) (*domain.Chat, error) {
	chat := &domain.Chat{LinkingID: linkingID, OrderID: &orderID}
	if err := d.db.WithContext(ctx).Create(chat).Error; err != nil {
		return nil, err
	}
	return chat, nil
}
