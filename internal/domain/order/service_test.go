package order

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"tradelink/internal/domain"
	"tradelink/internal/domain/chat"
	"tradelink/internal/testutil"
)

type mockBroadcaster struct {
	mock.Mock
}

func (m *mockBroadcaster) Broadcast(key chat.ConversationKey, payload []byte, excludeUserID int64) {
	m.Called(key, payload, excludeUserID)
}

func setupService(t *testing.T) (*Service, *gorm.DB, *testutil.World, *mockBroadcaster) {
	t.Helper()
	db := testutil.DB(t)
	w := testutil.Seed(t, db)

	b := &mockBroadcaster{}
	b.On("Broadcast", mock.Anything, mock.Anything, mock.Anything).Return()

	directory := chat.NewDirectory(db)
	composer := chat.NewComposer(directory, chat.NewMessageRepository(db))
	return NewService(db, directory, composer, b, zerolog.Nop()), db, w, b
}

func orderMessages(t *testing.T, db *gorm.DB, orderID int64) []domain.Message {
	t.Helper()
	var c domain.Chat
	require.NoError(t, db.Where("order_id = ?", orderID).First(&c).Error)
	var msgs []domain.Message
	require.NoError(t, db.Where("chat_id = ?", c.ID).Order("id").Find(&msgs).Error)
	return msgs
}

func statusBody(t *testing.T, msg domain.Message) chat.StatusChange {
	t.Helper()
	var sc chat.StatusChange
	require.NoError(t, json.Unmarshal([]byte(msg.Body), &sc))
	return sc
}

func TestCreate_PricesDecrementsStockAndOpensChat(t *testing.T) {
	svc, db, w, b := setupService(t)
	ctx := context.Background()

	o, err := svc.Create(ctx, w.ConsumerStaff.ID, w.Linking.ID, []LineRequest{
		{ProductID: w.Widget.ID, Quantity: 10},
		{ProductID: w.Bolt.ID, Quantity: 2},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.OrderCreated, o.Status)
	assert.Equal(t, w.ConsumerStaff.ID, o.ConsumerStaffID)
	assert.Equal(t, int64(10*40+2*5), o.TotalPrice)
	require.Len(t, o.LineItems, 2)

	var widget domain.Product
	require.NoError(t, db.First(&widget, w.Widget.ID).Error)
	assert.Equal(t, 40, widget.StockQuantity)

	msgs := orderMessages(t, db, o.ID)
	require.Len(t, msgs, 1)
	assert.Equal(t, domain.MessageOrder, msgs[0].Type)
	assert.Equal(t, w.ConsumerStaff.ID, msgs[0].SenderID)
	sc := statusBody(t, msgs[0])
	assert.Nil(t, sc.OldStatus)
	assert.Equal(t, "created", sc.NewStatus)
	assert.Equal(t, o.ID, sc.ID)

	b.AssertNumberOfCalls(t, "Broadcast", 1)
	call := b.Calls[0]
	assert.Equal(t, chat.OrderKey(o.ID), call.Arguments.Get(0))
	assert.Equal(t, chat.NoExclusion, call.Arguments.Get(2))
	assert.Contains(t, string(call.Arguments.Get(1).([]byte)), `"sender_name":"system"`)
}

func TestCreate_PriceIsFrozen(t *testing.T) {
	svc, db, w, _ := setupService(t)
	ctx := context.Background()

	o, err := svc.Create(ctx, w.ConsumerStaff.ID, w.Linking.ID, []LineRequest{{ProductID: w.Widget.ID, Quantity: 3}})
	require.NoError(t, err)

	require.NoError(t, db.Model(&domain.Product{}).Where("id = ?", w.Widget.ID).Update("retail_price", 999).Error)

	got, err := svc.Get(ctx, w.SupplierStaff.ID, o.ID)
	require.NoError(t, err)
	require.Len(t, got.LineItems, 1)
	assert.Equal(t, int64(100), got.LineItems[0].UnitPrice)
	assert.Equal(t, int64(300), got.TotalPrice)
}

func TestCreate_InsufficientStockWritesNothing(t *testing.T) {
	svc, db, w, b := setupService(t)

	_, err := svc.Create(context.Background(), w.ConsumerStaff.ID, w.Linking.ID, []LineRequest{
		{ProductID: w.Widget.ID, Quantity: 5},
		{ProductID: w.Bolt.ID, Quantity: 1001},
	})
	require.ErrorIs(t, err, ErrInsufficientStock)
	assert.ErrorIs(t, err, domain.ErrConflict)

	var orders, chats int64
	require.NoError(t, db.Model(&domain.Order{}).Count(&orders).Error)
	require.NoError(t, db.Model(&domain.Chat{}).Count(&chats).Error)
	assert.Zero(t, orders)
	assert.Zero(t, chats)

	var widget domain.Product
	require.NoError(t, db.First(&widget, w.Widget.ID).Error)
	assert.Equal(t, 50, widget.StockQuantity)
	b.AssertNotCalled(t, "Broadcast", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreate_OnlyConsumerCompany(t *testing.T) {
	svc, _, w, _ := setupService(t)

	_, err := svc.Create(context.Background(), w.SupplierStaff.ID, w.Linking.ID, []LineRequest{{ProductID: w.Widget.ID, Quantity: 1}})
	assert.ErrorIs(t, err, domain.ErrAccessDenied)

	_, err = svc.Create(context.Background(), w.ConsumerStaff.ID, 9999, []LineRequest{{ProductID: w.Widget.ID, Quantity: 1}})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateStatus_SupplierOnly(t *testing.T) {
	svc, db, w, b := setupService(t)
	ctx := context.Background()

	o, err := svc.Create(ctx, w.ConsumerStaff.ID, w.Linking.ID, []LineRequest{{ProductID: w.Widget.ID, Quantity: 1}})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, w.ConsumerStaff.ID, o.ID, "processing")
	require.ErrorIs(t, err, ErrOrderAccessDenied)

	updated, err := svc.UpdateStatus(ctx, w.SupplierStaff2.ID, o.ID, "processing")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderProcessing, updated.Status)

	msgs := orderMessages(t, db, o.ID)
	require.Len(t, msgs, 2)
	sc := statusBody(t, msgs[1])
	require.NotNil(t, sc.OldStatus)
	assert.Equal(t, "created", *sc.OldStatus)
	assert.Equal(t, "processing", sc.NewStatus)
	assert.Equal(t, w.SupplierStaff2.ID, msgs[1].SenderID)
	b.AssertNumberOfCalls(t, "Broadcast", 2)
}

func TestUpdateStatus_SameStatusIsNoop(t *testing.T) {
	svc, db, w, b := setupService(t)
	ctx := context.Background()

	o, err := svc.Create(ctx, w.ConsumerStaff.ID, w.Linking.ID, []LineRequest{{ProductID: w.Widget.ID, Quantity: 1}})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, w.SupplierStaff.ID, o.ID, "created")
	require.NoError(t, err)
	assert.Len(t, orderMessages(t, db, o.ID), 1)
	b.AssertNumberOfCalls(t, "Broadcast", 1)
}

func TestUpdateStatus_Rejections(t *testing.T) {
	svc, db, w, _ := setupService(t)
	ctx := context.Background()

	o, err := svc.Create(ctx, w.ConsumerStaff.ID, w.Linking.ID, []LineRequest{{ProductID: w.Widget.ID, Quantity: 1}})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, w.SupplierStaff.ID, o.ID, "rejected")
	assert.ErrorIs(t, err, ErrInvalidStatus)
	_, err = svc.UpdateStatus(ctx, w.SupplierStaff.ID, o.ID, "teleported")
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = svc.UpdateStatus(ctx, w.SupplierStaff.ID, 4242, "processing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, db.Model(&domain.Order{}).Where("id = ?", o.ID).Update("status", domain.OrderRejected).Error)
	_, err = svc.UpdateStatus(ctx, w.SupplierStaff.ID, o.ID, "processing")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestGetAndList_VisibleToBothCompanies(t *testing.T) {
	svc, _, w, _ := setupService(t)
	ctx := context.Background()

	o, err := svc.Create(ctx, w.ConsumerStaff.ID, w.Linking.ID, []LineRequest{{ProductID: w.Widget.ID, Quantity: 1}})
	require.NoError(t, err)

	_, err = svc.Get(ctx, w.ConsumerStaff2.ID, o.ID)
	assert.NoError(t, err)
	_, err = svc.Get(ctx, w.Outsider.ID, o.ID)
	assert.ErrorIs(t, err, domain.ErrAccessDenied)

	list, err := svc.List(ctx, w.SupplierManager.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = svc.List(ctx, w.Outsider.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}
