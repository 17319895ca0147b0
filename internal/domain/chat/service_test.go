package chat

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"tradelink/internal/domain"
	"tradelink/internal/repository"
	"tradelink/internal/testutil"
)

type mockBroadcaster struct {
	mock.Mock
}

func (m *mockBroadcaster) Broadcast(key ConversationKey, payload []byte, excludeUserID int64) {
	m.Called(key, payload, excludeUserID)
}

// placeOrder inserts an order by the consumer staff and opens its chat.
func placeOrder(t *testing.T, db *gorm.DB, w *testutil.World) *domain.Order {
	t.Helper()
	o := &domain.Order{
		LinkingID:       w.Linking.ID,
		ConsumerStaffID: w.ConsumerStaff.ID,
		TotalPrice:      100,
		Status:          domain.OrderCreated,
	}
	require.NoError(t, db.Create(o).Error)
	_, err := NewDirectory(db).CreateOrderChat(context.Background(), w.Linking.ID, o.ID)
	require.NoError(t, err)
	return o
}

func newTestService(db *gorm.DB, b Broadcaster) *Service {
	return NewService(repository.New(db), NewDirectory(db), NewMessageRepository(db), b)
}

func TestPost_EmptyBodyStoresAndSendsNothing(t *testing.T) {
	db := testutil.DB(t)
	w := testutil.Seed(t, db)
	b := &mockBroadcaster{}
	svc := newTestService(db, b)

	sess, err := svc.OpenLinking(context.Background(), w.ConsumerStaff.ID, w.Linking.ID)
	require.NoError(t, err)

	for _, body := range []string{"", "   ", "\n\t"} {
		_, err := svc.Post(context.Background(), sess, InboundMessage{Type: "text", Body: body})
		assert.ErrorIs(t, err, ErrEmptyBody)
		assert.ErrorIs(t, err, domain.ErrValidation)
	}

	var count int64
	require.NoError(t, db.Model(&domain.Message{}).Count(&count).Error)
	assert.Zero(t, count)
	b.AssertNotCalled(t, "Broadcast", mock.Anything, mock.Anything, mock.Anything)
}

func TestPost_PersistsThenBroadcastsWithoutSender(t *testing.T) {
	db := testutil.DB(t)
	w := testutil.Seed(t, db)
	b := &mockBroadcaster{}
	b.On("Broadcast", LinkingKey(w.Linking.ID), mock.Anything, w.ConsumerStaff.ID).Return().Once()
	svc := newTestService(db, b)

	sess, err := svc.OpenLinking(context.Background(), w.ConsumerStaff.ID, w.Linking.ID)
	require.NoError(t, err)

	msg, err := svc.Post(context.Background(), sess, InboundMessage{Type: "system", Body: " hi there "})
	require.NoError(t, err)
	assert.Equal(t, "hi there", msg.Body)
	assert.Equal(t, domain.MessageText, msg.Type, "clients cannot forge system messages")

	b.AssertExpectations(t)
	var ev MessageEvent
	require.NoError(t, json.Unmarshal(b.Calls[0].Arguments.Get(1).([]byte), &ev))
	assert.Equal(t, "message", ev.Type)
	assert.Equal(t, msg.ID, ev.MessageID)
	assert.Equal(t, w.ConsumerStaff.FullName(), ev.SenderName)
}

func TestOpenLinking_Guard(t *testing.T) {
	db := testutil.DB(t)
	w := testutil.Seed(t, db)
	svc := newTestService(db, &mockBroadcaster{})
	ctx := context.Background()

	first, err := svc.OpenLinking(ctx, w.SupplierStaff.ID, w.Linking.ID)
	require.NoError(t, err)
	second, err := svc.OpenLinking(ctx, w.ConsumerStaff.ID, w.Linking.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Chat.ID, second.Chat.ID, "one general chat per linking")

	_, err = svc.OpenLinking(ctx, w.ConsumerStaff2.ID, w.Linking.ID)
	assert.ErrorIs(t, err, domain.ErrAccessDenied)
	_, err = svc.OpenLinking(ctx, w.SupplierManager.ID, w.Linking.ID)
	assert.ErrorIs(t, err, domain.ErrAccessDenied)
	_, err = svc.OpenLinking(ctx, w.ConsumerStaff.ID, 555)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOpenOrder_Guard(t *testing.T) {
	db := testutil.DB(t)
	w := testutil.Seed(t, db)
	svc := newTestService(db, &mockBroadcaster{})
	ctx := context.Background()
	o := placeOrder(t, db, w)

	for _, u := range []*domain.User{w.ConsumerStaff, w.SupplierStaff, w.SupplierManager, w.SupplierOwner} {
		sess, err := svc.OpenOrder(ctx, u.ID, o.ID)
		require.NoError(t, err, u.Email)
		assert.Equal(t, OrderKey(o.ID), sess.Key)
	}
	for _, u := range []*domain.User{w.SupplierStaff2, w.ConsumerStaff2, w.ConsumerOwner, w.Outsider} {
		_, err := svc.OpenOrder(ctx, u.ID, o.ID)
		assert.ErrorIs(t, err, domain.ErrAccessDenied, u.Email)
	}
}

func TestOpenOrder_ChatNotReady(t *testing.T) {
	db := testutil.DB(t)
	w := testutil.Seed(t, db)
	svc := newTestService(db, &mockBroadcaster{})

	o := &domain.Order{LinkingID: w.Linking.ID, ConsumerStaffID: w.ConsumerStaff.ID, Status: domain.OrderCreated}
	require.NoError(t, db.Create(o).Error)

	_, err := svc.OpenOrder(context.Background(), w.ConsumerStaff.ID, o.ID)
	assert.ErrorIs(t, err, ErrOrderChatNotReady)
	assert.ErrorIs(t, err, domain.ErrUnavailable)
}

func TestHistory_NewestFirstWithPaging(t *testing.T) {
	db := testutil.DB(t)
	w := testutil.Seed(t, db)
	b := &mockBroadcaster{}
	b.On("Broadcast", mock.Anything, mock.Anything, mock.Anything).Return()
	svc := newTestService(db, b)
	ctx := context.Background()

	sess, err := svc.OpenLinking(ctx, w.ConsumerStaff.ID, w.Linking.ID)
	require.NoError(t, err)
	for _, body := range []string{"one", "two", "three"} {
		_, err := svc.Post(ctx, sess, InboundMessage{Body: body})
		require.NoError(t, err)
	}

	h, err := svc.LinkingHistory(ctx, w.SupplierStaff.ID, w.Linking.ID, 2, 0)
	require.NoError(t, err)
	require.Len(t, h.Messages, 2)
	assert.Equal(t, "three", h.Messages[0].Body)
	assert.Equal(t, "two", h.Messages[1].Body)

	h, err = svc.LinkingHistory(ctx, w.SupplierStaff.ID, w.Linking.ID, 2, 2)
	require.NoError(t, err)
	require.Len(t, h.Messages, 1)
	assert.Equal(t, "one", h.Messages[0].Body)

	_, err = svc.LinkingHistory(ctx, w.Outsider.ID, w.Linking.ID, 0, 0)
	assert.ErrorIs(t, err, domain.ErrAccessDenied)
}
