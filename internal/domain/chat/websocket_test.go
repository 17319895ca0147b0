package chat

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradelink/internal/config"
	"tradelink/internal/domain"
	"tradelink/internal/pkg/jwt"
	"tradelink/internal/repository"
	"tradelink/internal/testutil"
)

type wsEnv struct {
	server *httptest.Server
	jwt    *jwt.Service
	hub    *Hub
	world  *testutil.World
	order  *domain.Order
}

func newWSEnv(t *testing.T) *wsEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.DB(t)
	w := testutil.Seed(t, db)
	o := placeOrder(t, db, w)

	hub := NewHub(zerolog.Nop())
	j := jwt.New("ws-test-secret", time.Hour)
	svc := NewService(repository.New(db), NewDirectory(db), NewMessageRepository(db), hub)
	cfg := config.WebSocketConfig{WriteWait: 5 * time.Second, PongWait: 30 * time.Second, MaxMessageBytes: 4096}

	r := gin.New()
	RegisterWSRoutes(r, NewWSHandler(svc, hub, j, cfg, nil, zerolog.Nop()))
	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return &wsEnv{server: srv, jwt: j, hub: hub, world: w, order: o}
}

func (e *wsEnv) dial(t *testing.T, path string, u *domain.User) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(e.server.URL, "http") + path
	if u != nil {
		token, err := e.jwt.GenerateToken(u.ID, u.CompanyID, string(u.Role))
		require.NoError(t, err)
		url += "?token=" + token
	}
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var ev map[string]any
	require.NoError(t, json.Unmarshal(raw, &ev))
	return ev
}

func expectClose(t *testing.T, conn *websocket.Conn, code int) {
	t.Helper()
	_, _, err := conn.ReadMessage()
	var closeErr *websocket.CloseError
	require.ErrorAs(t, err, &closeErr)
	assert.Equal(t, code, closeErr.Code)
}

func TestWS_OrderChatRoundTrip(t *testing.T) {
	e := newWSEnv(t)
	path := fmt.Sprintf("/ws/chat/order/%d", e.order.ID)

	buyer := e.dial(t, path, e.world.ConsumerStaff)
	ack := readEvent(t, buyer)
	assert.Equal(t, "connection", ack["type"])
	assert.Equal(t, float64(e.order.ID), ack["order_id"])

	seller := e.dial(t, path, e.world.SupplierStaff)
	assert.Equal(t, "connection", readEvent(t, seller)["type"])

	require.NoError(t, buyer.WriteJSON(InboundMessage{Type: "text", Body: "where is my order?"}))

	sent := readEvent(t, buyer)
	assert.Equal(t, "message_sent", sent["type"])

	got := readEvent(t, seller)
	assert.Equal(t, "message", got["type"])
	assert.Equal(t, "where is my order?", got["body"])
	assert.Equal(t, e.world.ConsumerStaff.FullName(), got["sender_name"])
	assert.Equal(t, sent["message_id"], got["message_id"])
}

func TestWS_ErrorsKeepConnectionOpen(t *testing.T) {
	e := newWSEnv(t)
	conn := e.dial(t, fmt.Sprintf("/ws/chat/linking/%d", e.world.Linking.ID), e.world.ConsumerStaff)
	readEvent(t, conn)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	ev := readEvent(t, conn)
	assert.Equal(t, "error", ev["type"])
	assert.Equal(t, "invalid message format", ev["message"])

	require.NoError(t, conn.WriteJSON(InboundMessage{Body: "  "}))
	ev = readEvent(t, conn)
	assert.Equal(t, "error", ev["type"])
	assert.Equal(t, "message body cannot be empty", ev["message"])

	require.NoError(t, conn.WriteJSON(InboundMessage{Body: "still here"}))
	assert.Equal(t, "message_sent", readEvent(t, conn)["type"])
}

func TestWS_PolicyCloses(t *testing.T) {
	e := newWSEnv(t)
	orderPath := fmt.Sprintf("/ws/chat/order/%d", e.order.ID)

	t.Run("supplier staff who is not the salesman", func(t *testing.T) {
		conn := e.dial(t, orderPath, e.world.SupplierStaff2)
		expectClose(t, conn, websocket.ClosePolicyViolation)
		assert.Empty(t, e.hub.Members(OrderKey(e.order.ID)))
	})

	t.Run("missing token", func(t *testing.T) {
		expectClose(t, e.dial(t, orderPath, nil), websocket.ClosePolicyViolation)
	})

	t.Run("unknown order", func(t *testing.T) {
		expectClose(t, e.dial(t, "/ws/chat/order/4242", e.world.ConsumerStaff), websocket.ClosePolicyViolation)
	})

	t.Run("bad id", func(t *testing.T) {
		expectClose(t, e.dial(t, "/ws/chat/linking/abc", e.world.ConsumerStaff), websocket.ClosePolicyViolation)
	})
}

func TestWS_ShutdownClosesWithGoingAway(t *testing.T) {
	e := newWSEnv(t)
	conn := e.dial(t, fmt.Sprintf("/ws/chat/linking/%d", e.world.Linking.ID), e.world.SupplierStaff)
	readEvent(t, conn)

	e.hub.Close()
	expectClose(t, conn, websocket.CloseGoingAway)
}
