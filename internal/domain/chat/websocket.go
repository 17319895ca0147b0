package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"tradelink/internal/config"
	"tradelink/internal/domain"
	"tradelink/internal/pkg/jwt"
	"tradelink/internal/repository"
)

// WSHandler runs the chat connection lifecycle:
// Connecting (upgrade, token, guard) -> Open (read loop) -> Closed.
type WSHandler struct {
	service  *Service
	hub      *Hub
	jwt      *jwt.Service
	cfg      config.WebSocketConfig
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

func NewWSHandler(service *Service, hub *Hub, jwtService *jwt.Service, cfg config.WebSocketConfig, allowedOrigins []string, log zerolog.Logger) *WSHandler {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}
	return &WSHandler{
		service: service,
		hub:     hub,
		jwt:     jwtService,
		cfg:     cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(origins) == 0 || origin == "" || origins[origin]
			},
		},
		log: log.With().Str("component", "chat_ws").Logger(),
	}
}

// ServeLinking handles GET /ws/chat/linking/:id?token=JWT
func (h *WSHandler) ServeLinking(c *gin.Context) {
	h.serve(c, KindLinking)
}

// ServeOrder handles GET /ws/chat/order/:id?token=JWT
func (h *WSHandler) ServeOrder(c *gin.Context) {
	h.serve(c, KindOrder)
}

func (h *WSHandler) serve(c *gin.Context, kind ConversationKind) {
	// Upgrade before checking anything so every rejection is a close code
	// the client can read.
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	ch := newWSChannel(conn, h.cfg.WriteWait)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		_ = ch.Close(websocket.ClosePolicyViolation, "invalid conversation id")
		return
	}

	claims, reason := h.authenticate(c)
	if claims == nil {
		_ = ch.Close(websocket.ClosePolicyViolation, reason)
		return
	}

	var sess *Session
	if kind == KindOrder {
		sess, err = h.service.OpenOrder(ctx, claims.UserID, id)
	} else {
		sess, err = h.service.OpenLinking(ctx, claims.UserID, id)
	}
	if err != nil {
		code, reason := closeCodeFor(err)
		if code == websocket.CloseInternalServerErr {
			h.log.Error().Err(err).Str("kind", string(kind)).Int64("id", id).Msg("failed to open chat")
		}
		_ = ch.Close(code, reason)
		return
	}

	if err := h.hub.Register(sess.Key, sess.User.ID, ch); err != nil {
		_ = ch.Close(websocket.CloseGoingAway, "server shutting down")
		return
	}
	defer func() {
		h.hub.Unregister(sess.Key, sess.User.ID, ch)
		_ = ch.Close(websocket.CloseNormalClosure, "")
		h.log.Info().Str("conversation", sess.Key.String()).Int64("user_id", sess.User.ID).Msg("chat connection closed")
	}()
	h.log.Info().Str("conversation", sess.Key.String()).Int64("user_id", sess.User.ID).Msg("chat connection open")

	if err := ch.sendJSON(NewConnectionEvent(sess.Chat.ID, sess.Key)); err != nil {
		return
	}

	stop := make(chan struct{})
	defer close(stop)
	go h.pingLoop(ch, stop)

	h.readLoop(ctx, conn, ch, sess)
}

// authenticate accepts ?token= or an Authorization bearer header.
func (h *WSHandler) authenticate(c *gin.Context) (*jwt.Claims, string) {
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
			token = strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		}
	}
	if token == "" {
		return nil, "token required"
	}
	claims, err := h.jwt.ValidateToken(token)
	if err != nil {
		return nil, "invalid token"
	}
	return claims, ""
}

func closeCodeFor(err error) (int, string) {
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		return websocket.ClosePolicyViolation, "user not found"
	case errors.Is(err, domain.ErrNotFound):
		return websocket.ClosePolicyViolation, "conversation not found"
	case errors.Is(err, domain.ErrAccessDenied):
		return websocket.ClosePolicyViolation, "access denied"
	case errors.Is(err, domain.ErrUnavailable):
		return websocket.CloseTryAgainLater, "chat not ready, retry"
	default:
		return websocket.CloseInternalServerErr, "server error"
	}
}

func (h *WSHandler) pingLoop(ch *wsChannel, stop <-chan struct{}) {
	ticker := time.NewTicker(h.cfg.PingPeriod())
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := ch.ping(); err != nil {
				return
			}
		}
	}
}

// readLoop handles one sender's frames strictly in order.
func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, ch *wsChannel, sess *Session) {
	conn.SetReadLimit(h.cfg.MaxMessageBytes)
	_ = conn.SetReadDeadline(time.Now().Add(h.cfg.PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.cfg.PongWait))
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug().Err(err).Int64("user_id", sess.User.ID).Msg("chat connection dropped")
			}
			return
		}

		var in InboundMessage
		if err := json.Unmarshal(raw, &in); err != nil {
			_ = ch.sendJSON(NewErrorEvent("invalid message format"))
			continue
		}

		msg, err := h.service.Post(ctx, sess, in)
		if err != nil {
			if errors.Is(err, domain.ErrValidation) {
				_ = ch.sendJSON(NewErrorEvent(strings.TrimSuffix(err.Error(), ": "+domain.ErrValidation.Error())))
				continue
			}
			h.log.Error().Err(err).Str("conversation", sess.Key.String()).Int64("user_id", sess.User.ID).Msg("failed to store chat message")
			_ = ch.sendJSON(NewErrorEvent("failed to process message"))
			_ = ch.Close(websocket.CloseInternalServerErr, "server error")
			return
		}

		if err := ch.sendJSON(NewSentEvent(msg)); err != nil {
			return
		}
	}
}
