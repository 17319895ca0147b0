package chat

import (
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"tradelink/internal/pkg/metrics"
)

type ConversationKind string

const (
	KindLinking ConversationKind = "linking"
	KindOrder   ConversationKind = "order"
)

// ConversationKey identifies one live conversation. Linking and order
// conversations live in separate key spaces.
type ConversationKey struct {
	Kind ConversationKind `json:"kind"`
	ID   int64            `json:"id"`
}

func LinkingKey(linkingID int64) ConversationKey {
	return ConversationKey{Kind: KindLinking, ID: linkingID}
}

func OrderKey(orderID int64) ConversationKey {
	return ConversationKey{Kind: KindOrder, ID: orderID}
}

func (k ConversationKey) String() string {
	return fmt.Sprintf("%s:%d", k.Kind, k.ID)
}

// Channel is one live connection to a participant.
type Channel interface {
	Send(payload []byte) error
	Close(code int, reason string) error
}

// Broadcaster delivers a payload to every participant of a conversation
// except excludeUserID. Pass NoExclusion to reach everyone.
type Broadcaster interface {
	Broadcast(key ConversationKey, payload []byte, excludeUserID int64)
}

// NoExclusion is never a valid user id.
const NoExclusion int64 = 0

type room struct {
	mu      sync.Mutex
	members map[int64]Channel
}

// Hub owns every live channel of this process, keyed by conversation and
// then by user. One user holds at most one channel per conversation.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[ConversationKey]*room
	closed bool
	log    zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		rooms: make(map[ConversationKey]*room),
		log:   log.With().Str("component", "chat_hub").Logger(),
	}
}

// Register stores ch for the user. A previous channel of the same user in
// the same conversation is replaced and closed.
func (h *Hub) Register(key ConversationKey, userID int64, ch Channel) error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return ErrHubClosed
	}
	r, ok := h.rooms[key]
	if !ok {
		r = &room{members: make(map[int64]Channel)}
		h.rooms[key] = r
	}
	r.mu.Lock()
	old, replaced := r.members[userID]
	r.members[userID] = ch
	r.mu.Unlock()
	h.mu.Unlock()

	if replaced && old != ch {
		h.log.Debug().Str("conversation", key.String()).Int64("user_id", userID).Msg("replacing previous connection")
		_ = old.Close(websocket.ClosePolicyViolation, "replaced by a newer connection")
	} else {
		metrics.ChatConnections.WithLabelValues(string(key.Kind)).Inc()
	}
	return nil
}

// Unregister removes the user's channel only if it is still ch, so a stale
// connection shutting down cannot evict its replacement.
func (h *Hub) Unregister(key ConversationKey, userID int64, ch Channel) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.removeLocked(key, userID, ch)
}

func (h *Hub) removeLocked(key ConversationKey, userID int64, ch Channel) bool {
	r, ok := h.rooms[key]
	if !ok {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.members[userID]
	if !ok || current != ch {
		return false
	}
	delete(r.members, userID)
	if len(r.members) == 0 {
		delete(h.rooms, key)
	}
	metrics.ChatConnections.WithLabelValues(string(key.Kind)).Dec()
	return true
}

// Broadcast implements Broadcaster for a single process.
func (h *Hub) Broadcast(key ConversationKey, payload []byte, excludeUserID int64) {
	h.Deliver(key, payload, excludeUserID)
}

// Deliver sends payload to every member except excludeUserID and returns
// how many sends succeeded. Members whose send fails are removed.
func (h *Hub) Deliver(key ConversationKey, payload []byte, excludeUserID int64) int {
	h.mu.RLock()
	r, ok := h.rooms[key]
	if ok {
		r.mu.Lock()
	}
	h.mu.RUnlock()
	if !ok {
		return 0
	}

	metrics.ChatBroadcastsTotal.WithLabelValues(string(key.Kind)).Inc()

	delivered := 0
	var dead []int64
	for userID, ch := range r.members {
		if userID == excludeUserID {
			continue
		}
		if err := ch.Send(payload); err != nil {
			h.log.Debug().Err(err).Str("conversation", key.String()).Int64("user_id", userID).Msg("pruning dead connection")
			dead = append(dead, userID)
			continue
		}
		delivered++
	}
	for _, userID := range dead {
		ch := r.members[userID]
		delete(r.members, userID)
		_ = ch.Close(websocket.CloseGoingAway, "send failed")
		metrics.ChatConnections.WithLabelValues(string(key.Kind)).Dec()
		metrics.ChatPrunedTotal.WithLabelValues(string(key.Kind)).Inc()
	}
	empty := len(r.members) == 0
	r.mu.Unlock()

	if empty {
		h.dropIfEmpty(key, r)
	}
	return delivered
}

func (h *Hub) dropIfEmpty(key ConversationKey, r *room) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[key] != r {
		return
	}
	r.mu.Lock()
	if len(r.members) == 0 {
		delete(h.rooms, key)
	}
	r.mu.Unlock()
}

// Members lists the user ids connected to a conversation.
func (h *Hub) Members(key ConversationKey) []int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	r, ok := h.rooms[key]
	if !ok {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]int64, 0, len(r.members))
	for id := range r.members {
		ids = append(ids, id)
	}
	return ids
}

// Conversations returns how many conversations have at least one member.
func (h *Hub) Conversations() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

// Close shuts every channel with "going away" and rejects later registrations.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	var all []Channel
	for key, r := range h.rooms {
		r.mu.Lock()
		for _, ch := range r.members {
			all = append(all, ch)
		}
		metrics.ChatConnections.WithLabelValues(string(key.Kind)).Sub(float64(len(r.members)))
		r.members = map[int64]Channel{}
		r.mu.Unlock()
	}
	h.rooms = make(map[ConversationKey]*room)
	h.mu.Unlock()

	for _, ch := range all {
		_ = ch.Close(websocket.CloseGoingAway, "server shutting down")
	}
	h.log.Info().Int("connections", len(all)).Msg("chat hub closed")
}
