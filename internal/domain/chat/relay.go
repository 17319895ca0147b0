package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const relayChannel = "tradelink:chat:broadcast"

const (
	minResubscribeWait = time.Second
	maxResubscribeWait = 30 * time.Second
)

type relayEnvelope struct {
	Origin  string          `json:"origin"`
	Key     ConversationKey `json:"key"`
	Exclude int64           `json:"exclude"`
	Payload json.RawMessage `json:"payload"`
}

// Relay publishes broadcasts on Redis so every instance delivers them to
// its own Hub. Exclusion travels with the payload. The publishing instance
// delivers to its own members directly and ignores its echo.
type Relay struct {
	rdb    *redis.Client
	hub    *Hub
	origin string
	log    zerolog.Logger
}

// NewRelay connects to redisURL and checks the connection.
func NewRelay(ctx context.Context, redisURL string, hub *Hub, log zerolog.Logger) (*Relay, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", opts.Addr, err)
	}

	return NewRelayWithClient(rdb, hub, log), nil
}

func NewRelayWithClient(rdb *redis.Client, hub *Hub, log zerolog.Logger) *Relay {
	return &Relay{
		rdb:    rdb,
		hub:    hub,
		origin: uuid.NewString(),
		log:    log.With().Str("component", "chat_relay").Logger(),
	}
}

// Broadcast delivers the payload to local members and publishes it for the
// other instances. A failed publish only affects remote members.
func (r *Relay) Broadcast(key ConversationKey, payload []byte, excludeUserID int64) {
	r.hub.Deliver(key, payload, excludeUserID)

	data, err := json.Marshal(relayEnvelope{
		Origin:  r.origin,
		Key:     key,
		Exclude: excludeUserID,
		Payload: payload,
	})
	if err == nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err = r.rdb.Publish(ctx, relayChannel, data).Err()
		cancel()
	}
	if err != nil {
		r.log.Warn().Err(err).Str("conversation", key.String()).Msg("relay publish failed, remote instances miss this broadcast")
	}
}

// Run consumes the relay channel until ctx is done. A failed subscription
// is retried with exponential backoff.
func (r *Relay) Run(ctx context.Context) {
	wait := minResubscribeWait
	for {
		subscribed, err := r.consume(ctx)
		if ctx.Err() != nil {
			return
		}
		if subscribed {
			wait = minResubscribeWait
		}
		r.log.Warn().Err(err).Dur("retry_in", wait).Msg("chat relay subscription lost")

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
		wait = nextResubscribeWait(wait)
	}
}

func nextResubscribeWait(wait time.Duration) time.Duration {
	wait *= 2
	if wait > maxResubscribeWait {
		return maxResubscribeWait
	}
	return wait
}

// consume reports whether the subscription was established before it ended.
func (r *Relay) consume(ctx context.Context) (bool, error) {
	sub := r.rdb.Subscribe(ctx, relayChannel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return false, fmt.Errorf("subscribe %s: %w", relayChannel, err)
	}
	r.log.Info().Str("channel", relayChannel).Msg("chat relay subscribed")

	msgs := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return true, ctx.Err()
		case m, ok := <-msgs:
			if !ok {
				return true, fmt.Errorf("subscription to %s closed", relayChannel)
			}
			r.handle(m.Payload)
		}
	}
}

func (r *Relay) handle(raw string) {
	var env relayEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		r.log.Warn().Err(err).Msg("dropping malformed relay message")
		return
	}
	if env.Origin == r.origin {
		return
	}
	r.hub.Deliver(env.Key, env.Payload, env.Exclude)
}

func (r *Relay) Close() error {
	return r.rdb.Close()
}
