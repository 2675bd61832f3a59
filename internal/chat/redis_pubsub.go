package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	channelPrefix = "chat:session:"
	publishTTL    = 5 * time.Second
)

// sessionEvent is the envelope published to Redis. Origin identifies the
// publishing instance so that it can skip its own events on the subscribe
// side; the publisher already delivered to its local viewers.
type sessionEvent struct {
	Origin  string          `json:"origin"`
	Payload json.RawMessage `json:"payload"`
	At      int64           `json:"at"`
}

// RedisPubSub bridges session broadcasts across instances via Redis pub/sub.
type RedisPubSub struct {
	client *redis.Client
	origin string
	logger *zap.Logger
}

// NewRedisPubSub creates a pub/sub bridge with a unique instance origin ID.
func NewRedisPubSub(client *redis.Client, logger *zap.Logger) *RedisPubSub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisPubSub{client: client, origin: uuid.New().String(), logger: logger}
}

// Publish sends an already-marshaled broadcast payload to the session channel.
func (r *RedisPubSub) Publish(sessionID string, payload []byte) error {
	body, err := json.Marshal(sessionEvent{Origin: r.origin, Payload: payload, At: time.Now().Unix()})
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTTL)
	defer cancel()
	return r.client.Publish(ctx, channelPrefix+sessionID, body).Err()
}

// Subscribe listens on the session channel and calls handler for each payload
// published by other instances. Returns a cancel function.
func (r *RedisPubSub) Subscribe(sessionID string, handler func(payload []byte)) (cancel func(), err error) {
	ctx, cancelCtx := context.WithCancel(context.Background())
	pubsub := r.client.Subscribe(ctx, channelPrefix+sessionID)
	if _, err = pubsub.Receive(ctx); err != nil {
		cancelCtx()
		return nil, fmt.Errorf("subscribe: %w", err)
	}
	ch := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev sessionEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					r.logger.Warn("invalid session event", zap.Error(err))
					continue
				}
				if ev.Origin == r.origin {
					continue
				}
				handler(ev.Payload)
			}
		}
	}()
	return func() { cancelCtx() }, nil
}
