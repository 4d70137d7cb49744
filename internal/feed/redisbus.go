package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/impostorgame/internal/model"
)

// DefaultChannelPrefix namespaces room event channels
const DefaultChannelPrefix = "impostor:events:"

// RedisBus relays room events between nodes over Redis pub/sub.
// Events published on any node reach the subscribers connected to every node.
type RedisBus struct {
	client *redis.Client
	local  *Broadcaster
	prefix string
	logger *slog.Logger
	ready  chan struct{}

	// listening is set while Run holds an active subscription
	listening atomic.Bool
}

// NewRedisBus creates a bus that delivers received events through local
func NewRedisBus(client *redis.Client, local *Broadcaster, logger *slog.Logger) *RedisBus {
	return &RedisBus{
		client: client,
		local:  local,
		prefix: DefaultChannelPrefix,
		logger: logger.With(slog.String("component", "feed-bus")),
		ready:  make(chan struct{}),
	}
}

// Channel returns the pub/sub channel for a room
func (b *RedisBus) Channel(code model.RoomCode) string {
	return b.prefix + string(code)
}

// Publish sends the event to every node. While this node is not subscribed,
// or if Redis cannot be reached, the event is delivered to this node's
// subscribers directly.
func (b *RedisBus) Publish(ctx context.Context, event model.Event) {
	payload, err := EncodeEvent(event)
	if err != nil {
		b.logger.Error("feed failed to encode event",
			slog.String("room_code", string(event.RoomCode)),
			slog.Any("error", err))
		return
	}
	if !b.listening.Load() {
		b.local.Deliver(event.RoomCode, string(event.Type), payload)
		return
	}
	if err := b.client.Publish(ctx, b.Channel(event.RoomCode), payload).Err(); err != nil {
		b.logger.Warn("feed publish failed, delivering locally",
			slog.String("room_code", string(event.RoomCode)),
			slog.String("event", string(event.Type)),
			slog.Any("error", err))
		b.local.Deliver(event.RoomCode, string(event.Type), payload)
	}
}

// Listening reports whether Run currently holds the subscription
func (b *RedisBus) Listening() bool {
	return b.listening.Load()
}

// Ready is closed once Run's subscription is active
func (b *RedisBus) Ready() <-chan struct{} {
	return b.ready
}

// Run subscribes to every room channel and delivers received events locally
// until ctx is cancelled.
func (b *RedisBus) Run(ctx context.Context) error {
	pubsub := b.client.PSubscribe(ctx, b.prefix+"*")
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribing to room events: %w", err)
	}
	b.listening.Store(true)
	defer b.listening.Store(false)
	close(b.ready)
	b.logger.Info("feed bus subscribed", slog.String("pattern", b.prefix+"*"))

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			b.handle(msg)
		}
	}
}

func (b *RedisBus) handle(msg *redis.Message) {
	code := model.RoomCode(strings.TrimPrefix(msg.Channel, b.prefix))
	var header struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal([]byte(msg.Payload), &header); err != nil || header.Type == "" {
		b.logger.Warn("feed bus dropped malformed message",
			slog.String("channel", msg.Channel),
			slog.Any("error", err))
		return
	}
	b.local.Deliver(code, header.Type, []byte(msg.Payload))
}
