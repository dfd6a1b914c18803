package push

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// envelope is the Redis wire form of a published message
type envelope struct {
	Topic   string `json:"topic"`
	Payload string `json:"payload"`
}

// RedisRelay shares publishes between server instances. Publish goes to a
// Redis channel and Run delivers every message on that channel to the local hub,
// including this instance's own.
type RedisRelay struct {
	client  redis.UniversalClient
	channel string
	hub     *Hub
	logger  *zap.Logger
}

// NewRedisRelay creates a relay between client's channel and hub
func NewRedisRelay(client redis.UniversalClient, channel string, hub *Hub, logger *zap.Logger) *RedisRelay {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisRelay{client: client, channel: channel, hub: hub, logger: logger}
}

// Publish sends the message to every instance subscribed to the channel
func (r *RedisRelay) Publish(ctx context.Context, topic string, payload []byte) error {
	data, err := json.Marshal(envelope{Topic: topic, Payload: string(payload)})
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}
	if err := r.client.Publish(ctx, r.channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish to redis: %w", err)
	}
	return nil
}

// Run forwards channel messages to the hub until ctx is done. It returns an
// error only if the subscription cannot be established.
func (r *RedisRelay) Run(ctx context.Context) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", r.channel, err)
	}
	r.logger.Info("relaying push messages through redis", zap.String("channel", r.channel))

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				r.logger.Warn("ignoring malformed relay message", zap.Error(err))
				continue
			}
			if err := r.hub.Publish(ctx, env.Topic, []byte(env.Payload)); err != nil {
				r.logger.Warn("failed to deliver relayed message", zap.String("topic", env.Topic), zap.Error(err))
			}
		}
	}
}
