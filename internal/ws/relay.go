package ws

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisRelay shares websocket envelopes between replicas over Redis pub/sub.
type RedisRelay struct {
	rdb     *redis.Client
	channel string
	log     *zap.Logger
}

// NewRedisRelay builds a relay on channel.
func NewRedisRelay(rdb *redis.Client, channel string, log *zap.Logger) *RedisRelay {
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisRelay{rdb: rdb, channel: channel, log: log}
}

// Publish sends env to every subscribed replica.
func (r *RedisRelay) Publish(ctx context.Context, env Envelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return r.rdb.Publish(ctx, r.channel, payload).Err()
}

// Run delivers relayed envelopes to deliver until ctx is cancelled.
func (r *RedisRelay) Run(ctx context.Context, deliver func(Envelope)) {
	pubsub := r.rdb.Subscribe(ctx, r.channel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				r.log.Warn("redis relay subscription closed", zap.String("channel", r.channel))
				return
			}
			env, err := decodeEnvelope(msg.Payload)
			if err != nil {
				r.log.Warn("redis relay dropped malformed envelope", zap.Error(err))
				continue
			}
			deliver(env)
		}
	}
}

func decodeEnvelope(payload string) (Envelope, error) {
	var env Envelope
	err := json.Unmarshal([]byte(payload), &env)
	return env, err
}
