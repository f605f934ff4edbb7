// internal/publish/redis.go
package publish

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/showdown-ai/psbot/service/internal/battle"
)

// channelPublisher is the subset of *redis.Client used for publishing.
type channelPublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisPublisher sends snapshot envelopes as JSON on a Redis pub/sub channel.
// It is safe for concurrent use by several sessions.
type RedisPublisher struct {
	client  channelPublisher
	channel string
}

var _ battle.Publisher = (*RedisPublisher)(nil)

// NewRedisPublisher publishes through client on channel.
func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel}
}

// Dial connects to addr and verifies the connection with a PING.
func Dial(ctx context.Context, addr, channel string) (*RedisPublisher, *redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("connect redis %s: %w", addr, err)
	}
	return NewRedisPublisher(client, channel), client, nil
}

// Channel returns the pub/sub channel name.
func (p *RedisPublisher) Channel() string { return p.channel }

// Publish implements battle.Publisher.
func (p *RedisPublisher) Publish(ctx context.Context, env battle.Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode snapshot %s/%d: %w", env.Battle, env.Seq, err)
	}
	if err := p.client.Publish(ctx, p.channel, data).Err(); err != nil {
		return fmt.Errorf("publish snapshot %s/%d: %w", env.Battle, env.Seq, err)
	}
	return nil
}
