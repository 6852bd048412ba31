// Package notify publishes committed ledger events to Redis pub/sub.
package notify

import (
	"context"
	"encoding/json"

	"carbon-exchange/internal/domain"

	"github.com/redis/go-redis/v9"
)

// DefaultChannel is used when no channel is configured.
const DefaultChannel = "carbon:ledger:events"

// RedisPublisher sends each event as JSON on one channel.
type RedisPublisher struct {
	Rdb     *redis.Client
	Channel string
}

func NewRedisPublisher(rdb *redis.Client, channel string) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{Rdb: rdb, Channel: channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, event domain.LedgerEvent) error {
	if p == nil || p.Rdb == nil {
		return nil
	}
	b, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.Rdb.Publish(ctx, p.Channel, b).Err()
}
