package ws

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/scotow/buzzer/internal/app"
)

// RoomsChannel is where room lifecycle events are published
const RoomsChannel = "buzzer:rooms"

// RedisBus publishes room lifecycle events for external observers
type RedisBus struct {
	rdb *redis.Client
	log *slog.Logger
}

// NewRedisBus connects to redis and verifies connectivity
func NewRedisBus(ctx context.Context, cfg app.Config, log *slog.Logger) (*RedisBus, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return &RedisBus{rdb: rdb, log: log}, nil
}

// Consume publishes e on RoomsChannel
func (b *RedisBus) Consume(ctx context.Context, e RoomEvent) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, RoomsChannel, raw).Err()
}

// Close shuts down the redis connection
func (b *RedisBus) Close() { _ = b.rdb.Close() }
