package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"log/slog"

	"github.com/thinkingstill/KegelRoulette/internal/app"
	"github.com/thinkingstill/KegelRoulette/internal/room"
)

// snapshotTTL bounds how long an orphaned snapshot can linger if the
// process dies before the room is swept. Live rooms refresh it on
// every save.
const snapshotTTL = 24 * time.Hour

// Redis stores room snapshots as JSON values with a TTL.
type Redis struct {
	rdb *redis.Client
	log *slog.Logger
}

// NewRedis connects to redis and verifies connectivity
func NewRedis(ctx context.Context, cfg app.Config, log *slog.Logger) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &Redis{rdb: rdb, log: log}, nil
}

func (s *Redis) SaveRoom(ctx context.Context, r *room.Room) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key(r.ID), raw, snapshotTTL).Err()
}

func (s *Redis) LoadRoom(ctx context.Context, id string) (*room.Room, error) {
	raw, err := s.rdb.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var r room.Room
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Redis) DeleteRoom(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, key(id)).Err()
}

// Close shuts down the redis connection
func (s *Redis) Close() { _ = s.rdb.Close() }

// key namespacing for room snapshots
func key(id string) string { return "room:" + id }
