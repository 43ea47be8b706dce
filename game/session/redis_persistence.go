package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wricardo/mcp-training/jackaroo/game/service"
)

// RedisKeyPrefix namespaces session documents in Redis
const RedisKeyPrefix = "jackaroo:session:"

const redisOpTimeout = 5 * time.Second

// RedisPersistence implements SessionPersistence with one JSON string per
// session. A positive ttl expires idle sessions on the Redis side.
type RedisPersistence struct {
	client redis.UniversalClient
	codec  codec
	ttl    time.Duration
}

// NewRedisPersistence checks the connection and returns a Redis-backed store
func NewRedisPersistence(client redis.UniversalClient, configManager service.ConfigManager, ttl time.Duration) (*RedisPersistence, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to reach redis: %w", err)
	}
	return &RedisPersistence{
		client: client,
		codec:  codec{configManager: configManager},
		ttl:    ttl,
	}, nil
}

func redisKey(id string) string {
	return RedisKeyPrefix + strings.ToLower(id)
}

// Save writes the session document, refreshing its ttl
func (rp *RedisPersistence) Save(session *service.Session) error {
	_, raw, err := rp.codec.marshal(session, false)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := rp.client.Set(ctx, redisKey(session.ID), raw, rp.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session %s: %w", session.ID, err)
	}
	return nil
}

// Load reads and restores a session
func (rp *RedisPersistence) Load(id string) (*service.Session, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	raw, err := rp.client.Get(ctx, redisKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session %s: %w", id, err)
	}
	return rp.codec.unmarshal(raw)
}

// Delete removes a session document
func (rp *RedisPersistence) Delete(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	n, err := rp.client.Del(ctx, redisKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// ListAll scans the session key space
func (rp *RedisPersistence) ListAll() ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	var ids []string
	iter := rp.client.Scan(ctx, 0, RedisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		ids = append(ids, strings.TrimPrefix(iter.Val(), RedisKeyPrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return ids, nil
}

// Exists checks if a session document is present
func (rp *RedisPersistence) Exists(id string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	n, err := rp.client.Exists(ctx, redisKey(id)).Result()
	return err == nil && n > 0
}
