// Package cache shares rule snapshots between processes through Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fjacquet/budget-analytics/internal/logging"
	"fjacquet/budget-analytics/internal/models"
	"fjacquet/budget-analytics/internal/store"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects to Redis and verifies the connection with PING.
func NewRedisClient(ctx context.Context, address, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", address, err)
	}
	return client, nil
}

// CachedSource is a RuleSource that serves a JSON snapshot from Redis and
// refills it from the wrapped source on a miss. Redis failures are logged
// and bypassed; they never fail a lookup the inner source can answer.
type CachedSource struct {
	client *redis.Client
	inner  store.RuleSource
	key    string
	ttl    time.Duration
	logger logging.Logger
}

// NewCachedSource wraps inner with a Redis snapshot stored under key.
func NewCachedSource(client *redis.Client, inner store.RuleSource, key string, ttl time.Duration, logger logging.Logger) *CachedSource {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &CachedSource{
		client: client,
		inner:  inner,
		key:    key,
		ttl:    ttl,
		logger: logger.WithField(logging.FieldBackend, "redis"),
	}
}

// ListRules returns the cached snapshot or loads and caches a fresh one.
func (c *CachedSource) ListRules(ctx context.Context) ([]models.Rule, error) {
	rules, hit, err := c.get(ctx)
	if err != nil {
		c.logger.WithError(err).Warn("Rule cache read failed, using source")
	} else if hit {
		c.logger.Debug("Rule cache hit", logging.Field{Key: logging.FieldCount, Value: len(rules)})
		return rules, nil
	}

	rules, err = c.inner.ListRules(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.set(ctx, rules); err != nil {
		c.logger.WithError(err).Warn("Rule cache write failed")
	}
	return rules, nil
}

// Invalidate drops the cached snapshot so the next read hits the source.
func (c *CachedSource) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("failed to invalidate rule cache: %w", err)
	}
	return nil
}

func (c *CachedSource) get(ctx context.Context) ([]models.Rule, bool, error) {
	payload, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var rules []models.Rule
	if err := json.Unmarshal(payload, &rules); err != nil {
		return nil, false, fmt.Errorf("corrupt rule snapshot: %w", err)
	}
	return rules, true, nil
}

func (c *CachedSource) set(ctx context.Context, rules []models.Rule) error {
	payload, err := json.Marshal(rules)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key, payload, c.ttl).Err()
}
