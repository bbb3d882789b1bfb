package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	red "github.com/redis/go-redis/v9"

	"github.com/Singularity-Shift/sui-squad/internal/core/domain"
)

const defaultConversationPrefix = "squad:conversation"

// ConversationCache is the Redis-backed conversation cache. TTL handling is
// delegated to key expiry, so Sweep is a no-op kept for interface parity with
// the in-memory backend.
type ConversationCache struct {
	client *red.Client
	prefix string
	ttl    time.Duration
}

// NewConversationCache constructs a Redis conversation cache helper.
func NewConversationCache(client *red.Client, keyPrefix string, ttl time.Duration) *ConversationCache {
	prefix := strings.TrimSpace(keyPrefix)
	if prefix == "" {
		prefix = defaultConversationPrefix
	}
	return &ConversationCache{client: client, prefix: prefix, ttl: ttl}
}

// Get fetches the cached turn id, refreshing the entry TTL on access.
func (c *ConversationCache) Get(ctx context.Context, key domain.UserKey) (string, bool, error) {
	value, err := c.client.GetEx(ctx, c.key(key), c.ttl).Result()
	if err != nil {
		if errors.Is(err, red.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis get conversation: %w", err)
	}
	return value, true, nil
}

// Update stores the turn id with a fresh TTL.
func (c *ConversationCache) Update(ctx context.Context, key domain.UserKey, responseID string) error {
	if err := c.client.Set(ctx, c.key(key), responseID, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set conversation: %w", err)
	}
	return nil
}

// Sweep is satisfied by Redis key expiry.
func (c *ConversationCache) Sweep(context.Context) (int, error) {
	return 0, nil
}

func (c *ConversationCache) key(key domain.UserKey) string {
	return fmt.Sprintf("%s:%s", c.prefix, key.String())
}
