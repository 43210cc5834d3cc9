package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"machsafe/internal/platform/redis"
)

const unreadTTL = 5 * time.Minute

// ErrMiss is returned when no cached count exists for the user.
var ErrMiss = errors.New("unread count not cached")

// UnreadCounter caches per-user unread counts so the badge poll does not hit
// Postgres on every request. All methods are safe on a nil receiver and on a
// nil client, degrading to a pass-through when Redis is not configured.
type UnreadCounter struct {
	client *redis.Client
}

func NewUnreadCounter(client *redis.Client) *UnreadCounter {
	if client == nil {
		return nil
	}
	return &UnreadCounter{client: client}
}

func unreadKey(tenantID, userID uuid.UUID) string {
	return fmt.Sprintf("notif:unread:%s:%s", tenantID, userID)
}

func (c *UnreadCounter) Get(ctx context.Context, tenantID, userID uuid.UUID) (int, error) {
	if c == nil {
		return 0, ErrMiss
	}
	count, err := c.client.Get(ctx, unreadKey(tenantID, userID)).Int()
	if errors.Is(err, goredis.Nil) {
		return 0, ErrMiss
	}
	if err != nil {
		return 0, fmt.Errorf("get unread count: %w", err)
	}
	return count, nil
}

func (c *UnreadCounter) Set(ctx context.Context, tenantID, userID uuid.UUID, count int) error {
	if c == nil {
		return nil
	}
	if err := c.client.Set(ctx, unreadKey(tenantID, userID), count, unreadTTL).Err(); err != nil {
		return fmt.Errorf("set unread count: %w", err)
	}
	return nil
}

// Invalidate drops the cached count after any mutation of the inbox.
func (c *UnreadCounter) Invalidate(ctx context.Context, tenantID, userID uuid.UUID) error {
	if c == nil {
		return nil
	}
	if err := c.client.Del(ctx, unreadKey(tenantID, userID)).Err(); err != nil {
		return fmt.Errorf("invalidate unread count: %w", err)
	}
	return nil
}
