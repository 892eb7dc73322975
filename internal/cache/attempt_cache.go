package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ActiveAttemptCache is a fast-path marker for "this holder already has an
// attempt running on this quiz". Postgres remains the source of truth; the
// marker lets multiple service instances reject duplicate starts without a
// round trip to the attempts table.
type ActiveAttemptCache interface {
	// MarkActive records attemptID for the pair unless one is already
	// recorded. Returns false when the pair is already marked.
	MarkActive(ctx context.Context, holderID string, quizID uint, attemptID string, ttl time.Duration) (bool, error)

	// ActiveAttemptID returns the marked attempt id, or "" when none.
	ActiveAttemptID(ctx context.Context, holderID string, quizID uint) (string, error)

	// Clear drops the marker, on terminal transition or retake delete.
	Clear(ctx context.Context, holderID string, quizID uint) error
}

type redisAttemptCache struct {
	client *redis.Client
}

func NewRedisAttemptCache(client *redis.Client) ActiveAttemptCache {
	return &redisAttemptCache{client: client}
}

func attemptKey(holderID string, quizID uint) string {
	return fmt.Sprintf("attempt:active:%s:%d", holderID, quizID)
}

func (c *redisAttemptCache) MarkActive(ctx context.Context, holderID string, quizID uint, attemptID string, ttl time.Duration) (bool, error) {
	ok, err := c.client.SetNX(ctx, attemptKey(holderID, quizID), attemptID, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark active attempt: %w", err)
	}
	return ok, nil
}

func (c *redisAttemptCache) ActiveAttemptID(ctx context.Context, holderID string, quizID uint) (string, error) {
	id, err := c.client.Get(ctx, attemptKey(holderID, quizID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read active attempt: %w", err)
	}
	return id, nil
}

func (c *redisAttemptCache) Clear(ctx context.Context, holderID string, quizID uint) error {
	if err := c.client.Del(ctx, attemptKey(holderID, quizID)).Err(); err != nil {
		return fmt.Errorf("failed to clear active attempt: %w", err)
	}
	return nil
}
