package service

import (
	"context"
	"fmt"
	"time"

	"github.com/evjobsch/backend/pkg/apperror"
	"github.com/redis/go-redis/v9"
)

// rateLimitStore is the slice of the Redis API the cooldown keys live
// on. *redis.Client satisfies it; a nil store disables rate limiting.
type rateLimitStore interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	TTL(ctx context.Context, key string) *redis.DurationCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

func rateLimitKey(userID, action string) string {
	return fmt.Sprintf("rate_limit:user:%s:%s", userID, action)
}

func CheckAndSetRateLimit(ctx context.Context, rdb rateLimitStore, userID string, action string, limit time.Duration) (bool, error) {
	if rdb == nil || limit <= 0 {
		return true, nil
	}

	wasSet, err := rdb.SetNX(ctx, rateLimitKey(userID, action), "locked", limit).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit in redis: %w", err)
	}

	return wasSet, nil
}

func GetRateLimitTTL(ctx context.Context, rdb rateLimitStore, userID string, action string) (time.Duration, error) {
	if rdb == nil {
		return 0, nil
	}
	return rdb.TTL(ctx, rateLimitKey(userID, action)).Result()
}

func ClearRateLimit(ctx context.Context, rdb rateLimitStore, userID string, action string) error {
	if rdb == nil {
		return nil
	}
	_, err := rdb.Del(ctx, rateLimitKey(userID, action)).Result()
	return err
}

// rateLimited builds the user-facing cooldown error with the remaining
// wait read back from the store.
func rateLimited(ctx context.Context, rdb rateLimitStore, userID, action, what string, limit time.Duration) error {
	ttl, _ := GetRateLimitTTL(ctx, rdb, userID, action)
	return &apperror.RateLimitError{
		Message:    fmt.Sprintf("Du kannst nur alle %.0f Sekunden %s. Bitte warte noch %.0f Sekunden", limit.Seconds(), what, ttl.Seconds()),
		RetryAfter: ttl,
	}
}
