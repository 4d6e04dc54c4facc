package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"heroshop/internal/core/cache"
	"heroshop/internal/features/orders/domain"
)

const (
	idempotencyKeyPrefix = "idempotency:order:"
	pendingMarker        = "pending"
)

// RedisIdempotencyStore implements ports.IdempotencyStore on the shared cache.
// A key holds "pending" while its request runs and the order id once it finishes.
type RedisIdempotencyStore struct {
	cache      cache.Cache
	ttl        time.Duration
	pendingTTL time.Duration
}

// NewRedisIdempotencyStore creates a store whose finished keys expire after ttl. A pending key
// expires after pendingTTL so a request that dies mid-flight does not block retries for long.
func NewRedisIdempotencyStore(c cache.Cache, ttl, pendingTTL time.Duration) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{
		cache:      c,
		ttl:        ttl,
		pendingTTL: pendingTTL,
	}
}

// Reserve claims the key or reports what an earlier request with it produced.
func (s *RedisIdempotencyStore) Reserve(ctx context.Context, key string) (string, bool, error) {
	k := idempotencyKeyPrefix + key

	// The second attempt covers a key that expired between SetNX and Get.
	for attempt := 0; attempt < 2; attempt++ {
		ok, err := s.cache.SetNX(ctx, k, []byte(pendingMarker), s.pendingTTL)
		if err != nil {
			return "", false, fmt.Errorf("failed to reserve idempotency key: %w", err)
		}
		if ok {
			return "", true, nil
		}

		val, err := s.cache.Get(ctx, k)
		if errors.Is(err, cache.ErrCacheMiss) {
			continue
		}
		if err != nil {
			return "", false, fmt.Errorf("failed to read idempotency key: %w", err)
		}
		if string(val) == pendingMarker {
			return "", false, domain.ErrRequestInProgress
		}
		return string(val), false, nil
	}
	return "", false, domain.ErrRequestInProgress
}

// Complete records the order id for the key.
func (s *RedisIdempotencyStore) Complete(ctx context.Context, key, orderID string) error {
	if err := s.cache.Set(ctx, idempotencyKeyPrefix+key, []byte(orderID), s.ttl); err != nil {
		return fmt.Errorf("failed to complete idempotency key: %w", err)
	}
	return nil
}

// Release forgets the key.
func (s *RedisIdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.cache.Delete(ctx, idempotencyKeyPrefix+key); err != nil {
		return fmt.Errorf("failed to release idempotency key: %w", err)
	}
	return nil
}
