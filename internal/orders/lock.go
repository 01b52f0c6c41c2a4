package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/greenmile-app/greenmile-backend/pkg/config"
)

// ErrOrderBusy is returned when the per-order lock cannot be acquired within
// the configured retry budget.
var ErrOrderBusy = errors.New("order is being modified by another request")

// lockStore defines the redis operations used by the per-order lock.
type lockStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	OrderLockKey(orderID string) string
}

// OrderLocker serializes mutations per order through Redis SETNX + TTL.
// Contenders poll with a short delay instead of failing fast, so concurrent
// cart requests queue rather than error.
type OrderLocker struct {
	client  lockStore
	ttl     time.Duration
	retries int
	delay   time.Duration
}

// NewOrderLocker builds a locker from the pricing lock settings.
func NewOrderLocker(client lockStore, cfg config.PricingConfig) (*OrderLocker, error) {
	if client == nil {
		return nil, errors.New("redis client required for order locker")
	}
	if cfg.OrderLockTTL <= 0 {
		return nil, errors.New("order lock ttl must be positive")
	}
	return &OrderLocker{
		client:  client,
		ttl:     cfg.OrderLockTTL,
		retries: cfg.OrderLockRetries,
		delay:   cfg.OrderLockRetryDelay,
	}, nil
}

// Lock acquires the order's mutation lock, polling until the retry budget is
// exhausted. The returned handle must be released by the caller.
func (l *OrderLocker) Lock(ctx context.Context, orderID uuid.UUID) (*OrderLock, error) {
	key := l.client.OrderLockKey(orderID.String())
	owner := uuid.NewString()

	attempts := l.retries + 1
	for i := 0; i < attempts; i++ {
		ok, err := l.client.SetNX(ctx, key, owner, l.ttl)
		if err != nil {
			return nil, fmt.Errorf("acquire order lock: %w", err)
		}
		if ok {
			return &OrderLock{client: l.client, key: key, owner: owner}, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.delay):
		}
	}
	return nil, ErrOrderBusy
}

// OrderLock is a held per-order lock.
type OrderLock struct {
	client lockStore
	key    string
	owner  string
}

// Release frees the lock only while this handle still owns it; an expired
// lock taken over by another request is left alone.
func (l *OrderLock) Release(ctx context.Context) error {
	value, err := l.client.Get(ctx, l.key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("read order lock owner: %w", err)
	}
	if value != l.owner {
		return nil
	}
	if err := l.client.Del(ctx, l.key); err != nil {
		return fmt.Errorf("release order lock: %w", err)
	}
	return nil
}
