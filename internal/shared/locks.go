package shared

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockHeld indicates another close or restore is already running for the period.
var ErrLockHeld = errors.New("closure lock already held")

// ClosureLockKey builds redis keys guarding month-end close critical sections.
func ClosureLockKey(month, year int) string {
	return fmt.Sprintf("closure:%d:%02d:lock", year, month)
}

// PeriodLock is a best-effort advisory lock around close/restore runs. It is
// not the correctness boundary; the unique index on monthly_closures is. It
// only keeps two operators from racing the same period through the UI.
type PeriodLock struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPeriodLock constructs a PeriodLock with the given hold TTL.
func NewPeriodLock(client *redis.Client, ttl time.Duration) *PeriodLock {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &PeriodLock{client: client, ttl: ttl}
}

// Acquire takes the lock for the period, returning a release function.
func (l *PeriodLock) Acquire(ctx context.Context, month, year int) (func(context.Context), error) {
	if l == nil || l.client == nil {
		return func(context.Context) {}, nil
	}
	key := ClosureLockKey(month, year)
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLockHeld
	}
	release := func(ctx context.Context) {
		// Release only our own token; an expired lock may have been retaken.
		current, err := l.client.Get(ctx, key).Result()
		if err != nil || current != token {
			return
		}
		_ = l.client.Del(ctx, key).Err()
	}
	return release, nil
}
