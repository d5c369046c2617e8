package redislock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ignajaliff/sheen-schedule-clean/internal/domain"
	"github.com/ignajaliff/sheen-schedule-clean/internal/store"
)

type Config struct {
	Addr     string
	Password string
	DB       int
	// TTL bounds how long a crashed holder can keep a slot locked.
	TTL time.Duration
	// Wait is how long Acquire keeps retrying a held lock.
	Wait time.Duration
}

func NewClient(cfg Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// SlotLocker serializes bookings of one slot across server replicas.
type SlotLocker struct {
	client *redis.Client
	ttl    time.Duration
	wait   time.Duration
	retry  time.Duration
}

func NewSlotLocker(client *redis.Client, cfg Config) *SlotLocker {
	if cfg.TTL <= 0 {
		cfg.TTL = 10 * time.Second
	}
	if cfg.Wait < 0 {
		cfg.Wait = 0
	}
	return &SlotLocker{client: client, ttl: cfg.TTL, wait: cfg.Wait, retry: 25 * time.Millisecond}
}

func slotKey(slot domain.Slot) string {
	return "sheen:slot:" + slot.Key()
}

// Acquire takes the lock for slot. It returns store.ErrConflict when another
// holder keeps it past the wait budget and store.ErrUnavailable when redis
// cannot be reached.
func (l *SlotLocker) Acquire(ctx context.Context, slot domain.Slot) (func(context.Context) error, error) {
	if l.client == nil {
		return nil, fmt.Errorf("%w: redis client is nil", store.ErrUnavailable)
	}
	key := slotKey(slot)
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("%w: lock slot %s: %v", store.ErrUnavailable, slot.Key(), err)
		}
		if ok {
			return func(ctx context.Context) error {
				return l.release(ctx, key, token)
			}, nil
		}
		if !time.Now().Before(deadline) {
			return nil, fmt.Errorf("%w: slot %s is locked", store.ErrConflict, slot.Key())
		}

		t := time.NewTimer(l.retry)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}
}

func (l *SlotLocker) release(ctx context.Context, key, token string) error {
	err := releaseScript.Run(ctx, l.client, []string{key}, token).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to release slot lock: %w", err)
	}
	return nil
}
