package redis

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/credimart/lending-service/internal/domain/port"
	"github.com/credimart/lending-service/pkg/redis"
)

// releaseScript deletes the lock key only when the stored token matches, so
// a holder whose TTL already expired cannot release a lock reacquired by
// someone else.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`

// Locker implements port.Locker with SET NX EX and token-checked release.
type Locker struct {
	client *redis.Client
	logger *slog.Logger
}

// NewLocker creates a Redis-backed distributed locker.
func NewLocker(client *redis.Client, logger *slog.Logger) *Locker {
	return &Locker{client: client, logger: logger}
}

// Acquire takes the named lock for at most ttl. The returned release
// function is idempotent; release failures are logged, not returned, because
// the TTL bounds the damage.
func (l *Locker) Acquire(ctx context.Context, name string, ttl time.Duration) (func(), error) {
	key := fmt.Sprintf("lending:lock:%s", name)
	token := uuid.New().String()

	ok, err := l.client.SetNX(ctx, key, token, ttl)
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", name, err)
	}
	if !ok {
		return nil, port.ErrLockNotAcquired
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			// Release must not die with the request context.
			releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if _, err := l.client.Eval(releaseCtx, releaseScript, []string{key}, []string{token}); err != nil {
				l.logger.Warn("lock release failed", "lock", name, "error", err)
			}
		})
	}
	return release, nil
}
