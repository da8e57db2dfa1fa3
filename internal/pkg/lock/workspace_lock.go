// internal/pkg/lock/workspace_lock.go
package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock key only when it still holds our token, so
// an expired lock reacquired by another call is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// WorkspaceLock serializes billing writes per workspace. A charge in flight
// for a workspace blocks any other orchestration call for the same workspace
// until the ledger write lands or the TTL expires.
type WorkspaceLock struct {
	client *redis.Client
	ttl    time.Duration
}

func NewWorkspaceLock(client *redis.Client, ttl time.Duration) *WorkspaceLock {
	return &WorkspaceLock{client: client, ttl: ttl}
}

// Acquire blocks until the workspace lock is held or ctx is done. The
// returned release function is safe to call once.
func (l *WorkspaceLock) Acquire(ctx context.Context, workspaceID int64) (func(), error) {
	key := fmt.Sprintf("billing:lock:ws:%d", workspaceID)
	token := ulid.Make().String()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire billing lock: %w", err)
		}
		if ok {
			break
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("billing lock wait cancelled: %w", ctx.Err())
		case <-time.After(100 * time.Millisecond):
		}
	}

	release := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = releaseScript.Run(ctx, l.client, []string{key}, token).Err()
	}
	return release, nil
}
