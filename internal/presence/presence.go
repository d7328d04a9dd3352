package presence

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const onlineTTL = 90 * time.Second

// Tracker keeps session presence in Redis so it survives restarts and is
// shared across server instances (an in-process map would not be).
type Tracker struct {
	rdb *redis.Client
}

func NewTracker(rdb *redis.Client) *Tracker {
	return &Tracker{rdb: rdb}
}

func key(userID uint) string {
	return fmt.Sprintf("presence:user:%d", userID)
}

// Connected marks the user online and bumps the connection count.
func (t *Tracker) Connected(ctx context.Context, userID uint) {
	pipe := t.rdb.Pipeline()
	pipe.Incr(ctx, key(userID))
	pipe.Expire(ctx, key(userID), onlineTTL)
	_, _ = pipe.Exec(ctx)
}

// Disconnected decrements the connection count; the key expires on its own
// when it reaches zero or the refresh stops.
func (t *Tracker) Disconnected(ctx context.Context, userID uint) {
	n, err := t.rdb.Decr(ctx, key(userID)).Result()
	if err == nil && n <= 0 {
		_ = t.rdb.Del(ctx, key(userID)).Err()
	}
}

// Refresh extends the online TTL; called from the websocket ping loop.
func (t *Tracker) Refresh(ctx context.Context, userID uint) {
	_ = t.rdb.Expire(ctx, key(userID), onlineTTL).Err()
}

// IsOnline reports whether the user has at least one live session.
func (t *Tracker) IsOnline(ctx context.Context, userID uint) bool {
	n, err := t.rdb.Get(ctx, key(userID)).Int64()
	return err == nil && n > 0
}
