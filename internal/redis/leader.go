package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// releaseScript deletes the lease key only while this instance still owns it,
// so an expired lease taken over by another instance is never clobbered.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Lease is a single-holder lock on a Redis key. The maintenance sweep takes
// it before each pass so only one replica does the work; the sweeps stay
// idempotent, the lease just stops every instance repeating them.
type Lease struct {
	rdb    *goredis.Client
	key    string
	holder string
	ttl    time.Duration
}

func NewLease(rdb *goredis.Client, key string, ttl time.Duration) *Lease {
	return &Lease{
		rdb:    rdb,
		key:    key,
		holder: uuid.NewString(),
		ttl:    ttl,
	}
}

// Acquire attempts to take the lease. It returns false without error when
// another instance currently holds it.
func (l *Lease) Acquire(ctx context.Context) (bool, error) {
	ok, err := l.rdb.SetNX(ctx, l.key, l.holder, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lease %s: %w", l.key, err)
	}
	return ok, nil
}

// Release gives the lease up early. A lease lost to TTL expiry needs no
// release; the script is a no-op when another holder owns the key.
func (l *Lease) Release(ctx context.Context) error {
	if err := releaseScript.Run(ctx, l.rdb, []string{l.key}, l.holder).Err(); err != nil {
		return fmt.Errorf("failed to release lease %s: %w", l.key, err)
	}
	return nil
}
