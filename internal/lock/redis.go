package lock

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// ErrLockTimeout is returned when the lock could not be acquired within the
// retry budget.
var ErrLockTimeout = errors.New("lock acquisition timed out")

// releaseScript deletes the key only when it still holds our token, so an
// expired lock re-acquired by another holder is never released by us.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end
`

// Redis is a SetNX-based locker shared across service replicas.
type Redis struct {
	client     *redis.Client
	prefix     string
	expiration time.Duration
	retryEvery time.Duration
	maxRetries int
}

// NewRedis constructs a locker with the given key prefix.
func NewRedis(client *redis.Client, prefix string) *Redis {
	return &Redis{
		client:     client,
		prefix:     prefix,
		expiration: 30 * time.Second,
		retryEvery: 50 * time.Millisecond,
		maxRetries: 100,
	}
}

// Acquire takes the lock for key, retrying until acquired or the retry budget
// or ctx expires.
func (r *Redis) Acquire(ctx context.Context, key string) (func(), error) {
	full := r.prefix + ":" + key
	token := uuid.NewString()
	for i := 0; i < r.maxRetries; i++ {
		ok, err := r.client.SetNX(ctx, full, token, r.expiration).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return func() {
				_, _ = r.client.Eval(context.Background(), releaseScript, []string{full}, token).Result()
			}, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(r.retryEvery):
		}
	}
	return nil, ErrLockTimeout
}
