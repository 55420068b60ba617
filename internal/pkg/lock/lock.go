// Package lock keeps two synchronizations from running at once, across
// replicas through Redis or inside one process otherwise.
package lock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// Locker hands out a named lock without waiting. ok is false when another
// holder has it.
type Locker interface {
	TryLock(ctx context.Context, key string) (unlock func(), ok bool, err error)
}

// Local locks within the current process.
type Local struct {
	mu   sync.Mutex
	held map[string]*sync.Mutex
}

func NewLocal() *Local {
	return &Local{held: make(map[string]*sync.Mutex)}
}

func (l *Local) TryLock(_ context.Context, key string) (func(), bool, error) {
	l.mu.Lock()
	m, ok := l.held[key]
	if !ok {
		m = &sync.Mutex{}
		l.held[key] = m
	}
	l.mu.Unlock()

	if !m.TryLock() {
		return nil, false, nil
	}
	return m.Unlock, true, nil
}

// releaseScript deletes the key only while it still holds our token, so an
// expired lock taken over by someone else is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// Redis locks with SET NX and a TTL that bounds how long a crashed holder
// can block others.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	onErr  func(error)
}

func NewRedis(client *redis.Client, ttl time.Duration, onErr func(error)) *Redis {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if onErr == nil {
		onErr = func(error) {}
	}
	return &Redis{client: client, ttl: ttl, onErr: onErr}
}

func (r *Redis) TryLock(ctx context.Context, key string) (func(), bool, error) {
	token := uuid.NewString()

	ok, err := r.client.SetNX(ctx, key, token, r.ttl).Result()
	if err != nil {
		return nil, false, errors.Wrap(err, "acquiring redis lock")
	}
	if !ok {
		return nil, false, nil
	}

	unlock := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, r.client, []string{key}, token).Err(); err != nil {
			r.onErr(errors.Wrap(err, "releasing redis lock"))
		}
	}
	return unlock, true, nil
}
