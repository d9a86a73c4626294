package relay

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

// releaseIfOwner deletes the key only while it still carries our owner id,
// so an expired holder cannot drop a lock another replica has since taken.
var releaseIfOwner = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker hands out the relay lease so a single replica drains the outbox at a time.
type Locker struct {
	client *redis.Client
}

// NewLocker returns nil when redis is not configured; the relay then runs
// without a lock.
func NewLocker(client *redis.Client) *Locker {
	if client == nil {
		return nil
	}
	return &Locker{client: client}
}

// Lease is a held relay lock.
type Lease struct {
	client *redis.Client
	key    string
	owner  string
}

// Acquire takes the named lease for ttl. It returns nil without error when
// another replica holds it.
func (l *Locker) Acquire(ctx context.Context, name string, ttl time.Duration) (*Lease, error) {
	if l == nil || l.client == nil {
		return nil, errors.New("relay locker not configured")
	}
	if name == "" || ttl <= 0 {
		return nil, errors.New("relay lease needs a name and a positive ttl")
	}

	owner := uuid.NewString()
	acquired, err := l.client.SetNX(ctx, name, owner, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, nil
	}
	return &Lease{client: l.client, key: name, owner: owner}, nil
}

func (ls *Lease) Release(ctx context.Context) error {
	if ls == nil {
		return nil
	}
	return releaseIfOwner.Run(ctx, ls.client, []string{ls.key}, ls.owner).Err()
}
