package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Denylist records revoked token IDs until the token would have expired.
type Denylist interface {
	// Revoke denylists jti for ttl. first is false when jti was already
	// denylisted, which is how refresh-token reuse is detected.
	Revoke(ctx context.Context, jti string, ttl time.Duration) (first bool, err error)
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

const denylistKeyPrefix = "denylist:jti:"

// RedisDenylist keeps revoked JTIs in Redis with a TTL.
type RedisDenylist struct {
	client redis.UniversalClient
}

func NewRedisDenylist(client redis.UniversalClient) *RedisDenylist {
	return &RedisDenylist{client: client}
}

func (d *RedisDenylist) Revoke(ctx context.Context, jti string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		// already expired; nothing to deny
		return true, nil
	}
	first, err := d.client.SetNX(ctx, denylistKeyPrefix+jti, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("denylist revoke %s: %w", jti, err)
	}
	return first, nil
}

func (d *RedisDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := d.client.Exists(ctx, denylistKeyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("denylist lookup %s: %w", jti, err)
	}
	return n == 1, nil
}

// MemoryDenylist is the single-process fallback used when no Redis address
// is configured. Expired entries are dropped lazily.
type MemoryDenylist struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

func NewMemoryDenylist() *MemoryDenylist {
	return &MemoryDenylist{entries: make(map[string]time.Time), now: time.Now}
}

func (d *MemoryDenylist) Revoke(_ context.Context, jti string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return true, nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	d.sweep(now)
	if exp, ok := d.entries[jti]; ok && now.Before(exp) {
		return false, nil
	}
	d.entries[jti] = now.Add(ttl)
	return true, nil
}

func (d *MemoryDenylist) IsRevoked(_ context.Context, jti string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	exp, ok := d.entries[jti]
	return ok && d.now().Before(exp), nil
}

func (d *MemoryDenylist) sweep(now time.Time) {
	for jti, exp := range d.entries {
		if !now.Before(exp) {
			delete(d.entries, jti)
		}
	}
}

// Purge drops expired entries and reports how many were removed.
func (d *MemoryDenylist) Purge(_ context.Context) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	before := len(d.entries)
	d.sweep(d.now())
	return before - len(d.entries), nil
}
