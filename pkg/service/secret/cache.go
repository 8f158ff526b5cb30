package secret

import (
	"context"
	"sync"
	"time"

	"github.com/secmon-lab/nudgebot/pkg/domain/interfaces"
	"github.com/secmon-lab/nudgebot/pkg/domain/model"
)

// DefaultCacheTTL is the default lifetime of cached credentials
const DefaultCacheTTL = 5 * time.Minute

type cacheEntry struct {
	creds     model.Credentials
	expiresAt time.Time
}

// Cached wraps a SecretStore and keeps successful lookups for a TTL.
// Failures are not cached.
type Cached struct {
	store interfaces.SecretStore
	ttl   time.Duration
	now   func() time.Time

	mu    sync.Mutex
	cache map[string]cacheEntry
}

var _ interfaces.SecretStore = &Cached{}

// CacheOption is a functional option for Cached
type CacheOption func(*Cached)

// WithClock replaces time.Now
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cached) {
		c.now = now
	}
}

// NewCached creates a caching store in front of store
func NewCached(store interfaces.SecretStore, ttl time.Duration, opts ...CacheOption) *Cached {
	c := &Cached{
		store: store,
		ttl:   ttl,
		now:   time.Now,
		cache: make(map[string]cacheEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (x *Cached) GetCredentials(ctx context.Context, name string) (*model.Credentials, error) {
	now := x.now()

	x.mu.Lock()
	defer x.mu.Unlock()

	if entry, ok := x.cache[name]; ok && entry.expiresAt.After(now) {
		c := entry.creds
		return &c, nil
	}

	creds, err := x.store.GetCredentials(ctx, name)
	if err != nil {
		return nil, err
	}

	x.cache[name] = cacheEntry{
		creds:     *creds,
		expiresAt: now.Add(x.ttl),
	}
	return creds, nil
}
