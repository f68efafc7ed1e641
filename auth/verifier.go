package auth

import (
	"context"
	"sync"
	"time"
)

// CachedVerifier wraps a UserVerifier with TTL-based caching so the session
// check does not hit the database on every request.
type CachedVerifier struct {
	inner UserVerifier
	ttl   time.Duration
	now   func() time.Time

	mu    sync.RWMutex
	cache map[string]verdict
}

type verdict struct {
	ok        bool
	expiresAt time.Time
}

// NewCachedVerifier caches the answers of inner for ttl.
func NewCachedVerifier(inner UserVerifier, ttl time.Duration) *CachedVerifier {
	return &CachedVerifier{inner: inner, ttl: ttl, now: time.Now, cache: map[string]verdict{}}
}

// Verify reports whether userID still exists, using the cache if fresh.
func (c *CachedVerifier) Verify(ctx context.Context, userID string) bool {
	c.mu.RLock()
	v, ok := c.cache[userID]
	c.mu.RUnlock()
	if ok && c.now().Before(v.expiresAt) {
		return v.ok
	}

	exists := c.inner(ctx, userID)
	// A cancelled request says nothing about the user.
	if ctx.Err() != nil {
		return exists
	}
	c.mu.Lock()
	c.cache[userID] = verdict{ok: exists, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return exists
}

// Invalidate forgets the cached answer for userID.
func (c *CachedVerifier) Invalidate(userID string) {
	c.mu.Lock()
	delete(c.cache, userID)
	c.mu.Unlock()
}
