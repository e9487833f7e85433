package permission

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Identity is the (user, position) pair behind an authenticated session
// token, supplied by the identity collaborator.
type Identity struct {
	UserID   int64
	Position Position
}

// IdentitySource maps an opaque session token to the identity it
// authenticates.
type IdentitySource interface {
	IdentityForToken(ctx context.Context, token string) (Identity, error)
}

// SetResolver produces the current effective set for a user. Implemented by
// Service over the grant store.
type SetResolver interface {
	ResolveSet(userID int64) (Set, error)
}

type cacheEntry struct {
	set       Set
	userID    int64
	degraded  bool
	lastErr   error
	fetchedAt time.Time
}

// Cache memoizes effective permission sets per session token. Fetch is
// single-flight per token: concurrent callers for the same token share one
// resolution and observe the same result. When resolution fails the cache
// degrades to the position's policy defaults instead of leaving the caller
// with no permissions, and keeps the error around for observability.
type Cache struct {
	identity IdentitySource
	resolver SetResolver
	policy   *PolicyTable
	logger   *slog.Logger

	group singleflight.Group

	mu           sync.RWMutex
	entries      map[string]*cacheEntry
	tokensByUser map[int64]map[string]struct{}
}

func NewCache(identity IdentitySource, resolver SetResolver, policy *PolicyTable, logger *slog.Logger) *Cache {
	return &Cache{
		identity:     identity,
		resolver:     resolver,
		policy:       policy,
		logger:       logger,
		entries:      make(map[string]*cacheEntry),
		tokensByUser: make(map[int64]map[string]struct{}),
	}
}

// Fetch returns the effective set for the identity behind token, resolving it
// at most once per token until invalidated. A hard error is only returned
// when the token cannot be mapped to an identity at all; resolution failures
// degrade to policy defaults.
func (c *Cache) Fetch(ctx context.Context, token string) (Set, error) {
	c.mu.RLock()
	if entry, ok := c.entries[token]; ok {
		c.mu.RUnlock()
		return entry.set, nil
	}
	c.mu.RUnlock()

	v, err, _ := c.group.Do(token, func() (interface{}, error) {
		// another flight may have populated the entry between the read
		// above and winning the flight
		c.mu.RLock()
		if entry, ok := c.entries[token]; ok {
			c.mu.RUnlock()
			return entry.set, nil
		}
		c.mu.RUnlock()

		return c.load(ctx, token)
	})
	if err != nil {
		return nil, err
	}
	return v.(Set), nil
}

func (c *Cache) load(ctx context.Context, token string) (Set, error) {
	identity, err := c.identity.IdentityForToken(ctx, token)
	if err != nil {
		// no identity means no position to degrade to
		return nil, err
	}

	entry := &cacheEntry{userID: identity.UserID, fetchedAt: time.Now()}

	set, err := c.resolver.ResolveSet(identity.UserID)
	if err != nil {
		entry.set = c.policy.DefaultsFor(identity.Position)
		entry.degraded = true
		entry.lastErr = err
		c.logger.Warn("permission resolution failed, serving policy defaults",
			"user_id", identity.UserID,
			"position", identity.Position,
			"error", err)
	} else {
		entry.set = set
	}

	c.mu.Lock()
	c.entries[token] = entry
	tokens, ok := c.tokensByUser[identity.UserID]
	if !ok {
		tokens = make(map[string]struct{})
		c.tokensByUser[identity.UserID] = tokens
	}
	tokens[token] = struct{}{}
	c.mu.Unlock()

	return entry.set, nil
}

// Invalidate drops the cached entry for one session token; the next Fetch
// recomputes.
func (c *Cache) Invalidate(token string) {
	c.mu.Lock()
	if entry, ok := c.entries[token]; ok {
		delete(c.entries, token)
		if tokens, ok := c.tokensByUser[entry.userID]; ok {
			delete(tokens, token)
			if len(tokens) == 0 {
				delete(c.tokensByUser, entry.userID)
			}
		}
	}
	c.mu.Unlock()
	c.group.Forget(token)
}

// InvalidateUser drops every cached session for a user, used after a grant
// mutation changes what the user may do.
func (c *Cache) InvalidateUser(userID int64) {
	c.mu.Lock()
	tokens := c.tokensByUser[userID]
	delete(c.tokensByUser, userID)
	var stale []string
	for token := range tokens {
		delete(c.entries, token)
		stale = append(stale, token)
	}
	c.mu.Unlock()

	for _, token := range stale {
		c.group.Forget(token)
	}
}

// Degraded reports whether the cached entry for token was served from the
// fallback path, with the recorded resolution error.
func (c *Cache) Degraded(token string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if entry, ok := c.entries[token]; ok {
		return entry.degraded, entry.lastErr
	}
	return false, nil
}
