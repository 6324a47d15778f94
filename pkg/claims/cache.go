package claims

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/robfig/cron/v3"

	"github.com/lumenhq/console/pkg/observability"
	"github.com/lumenhq/console/pkg/rbac"
)

// Entry is one cached decode result. Roles may be nil: a token that
// decoded cleanly but carried no role claim is still cached so the decode
// work is not repeated.
type Entry struct {
	Roles     []rbac.Role
	ExpiresAt time.Time
}

// CacheConfig controls cache sizing and expiry
type CacheConfig struct {
	// Namespace is the custom claim key holding the roles array
	Namespace string
	// TTL applies when the token has no exp claim
	TTL time.Duration
	// MaxEntries bounds the cache; least recently used entries are
	// evicted past it
	MaxEntries int
	// SweepInterval is the period of the background expiry sweep
	SweepInterval time.Duration
}

// DefaultCacheConfig mirrors the production defaults: one minute TTL,
// a thousand entries, five minute sweep.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TTL:           time.Minute,
		MaxEntries:    1000,
		SweepInterval: 5 * time.Minute,
	}
}

// Cache maps raw token strings to previously decoded role claims, bounded
// in size and by each token's own validity window. Safe for concurrent
// use; the LRU carries its own lock and the sweep runs on a cron schedule
// concurrent with request lookups.
type Cache struct {
	cfg       CacheConfig
	lru       *lru.Cache[string, Entry]
	extractor *rbac.Extractor
	logger    *observability.Logger
	metrics   *observability.Metrics
	cron      *cron.Cron

	// test seam
	now func() time.Time
}

// NewCache builds the token claim cache. metrics may be nil.
func NewCache(cfg CacheConfig, extractor *rbac.Extractor, logger *observability.Logger, metrics *observability.Metrics) (*Cache, error) {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = DefaultCacheConfig().MaxEntries
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultCacheConfig().TTL
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultCacheConfig().SweepInterval
	}
	if logger == nil {
		logger = observability.NewLogger(observability.InfoLevel, nil)
	}

	c := &Cache{
		cfg:       cfg,
		extractor: extractor,
		logger:    logger,
		metrics:   metrics,
		now:       time.Now,
	}

	l, err := lru.NewWithEvict(cfg.MaxEntries, func(string, Entry) {
		if c.metrics != nil {
			c.metrics.TokenCacheEvictionsTotal.Inc()
		}
	})
	if err != nil {
		return nil, err
	}
	c.lru = l

	return c, nil
}

// Lookup returns the cached entry for token, or false when absent or
// expired. Expired entries are deleted as a side effect.
func (c *Cache) Lookup(token string) (Entry, bool) {
	entry, ok := c.lru.Get(token)
	if !ok {
		c.miss()
		return Entry{}, false
	}
	if !entry.ExpiresAt.After(c.now()) {
		c.lru.Remove(token)
		c.miss()
		return Entry{}, false
	}
	c.hit()
	return entry, true
}

// Store inserts or overwrites the entry for token. The LRU evicts the
// least recently used entry when the configured maximum is exceeded.
func (c *Cache) Store(token string, roles []rbac.Role, expiresAt time.Time) {
	c.lru.Add(token, Entry{Roles: roles, ExpiresAt: expiresAt})
	if c.metrics != nil {
		c.metrics.TokenCacheEntries.Set(float64(c.lru.Len()))
	}
}

// RolesFromToken resolves the roles asserted by a raw ID token,
// consulting the cache first. A decode failure is logged and reported as
// "no roles" so the caller falls back to profile extraction. Implements
// rbac.TokenRoleSource.
func (c *Cache) RolesFromToken(token string) ([]rbac.Role, bool) {
	if token == "" {
		return nil, false
	}

	if entry, ok := c.Lookup(token); ok {
		return entry.Roles, len(entry.Roles) > 0
	}

	payload, err := Decode(token)
	if err != nil {
		c.logger.WithError(err).WithField("token_preview", preview(token)).Warn("could not decode session token")
		return nil, false
	}

	roles := c.extractor.FilterRoles(payload[c.cfg.Namespace])

	expiresAt, ok := payload.expiresAt()
	if !ok {
		expiresAt = c.now().Add(c.cfg.TTL)
	}
	c.Store(token, roles, expiresAt)

	if len(roles) == 0 {
		c.logger.WithField("namespace", c.cfg.Namespace).Debug("no roles in token custom claims")
		return nil, false
	}
	return roles, true
}

// Sweep removes every expired entry and returns the removal count. Runs
// on the cron schedule and is also callable directly.
func (c *Cache) Sweep() int {
	now := c.now()
	removed := 0
	for _, token := range c.lru.Keys() {
		if entry, ok := c.lru.Peek(token); ok && !entry.ExpiresAt.After(now) {
			c.lru.Remove(token)
			removed++
		}
	}
	if removed > 0 {
		c.logger.WithFields(map[string]interface{}{
			"removed":   removed,
			"remaining": c.lru.Len(),
		}).Debug("token cache sweep completed")
		if c.metrics != nil {
			c.metrics.TokenCacheSweepRemovals.Add(float64(removed))
		}
	}
	if c.metrics != nil {
		c.metrics.TokenCacheEntries.Set(float64(c.lru.Len()))
	}
	return removed
}

// StartSweep schedules the periodic expiry sweep. Call Stop at shutdown;
// a pending tick may complete or be skipped, either is fine.
func (c *Cache) StartSweep() error {
	c.cron = cron.New()
	_, err := c.cron.AddFunc("@every "+c.cfg.SweepInterval.String(), func() {
		defer observability.RecoverPanic(c.logger, "token cache sweep")
		c.Sweep()
	})
	if err != nil {
		return err
	}
	c.cron.Start()
	return nil
}

// Stop cancels the background sweep, waiting for an in-flight tick
func (c *Cache) Stop() {
	if c.cron != nil {
		<-c.cron.Stop().Done()
	}
}

// Len returns the current entry count
func (c *Cache) Len() int {
	return c.lru.Len()
}

// Clear drops every entry
func (c *Cache) Clear() {
	c.lru.Purge()
	if c.metrics != nil {
		c.metrics.TokenCacheEntries.Set(0)
	}
}

func (c *Cache) hit() {
	if c.metrics != nil {
		c.metrics.TokenCacheHitsTotal.Inc()
	}
}

func (c *Cache) miss() {
	if c.metrics != nil {
		c.metrics.TokenCacheMissesTotal.Inc()
	}
}

// preview truncates a token for logging; full tokens never hit the logs
func preview(token string) string {
	if len(token) <= 20 {
		return token
	}
	return token[:20] + "..."
}
