// Package rescache caches shaped search responses in a key-value store,
// keyed by a per-tenant epoch so a whole tenant invalidates with one atomic
// increment instead of key enumeration.
package rescache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docgate/internal/db"
	"github.com/kailas-cloud/docgate/internal/domain"
)

const (
	entryKeyPrefix = domain.KeyPrefix + "cache:"
	epochKeyPrefix = domain.KeyPrefix + "cache:epoch:"

	// DefaultTTL bounds staleness when invalidation itself fails.
	DefaultTTL = 60 * time.Second
)

// store is the consumer interface for the result cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	IncrBy(ctx context.Context, key string, val int64) (int64, error)
	Ping(ctx context.Context) error
}

// Cache stores serialized faceted responses with a TTL.
type Cache struct {
	store              store
	ttl                time.Duration
	lookupTotal        *prometheus.CounterVec
	invalidationsTotal prometheus.Counter
	logger             *zap.Logger
}

// New creates a result cache.
// lookupTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(s store, ttl time.Duration, lookupTotal *prometheus.CounterVec, logger *zap.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{store: s, ttl: ttl, lookupTotal: lookupTotal, logger: logger}
}

// WithInvalidationCounter wires the invalidation counter, passed explicitly.
func (c *Cache) WithInvalidationCounter(counter prometheus.Counter) *Cache {
	c.invalidationsTotal = counter
	return c
}

// Key computes the cache key for a search. The key mixes in the tenant's
// current epoch, so an epoch increment orphans every earlier entry. The hash
// discriminates all of query text, page, and page size; distinct pages or
// sizes never collide.
func (c *Cache) Key(ctx context.Context, tenantID, queryText string, page, pageSize int) (string, error) {
	epoch, err := c.epoch(ctx, tenantID)
	if err != nil {
		return "", err
	}

	h := sha256.Sum256(fmt.Appendf(nil, "%s|%d|%d", queryText, page, pageSize))
	return fmt.Sprintf("%s%s:%d:%s", entryKeyPrefix, tenantID, epoch, hex.EncodeToString(h[:])), nil
}

// Get returns the cached response for key. A corrupt entry is reported as a
// miss, never as an error: the caller re-fetches from the store and the
// entry ages out by TTL.
func (c *Cache) Get(ctx context.Context, key string) (domain.FacetedResponse, bool, error) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			c.incLookup("miss")
			return domain.FacetedResponse{}, false, nil
		}
		return domain.FacetedResponse{}, false, fmt.Errorf("cache get: %w", err)
	}

	var resp domain.FacetedResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		c.logger.Warn("Corrupt cache entry, treating as miss",
			zap.String("key", key), zap.Error(err))
		c.incLookup("miss")
		return domain.FacetedResponse{}, false, nil
	}

	c.incLookup("hit")
	return resp, true, nil
}

// Set stores a response under key with the configured TTL. Best-effort from
// the caller's perspective; failures must not fail the search.
func (c *Cache) Set(ctx context.Context, key string, resp domain.FacetedResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// InvalidateTenant atomically bumps the tenant's epoch. Every entry keyed
// under an earlier epoch becomes unreachable and expires by TTL; nothing is
// enumerated or deleted.
func (c *Cache) InvalidateTenant(ctx context.Context, tenantID string) error {
	if _, err := c.store.IncrBy(ctx, epochKeyPrefix+tenantID, 1); err != nil {
		return fmt.Errorf("invalidate tenant %s: %w", tenantID, err)
	}
	if c.invalidationsTotal != nil {
		c.invalidationsTotal.Inc()
	}
	return nil
}

// Ping checks cache store connectivity.
func (c *Cache) Ping(ctx context.Context) error {
	return c.store.Ping(ctx)
}

// epoch reads the tenant's current epoch; a tenant with no epoch key yet is
// at epoch 0.
func (c *Cache) epoch(ctx context.Context, tenantID string) (int64, error) {
	data, err := c.store.Get(ctx, epochKeyPrefix+tenantID)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("read tenant epoch: %w", err)
	}

	epoch, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse tenant epoch %q: %w", data, err)
	}
	return epoch, nil
}

func (c *Cache) incLookup(result string) {
	if c.lookupTotal != nil {
		c.lookupTotal.WithLabelValues(result).Inc()
	}
}
