// Package cache provides a Redis-backed cache for ranked search results,
// keyed by retrieval model, normalized query, and result limit. Concurrent
// misses for the same key are collapsed with singleflight, and Redis
// failures trip a circuit breaker so scoring continues uncached.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/searchcore-labs/retrieval-ranking-platform/internal/ranker"
	"github.com/searchcore-labs/retrieval-ranking-platform/pkg/config"
	pkgredis "github.com/searchcore-labs/retrieval-ranking-platform/pkg/redis"
	"github.com/searchcore-labs/retrieval-ranking-platform/pkg/resilience"
)

const keyPrefix = "rank:"

// ResultCache caches ranked results per (model, query, limit).
type ResultCache struct {
	client  *pkgredis.Client
	cfg     config.RedisConfig
	group   singleflight.Group
	breaker *resilience.CircuitBreaker
	logger  *slog.Logger
	hits    atomic.Int64
	misses  atomic.Int64
}

// New creates a ResultCache over an established Redis client.
func New(client *pkgredis.Client, cfg config.RedisConfig) *ResultCache {
	return &ResultCache{
		client:  client,
		cfg:     cfg,
		breaker: resilience.NewCircuitBreaker("result-cache", resilience.CircuitBreakerConfig{}),
		logger:  slog.Default().With("component", "result-cache"),
	}
}

// Get returns the cached ranking for the key, if present.
func (c *ResultCache) Get(ctx context.Context, model, query string, limit int) ([]ranker.ScoredDoc, bool) {
	key := c.buildKey(model, query, limit)
	var data string
	err := c.breaker.Execute(func() error {
		var getErr error
		data, getErr = c.client.Get(ctx, key)
		if pkgredis.IsNilError(getErr) {
			return nil
		}
		return getErr
	})
	if err != nil || data == "" {
		if err != nil {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.misses.Add(1)
		return nil, false
	}
	var results []ranker.ScoredDoc
	if err := json.Unmarshal([]byte(data), &results); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	c.logger.Debug("cache hit", "model", model, "query", query, "key", key)
	return results, true
}

// Set stores a ranking under the key with the configured TTL.
func (c *ResultCache) Set(ctx context.Context, model, query string, limit int, results []ranker.ScoredDoc) {
	key := c.buildKey(model, query, limit)
	data, err := json.Marshal(results)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	err = c.breaker.Execute(func() error {
		return c.client.Set(ctx, key, data, c.cfg.CacheTTL)
	})
	if err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached ranking or computes and stores it.
// Concurrent calls for the same key share one computation. The returned
// bool reports whether the result came from cache.
func (c *ResultCache) GetOrCompute(
	ctx context.Context,
	model, query string,
	limit int,
	computeFn func() ([]ranker.ScoredDoc, error),
) ([]ranker.ScoredDoc, bool, error) {
	if results, ok := c.Get(ctx, model, query, limit); ok {
		return results, true, nil
	}
	key := c.buildKey(model, query, limit)
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		if results, ok := c.Get(ctx, model, query, limit); ok {
			return results, nil
		}
		results, err := computeFn()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, model, query, limit, results)
		return results, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.([]ranker.ScoredDoc), false, nil
}

// Invalidate removes every cached ranking.
func (c *ResultCache) Invalidate(ctx context.Context) error {
	deleted, err := c.client.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating result cache: %w", err)
	}
	c.logger.Info("cache invalidated", "keys_deleted", deleted)
	return nil
}

// Stats returns the hit and miss counts since startup.
func (c *ResultCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *ResultCache) buildKey(model, query string, limit int) string {
	raw := fmt.Sprintf("%s:%s:limit=%d", model, normalizeQuery(query), limit)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}

// normalizeQuery canonicalizes a query so that reordered terms share a
// cache entry: unigram scoring is order-independent for both models.
func normalizeQuery(query string) string {
	terms := strings.Fields(strings.ToLower(query))
	sort.Strings(terms)
	return strings.Join(terms, " ")
}
