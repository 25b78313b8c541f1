package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/udiptgupta/Risk-lab/pkg/metrics"
	"github.com/udiptgupta/Risk-lab/pkg/models"
	"github.com/udiptgupta/Risk-lab/pkg/utils/logger"
)

// CachedMarketData is a read-through Redis cache over curve and spread
// lookups. Cache keys combine the query kind with its parameters, values are
// JSON snapshots, and eviction relies on a fixed TTL. The valuation engine
// never sees this layer; it belongs entirely to the data-access side.
//
// Cache failures degrade to the underlying store: a Redis outage makes
// lookups slower, never wrong.
type CachedMarketData struct {
	curves   CurveStore
	spreads  SpreadStore
	client   *redis.Client
	ttl      time.Duration
	recorder *metrics.Recorder
	log      *logger.Logger
}

// NewCachedMarketData wraps the given stores with a Redis TTL cache.
func NewCachedMarketData(curves CurveStore, spreads SpreadStore, addr string, ttl time.Duration, recorder *metrics.Recorder) *CachedMarketData {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	return &CachedMarketData{
		curves:   curves,
		spreads:  spreads,
		client:   client,
		ttl:      ttl,
		recorder: recorder,
		log:      logger.GetLogger("store.cache"),
	}
}

// LatestCurve resolves the curve through the cache. Unresolvable curves are
// not cached, so a curve loaded later becomes visible immediately.
func (c *CachedMarketData) LatestCurve(ctx context.Context, asOf time.Time) (*models.TermStructure, error) {
	key := "curve:latest:" + asOf.Format("2006-01-02")

	if payload, err := c.client.Get(ctx, key).Result(); err == nil {
		var curve models.TermStructure
		if err := json.Unmarshal([]byte(payload), &curve); err == nil {
			c.recorder.RecordCacheLookup("curve", true)
			return &curve, nil
		}
		c.log.Warnf("Discarding unreadable cache entry %s", key)
	}
	c.recorder.RecordCacheLookup("curve", false)

	curve, err := c.curves.LatestCurve(ctx, asOf)
	if err != nil {
		return nil, err
	}

	c.set(ctx, key, curve)
	return curve, nil
}

// SaveCurve writes through to the underlying store. Cached entries are left
// to expire rather than invalidated; the TTL bounds staleness.
func (c *CachedMarketData) SaveCurve(ctx context.Context, curve models.TermStructure) error {
	return c.curves.SaveCurve(ctx, curve)
}

// GetSpreads resolves the spread table through the cache.
func (c *CachedMarketData) GetSpreads(ctx context.Context) (models.CreditSpreads, error) {
	const key = "spreads:all"

	if payload, err := c.client.Get(ctx, key).Result(); err == nil {
		var spreads models.CreditSpreads
		if err := json.Unmarshal([]byte(payload), &spreads); err == nil {
			c.recorder.RecordCacheLookup("spreads", true)
			return spreads, nil
		}
		c.log.Warnf("Discarding unreadable cache entry %s", key)
	}
	c.recorder.RecordCacheLookup("spreads", false)

	spreads, err := c.spreads.GetSpreads(ctx)
	if err != nil {
		return nil, err
	}

	c.set(ctx, key, spreads)
	return spreads, nil
}

// SaveSpreads writes through to the underlying store.
func (c *CachedMarketData) SaveSpreads(ctx context.Context, spreads models.CreditSpreads) error {
	return c.spreads.SaveSpreads(ctx, spreads)
}

// Close releases the Redis client.
func (c *CachedMarketData) Close() error {
	return c.client.Close()
}

func (c *CachedMarketData) set(ctx context.Context, key string, value interface{}) {
	payload, err := json.Marshal(value)
	if err != nil {
		c.log.Errorf("Failed to marshal cache entry %s: %v", key, err)
		return
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.log.Warnf("Failed to write cache entry %s: %v", key, err)
	}
}
