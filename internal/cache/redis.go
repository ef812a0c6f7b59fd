package cache

import (
	"context"
	"time"

	"wetmill-backend/internal/config"

	"github.com/redis/go-redis/v9"
)

// Report cache keys
const (
	YieldReportKey    = "reports:yield"
	StockReportKey    = "reports:stock"
	DeliveryReportKey = "reports:delivery"

	reportPattern = "reports:*"
)

// NewClient connects to Redis. It returns a nil client when no address is
// configured so that the service runs without a cache.
func NewClient(cfg *config.Config) (*redis.Client, error) {
	if cfg.Redis.Addr == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		// Close the failed client for graceful degradation
		client.Close()
		return nil, err
	}
	return client, nil
}

// ReportCache keeps rendered reports for a short TTL. A nil cache or a nil
// client turns every call into a no-op.
type ReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewReportCache(client *redis.Client, ttl time.Duration) *ReportCache {
	return &ReportCache{client: client, ttl: ttl}
}

func (c *ReportCache) enabled() bool {
	return c != nil && c.client != nil
}

// Get returns cached data for a key
func (c *ReportCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if !c.enabled() {
		return nil, false
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// Set stores data with the report TTL
func (c *ReportCache) Set(ctx context.Context, key string, data []byte) {
	if !c.enabled() {
		return
	}
	c.client.Set(ctx, key, data, c.ttl)
}

// InvalidateReports clears every cached report.
// Called when: purchases, bagging-offs, transfers or delivery results change
func (c *ReportCache) InvalidateReports(ctx context.Context) {
	if !c.enabled() {
		return
	}
	iter := c.client.Scan(ctx, 0, reportPattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if len(keys) > 0 {
		c.client.Del(ctx, keys...)
	}
}

// Healthy returns true if the Redis connection is working
func (c *ReportCache) Healthy(ctx context.Context) bool {
	if !c.enabled() {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return c.client.Ping(ctx).Err() == nil
}

// Enabled reports whether a Redis client is configured.
func (c *ReportCache) Enabled() bool {
	return c.enabled()
}
