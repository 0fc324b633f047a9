package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// ReportCache keeps recently assembled report payloads in Redis for a
// short TTL. Reports stay point-in-time computations; the cache only
// dedupes identical back-to-back requests at the transport level. All
// methods are nil-safe so the service runs unchanged without Redis.
type ReportCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewReportCache connects to Redis and verifies the connection.
func NewReportCache(addr, password string, db int, ttl time.Duration, logger *zap.Logger) (*ReportCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &ReportCache{client: client, ttl: ttl, logger: logger}, nil
}

// Get returns a cached report payload for the scope, if present.
func (c *ReportCache) Get(ctx context.Context, scope string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	payload, err := c.client.Get(ctx, c.key(scope)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("Report cache read failed", zap.String("scope", scope), zap.Error(err))
		}
		return nil, false
	}
	return payload, true
}

// Set stores a report payload under the scope key. Failures are logged
// and ignored; the cache is best-effort.
func (c *ReportCache) Set(ctx context.Context, scope string, payload []byte) {
	if c == nil {
		return
	}
	if err := c.client.Set(ctx, c.key(scope), payload, c.ttl).Err(); err != nil {
		c.logger.Warn("Report cache write failed", zap.String("scope", scope), zap.Error(err))
	}
}

// Close closes the Redis connection.
func (c *ReportCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}

func (c *ReportCache) key(scope string) string {
	return "insights:report:" + scope
}
