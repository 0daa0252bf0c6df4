package cache

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// RunStatusTTL bounds how long a run status outlives its last update.
	// The database stays authoritative once the entry expires.
	RunStatusTTL = 30 * time.Minute
	// AnalysisTTL bounds how long a stored analysis is served from Redis.
	AnalysisTTL = time.Hour
)

// Cache is the caching interface. All cache operations go through here.
// Implementations must be safe for concurrent use.
type Cache interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	SetRunStatus(ctx context.Context, contractID uuid.UUID, status string) error
	GetRunStatus(ctx context.Context, contractID uuid.UUID) (string, bool, error)
	SetAnalysis(ctx context.Context, contractID uuid.UUID, data []byte) error
	GetAnalysis(ctx context.Context, contractID uuid.UUID) ([]byte, bool, error)
	InvalidateAnalysis(ctx context.Context, contractID uuid.UUID) error
	IncrWithExpiry(ctx context.Context, key string, expiry time.Duration) (int64, error)
}

// RedisCache implements the Cache interface using go-redis/v9.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a new RedisCache from a Redis URL.
func NewRedisCache(redisURL string) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return &RedisCache{client: redis.NewClient(opts)}, nil
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// SetRunStatus records the latest analysis status of a contract so pollers
// can skip the database while a run is in flight.
func (c *RedisCache) SetRunStatus(ctx context.Context, contractID uuid.UUID, status string) error {
	return c.client.Set(ctx, RunStatusKey(contractID), status, RunStatusTTL).Err()
}

func (c *RedisCache) GetRunStatus(ctx context.Context, contractID uuid.UUID) (string, bool, error) {
	val, err := c.client.Get(ctx, RunStatusKey(contractID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// IncrWithExpiry increments a counter and starts its expiry on the first
// increment only, so the window is fixed rather than extended by traffic.
// SetAnalysis stores the encoded analysis of a contract for AnalysisTTL.
func (c *RedisCache) SetAnalysis(ctx context.Context, contractID uuid.UUID, data []byte) error {
	return c.Set(ctx, AnalysisKey(contractID), data, AnalysisTTL)
}

func (c *RedisCache) GetAnalysis(ctx context.Context, contractID uuid.UUID) ([]byte, bool, error) {
	return c.Get(ctx, AnalysisKey(contractID))
}

// InvalidateAnalysis drops the cached analysis, e.g. when a new run starts.
func (c *RedisCache) InvalidateAnalysis(ctx context.Context, contractID uuid.UUID) error {
	return c.Delete(ctx, AnalysisKey(contractID))
}

func (c *RedisCache) IncrWithExpiry(ctx context.Context, key string, expiry time.Duration) (int64, error) {
	pipe := c.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, expiry)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// Close releases the underlying connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
