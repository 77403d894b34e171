package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"lot-dispatch-service/internal/platform/obs"
	"lot-dispatch-service/internal/ports"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// RedisTourCache keeps optimized tours in Redis with an expiry.
type RedisTourCache struct {
	rdb *redis.Client
	ttl time.Duration
}

type redisEntry struct {
	DistanceMeters float64 `json:"distance_meters"`
	storedPath
}

// NewRedisTourCache connects using a redis:// URL.
func NewRedisTourCache(ctx context.Context, url string, ttl time.Duration) (*RedisTourCache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis tour cache: parse url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis tour cache: ping: %w", err)
	}
	return &RedisTourCache{rdb: rdb, ttl: ttl}, nil
}

func (c *RedisTourCache) Get(ctx context.Context, key string) (_ ports.RouteResponse, _ bool, err error) {
	defer obs.Time(ctx, "tour.cache.redis.Get")(&err)

	data, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ports.RouteResponse{}, false, nil
	}
	if err != nil {
		return ports.RouteResponse{}, false, fmt.Errorf("redis tour cache get: %w", err)
	}

	var e redisEntry
	if err := json.Unmarshal(data, &e); err != nil {
		return ports.RouteResponse{}, false, fmt.Errorf("redis tour cache decode: %w", err)
	}
	return toRouteResponse(e.DistanceMeters, e.storedPath), true, nil
}

func (c *RedisTourCache) Put(ctx context.Context, key string, resp ports.RouteResponse) error {
	data, err := json.Marshal(redisEntry{
		DistanceMeters: resp.DistanceMeters,
		storedPath:     fromRouteResponse(resp),
	})
	if err != nil {
		return fmt.Errorf("redis tour cache encode: %w", err)
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis tour cache set: %w", err)
	}
	return nil
}

func (c *RedisTourCache) Close() error { return c.rdb.Close() }
