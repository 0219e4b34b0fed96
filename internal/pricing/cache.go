package pricing

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Cache is a time-bounded price cache. Implementations must treat their own
// failures as misses; a broken cache degrades to a provider fetch.
type Cache interface {
	Get(ctx context.Context, symbol string) (decimal.Decimal, bool)
	Set(ctx context.Context, symbol string, price decimal.Decimal, ttl time.Duration)
}

const cacheKeyPrefix = "price:"

// RedisCache caches prices in Redis with an explicit TTL.
type RedisCache struct {
	client *redis.Client
	logger zerolog.Logger
}

// NewRedisCache creates a Redis-backed price cache.
func NewRedisCache(client *redis.Client, logger zerolog.Logger) *RedisCache {
	return &RedisCache{client: client, logger: logger}
}

func (c *RedisCache) Get(ctx context.Context, symbol string) (decimal.Decimal, bool) {
	val, err := c.client.Get(ctx, cacheKeyPrefix+symbol).Result()
	if err == redis.Nil {
		return decimal.Decimal{}, false
	}
	if err != nil {
		c.logger.Debug().Err(err).Str("symbol", symbol).Msg("price cache read failed")
		return decimal.Decimal{}, false
	}

	price, err := decimal.NewFromString(val)
	if err != nil {
		c.logger.Warn().Err(err).Str("symbol", symbol).Str("value", val).Msg("corrupt cached price")
		return decimal.Decimal{}, false
	}
	return price, true
}

func (c *RedisCache) Set(ctx context.Context, symbol string, price decimal.Decimal, ttl time.Duration) {
	if err := c.client.Set(ctx, cacheKeyPrefix+symbol, price.String(), ttl).Err(); err != nil {
		c.logger.Debug().Err(err).Str("symbol", symbol).Msg("price cache write failed")
	}
}
