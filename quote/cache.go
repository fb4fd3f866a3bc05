package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// Cached is a read-through Redis cache in front of another Provider.
// Lookup failures of the cache itself fall through to the inner provider.
type Cached struct {
	next Provider
	rdb  *redis.Client
	ttl  time.Duration
}

func NewCached(next Provider, rdb *redis.Client, ttl time.Duration) *Cached {
	return &Cached{next: next, rdb: rdb, ttl: ttl}
}

func cacheKey(symbol string) string {
	return fmt.Sprintf("quote:%s", symbol)
}

func (c *Cached) Lookup(ctx context.Context, symbol string) (*Quote, error) {
	key := cacheKey(symbol)
	if raw, err := c.rdb.Get(ctx, key).Result(); err == nil {
		var q Quote
		if err := json.Unmarshal([]byte(raw), &q); err == nil {
			return &q, nil
		}
	}

	q, err := c.next.Lookup(ctx, symbol)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(q); err == nil {
		if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			logrus.WithField("symbol", symbol).WithError(err).Warn("failed to cache quote")
		}
	}
	return q, nil
}
