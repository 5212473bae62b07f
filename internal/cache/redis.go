package cache

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kireshiki/Universalis/internal/metrics"
)

// DefaultProbeTimeout bounds every distributed read. A probe that does not
// answer within the bound is reported as a miss, never as an error.
const DefaultProbeTimeout = time.Second

// RedisCache is the distributed cache tier. Reads are weighted across the
// master and its read replicas: the replica client is picked with
// probability 1/(1+replicas). All writes and deletes go to the master.
type RedisCache struct {
	master       *redis.Client
	replica      *redis.Client
	replicaCount int
	probeTimeout time.Duration
}

// NewRedisCache creates the distributed tier. replica may be nil when no
// read replicas are deployed; all reads then hit the master.
func NewRedisCache(master, replica *redis.Client, replicaCount int) *RedisCache {
	if replica == nil {
		replicaCount = 0
	}
	return &RedisCache{
		master:       master,
		replica:      replica,
		replicaCount: replicaCount,
		probeTimeout: DefaultProbeTimeout,
	}
}

// pickReader selects the client for a read probe.
func (c *RedisCache) pickReader() *redis.Client {
	if c.replica == nil {
		return c.master
	}
	if rand.Float64() < 1.0/float64(1+c.replicaCount) {
		return c.replica
	}
	return c.master
}

// Get probes the distributed tier with a bounded wait. Timeouts and
// cancellations surface as ErrCacheMiss.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()

	value, err := c.pickReader().Get(ctx, key).Bytes()
	if err == nil {
		return value, nil
	}
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || ctx.Err() != nil {
		metrics.CacheTimeoutTotal.Inc()
		return nil, ErrCacheMiss
	}
	return nil, err
}

// Set stores a value on the master with the given TTL.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.master.Set(ctx, key, value, ttl).Err()
}

// Delete removes a key from the master.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.master.Del(ctx, key).Err()
}
