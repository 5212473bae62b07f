package repository

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const blacklistKey = "blacklist:uploaders"

// RedisBlacklistRepository keeps the flagged uploader-hash set in Redis.
// This subsystem only ever adds members; removal is an operator action.
type RedisBlacklistRepository struct {
	rdb *redis.Client
}

// NewRedisBlacklistRepository creates a new blacklist repository.
func NewRedisBlacklistRepository(rdb *redis.Client) *RedisBlacklistRepository {
	return &RedisBlacklistRepository{rdb: rdb}
}

// Has reports whether the uploader hash is flagged.
func (r *RedisBlacklistRepository) Has(ctx context.Context, uploaderHash string) (bool, error) {
	ok, err := r.rdb.SIsMember(ctx, blacklistKey, uploaderHash).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check blacklist: %w", err)
	}
	return ok, nil
}

// Add flags an uploader hash.
func (r *RedisBlacklistRepository) Add(ctx context.Context, uploaderHash string) error {
	if err := r.rdb.SAdd(ctx, blacklistKey, uploaderHash).Err(); err != nil {
		return fmt.Errorf("failed to add to blacklist: %w", err)
	}
	return nil
}

var _ BlacklistRepository = (*RedisBlacklistRepository)(nil)
