package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kireshiki/Universalis/internal/model"
)

const (
	uploadCountLastPushKey = "stats:upload-count:last-push"
	uploadCountListKey     = "stats:upload-count:counts"

	dayMillis = 86_400_000
)

// The rollover-and-increment must be atomic under concurrent uploads, so
// both steps run in a single Lua script.
var uploadCountScript = redis.NewScript(`
local last = tonumber(redis.call("GET", KEYS[1]) or "0")
local now = tonumber(ARGV[1])
local day = tonumber(ARGV[2])
local keep = tonumber(ARGV[3])

if now - last > day then
  redis.call("LPUSH", KEYS[2], 0)
  redis.call("LTRIM", KEYS[2], 0, keep - 1)
  redis.call("SET", KEYS[1], now)
end

if redis.call("LLEN", KEYS[2]) == 0 then
  redis.call("LPUSH", KEYS[2], 0)
end

local head = tonumber(redis.call("LINDEX", KEYS[2], 0)) + 1
redis.call("LSET", KEYS[2], 0, head)
return head
`)

// RedisUploadCountRepository keeps the singleton rolling 30-day upload
// counter in Redis.
type RedisUploadCountRepository struct {
	rdb *redis.Client
}

// NewRedisUploadCountRepository creates a new upload-count repository.
func NewRedisUploadCountRepository(rdb *redis.Client) *RedisUploadCountRepository {
	return &RedisUploadCountRepository{rdb: rdb}
}

// Increment rolls the window over when more than a day has passed since
// the last push, then adds one to today's counter.
func (r *RedisUploadCountRepository) Increment(ctx context.Context, now time.Time) error {
	err := uploadCountScript.Run(ctx, r.rdb,
		[]string{uploadCountLastPushKey, uploadCountListKey},
		now.UnixMilli(), dayMillis, model.UploadCountDays,
	).Err()
	if err != nil {
		return fmt.Errorf("failed to increment upload count: %w", err)
	}
	return nil
}

// Get returns the history record verbatim.
func (r *RedisUploadCountRepository) Get(ctx context.Context) (model.UploadCountHistory, error) {
	var out model.UploadCountHistory

	raw, err := r.rdb.Get(ctx, uploadCountLastPushKey).Result()
	if err != nil && err != redis.Nil {
		return out, fmt.Errorf("failed to read upload count: %w", err)
	}
	if err == nil {
		out.LastPush, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return out, fmt.Errorf("malformed upload count timestamp: %w", err)
		}
	}

	counts, err := r.rdb.LRange(ctx, uploadCountListKey, 0, model.UploadCountDays-1).Result()
	if err != nil {
		return out, fmt.Errorf("failed to read upload counts: %w", err)
	}
	for _, c := range counts {
		n, err := strconv.ParseInt(c, 10, 64)
		if err != nil {
			return out, fmt.Errorf("malformed upload counter: %w", err)
		}
		out.Counts = append(out.Counts, n)
	}

	return out, nil
}

var _ UploadCountRepository = (*RedisUploadCountRepository)(nil)
