package repository

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/kireshiki/Universalis/internal/model"
)

// taxKey builds the per-world tax hash key.
func taxKey(worldID int32) string {
	return fmt.Sprintf("tax:%d", worldID)
}

var taxFields = []string{
	"limsa", "gridania", "uldah", "ishgard",
	"kugane", "crystarium", "old_sharlayan", "tuliyollal",
}

// RedisTaxRatesRepository keeps one tax-rate hash per world in Redis.
type RedisTaxRatesRepository struct {
	rdb *redis.Client
}

// NewRedisTaxRatesRepository creates a new tax-rate repository.
func NewRedisTaxRatesRepository(rdb *redis.Client) *RedisTaxRatesRepository {
	return &RedisTaxRatesRepository{rdb: rdb}
}

// Update writes all city fields plus the uploader name for the world.
func (r *RedisTaxRatesRepository) Update(ctx context.Context, worldID int32, rates model.TaxRates) error {
	err := r.rdb.HSet(ctx, taxKey(worldID),
		"limsa", rates.LimsaLominsa,
		"gridania", rates.Gridania,
		"uldah", rates.Uldah,
		"ishgard", rates.Ishgard,
		"kugane", rates.Kugane,
		"crystarium", rates.Crystarium,
		"old_sharlayan", rates.OldSharlayan,
		"tuliyollal", rates.Tuliyollal,
		"source", rates.Source,
	).Err()
	if err != nil {
		return fmt.Errorf("failed to update tax rates for world %d: %w", worldID, err)
	}
	return nil
}

// Retrieve reads all fields in one pipeline and assembles the record.
// Returns nil when the world has never reported rates.
func (r *RedisTaxRatesRepository) Retrieve(ctx context.Context, worldID int32) (*model.TaxRates, error) {
	key := taxKey(worldID)

	pipe := r.rdb.Pipeline()
	cityCmds := make([]*redis.StringCmd, len(taxFields))
	for i, field := range taxFields {
		cityCmds[i] = pipe.HGet(ctx, key, field)
	}
	sourceCmd := pipe.HGet(ctx, key, "source")

	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to retrieve tax rates for world %d: %w", worldID, err)
	}

	cities := make([]int32, len(taxFields))
	present := false
	for i, cmd := range cityCmds {
		raw, err := cmd.Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read tax field %s: %w", taxFields[i], err)
		}
		n, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("malformed tax field %s: %w", taxFields[i], err)
		}
		cities[i] = int32(n)
		present = true
	}
	if !present {
		return nil, nil
	}

	rates := &model.TaxRates{
		LimsaLominsa: cities[0],
		Gridania:     cities[1],
		Uldah:        cities[2],
		Ishgard:      cities[3],
		Kugane:       cities[4],
		Crystarium:   cities[5],
		OldSharlayan: cities[6],
		Tuliyollal:   cities[7],
	}
	if source, err := sourceCmd.Result(); err == nil {
		rates.Source = source
	}
	return rates, nil
}

var _ TaxRatesRepository = (*RedisTaxRatesRepository)(nil)
