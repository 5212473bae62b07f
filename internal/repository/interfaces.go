package repository

import (
	"context"
	"time"

	"github.com/kireshiki/Universalis/internal/model"
)

// ListingRepository is the relational backing of the live listing store.
type ListingRepository interface {
	// ReplaceGroup atomically deletes the live set for one (world, item)
	// pair and inserts the replacement rows, stamping each with uploadedAt.
	// A listing_id that already exists retains its original row.
	ReplaceGroup(ctx context.Context, key model.WorldItemKey, listings []model.Listing, uploadedAt time.Time) error

	// DeleteGroup removes every listing for one (world, item) pair.
	DeleteGroup(ctx context.Context, key model.WorldItemKey) error

	// Retrieve returns the live listings for one pair ordered by unit
	// price ascending, listing_id breaking ties.
	Retrieve(ctx context.Context, key model.WorldItemKey) ([]model.Listing, error)

	// RetrieveMany fetches several pairs in one round trip. Missing pairs
	// are absent from the result map.
	RetrieveMany(ctx context.Context, worldIDs, itemIDs []int32) (map[model.WorldItemKey][]model.Listing, error)
}

// SaleRepository is the append-only sale history store.
type SaleRepository interface {
	// Append inserts each sale once; duplicate rows are ignored.
	Append(ctx context.Context, worldID, itemID int32, sales []model.Sale) error

	// Recent returns up to limit sales for the pair, newest first.
	Recent(ctx context.Context, worldID, itemID int32, limit int) ([]model.Sale, error)

	// RecentMany fetches recent sales for several worlds in one round trip.
	RecentMany(ctx context.Context, worldIDs []int32, itemID int32, limit int) ([]model.Sale, error)
}

// TrustedSourceRepository maps API-key hashes to uploader applications.
type TrustedSourceRepository interface {
	// GetByKeyHash looks a source up by the SHA-512 hash of its API key.
	// Returns nil when the hash is unknown.
	GetByKeyHash(ctx context.Context, keyHash string) (*model.TrustedSource, error)

	// IncrementUploadCount atomically adds one to the source's counter.
	IncrementUploadCount(ctx context.Context, keyHash string) error
}

// BlacklistRepository is the set of flagged uploader hashes.
type BlacklistRepository interface {
	Has(ctx context.Context, uploaderHash string) (bool, error)
	Add(ctx context.Context, uploaderHash string) error
}

// TaxRatesRepository stores the per-world market tax hash.
type TaxRatesRepository interface {
	// Update writes all fields for the world.
	Update(ctx context.Context, worldID int32, rates model.TaxRates) error

	// Retrieve assembles the stored rates; nil when the world is unknown.
	Retrieve(ctx context.Context, worldID int32) (*model.TaxRates, error)
}

// UploadCountRepository owns the singleton rolling daily upload counter.
type UploadCountRepository interface {
	// Increment applies the day-rollover rule and adds one to today.
	Increment(ctx context.Context, now time.Time) error

	// Get returns the record verbatim; an empty record when never pushed.
	Get(ctx context.Context) (model.UploadCountHistory, error)
}
