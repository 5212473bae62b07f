package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/kireshiki/Universalis/internal/cache"
	"github.com/kireshiki/Universalis/internal/metrics"
	"github.com/kireshiki/Universalis/internal/model"
	"github.com/kireshiki/Universalis/internal/repository"
)

const (
	// LocalListingTTL bounds staleness of the process-local tier. Readers
	// on other processes may observe a replaced set this late.
	LocalListingTTL = time.Minute

	// SharedListingTTL is the distributed-tier expiry.
	SharedListingTTL = 10 * time.Minute

	sharedWriteTimeout = 5 * time.Second
)

// listingKey builds the cache key shared by both tiers.
func listingKey(key model.WorldItemKey) string {
	return fmt.Sprintf("listing4:%d:%d", key.WorldID, key.ItemID)
}

// ListingService serves the freshest consistent live-listing set per
// (world, item) pair. Reads probe the local tier, then the distributed
// tier, then the database; writes replace whole sets and invalidate both
// tiers so the writing process observes its own write immediately.
type ListingService struct {
	repo   repository.ListingRepository
	local  cache.Cache
	shared cache.Cache
}

// NewListingService creates the listing store. shared may be nil when no
// distributed cache is deployed.
func NewListingService(repo repository.ListingRepository, local, shared cache.Cache) *ListingService {
	return &ListingService{
		repo:   repo,
		local:  local,
		shared: shared,
	}
}

// ReplaceLive groups the input by (world, item) and replaces each group's
// live set in its own transactional batch, stamping inserted rows with a
// common upload time taken at batch start. When a group fails, groups
// already processed stay committed with their caches invalidated; no
// compensation is attempted and the error is surfaced as-is.
func (s *ListingService) ReplaceLive(ctx context.Context, listings []model.Listing) error {
	if len(listings) == 0 {
		return nil
	}

	uploadedAt := time.Now().UTC()

	groups := make(map[model.WorldItemKey][]model.Listing)
	order := make([]model.WorldItemKey, 0, 1)
	for _, l := range listings {
		key := l.Key()
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], l)
	}

	for _, key := range order {
		if err := s.repo.ReplaceGroup(ctx, key, groups[key], uploadedAt); err != nil {
			return err
		}
		s.invalidate(ctx, key)
	}
	return nil
}

// DeleteLive removes the pair's live set and invalidates both cache tiers.
func (s *ListingService) DeleteLive(ctx context.Context, key model.WorldItemKey) error {
	if err := s.repo.DeleteGroup(ctx, key); err != nil {
		return err
	}
	s.invalidate(ctx, key)
	return nil
}

// RetrieveLive returns the pair's live listings ordered by unit price
// ascending, listing_id breaking ties. Cache failures are swallowed; only
// database errors surface.
func (s *ListingService) RetrieveLive(ctx context.Context, key model.WorldItemKey) ([]model.Listing, error) {
	cacheKey := listingKey(key)

	if value, err := s.local.Get(ctx, cacheKey); err == nil {
		if listings, err := decodeListings(value); err == nil {
			metrics.CacheHitTotal.WithLabelValues("local").Inc()
			return listings, nil
		}
	}

	if s.shared != nil {
		value, err := s.shared.Get(ctx, cacheKey)
		switch {
		case err == nil:
			listings, derr := decodeListings(value)
			if derr == nil {
				metrics.CacheHitTotal.WithLabelValues("shared").Inc()
				if lerr := s.local.Set(ctx, cacheKey, value, LocalListingTTL); lerr != nil {
					log.Printf("[ListingService] local cache set failed: %v", lerr)
				}
				return listings, nil
			}
			log.Printf("[ListingService] dropping undecodable cache value for %s: %v", cacheKey, derr)
		case errors.Is(err, cache.ErrCacheMiss):
			// fall through to the database
		default:
			metrics.CacheErrorTotal.Inc()
			log.Printf("[ListingService] shared cache get failed for %s: %v", cacheKey, err)
		}
	}

	metrics.CacheMissTotal.Inc()

	listings, err := s.repo.Retrieve(ctx, key)
	if err != nil {
		log.Printf("[ListingService] database read failed for %d/%d: %v", key.WorldID, key.ItemID, err)
		return nil, err
	}
	sortListings(listings)

	value, err := encodeListings(listings)
	if err != nil {
		log.Printf("[ListingService] cache encode failed for %s: %v", cacheKey, err)
		return listings, nil
	}
	if err := s.local.Set(ctx, cacheKey, value, LocalListingTTL); err != nil {
		log.Printf("[ListingService] local cache set failed: %v", err)
	}
	if s.shared != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), sharedWriteTimeout)
			defer cancel()
			if err := s.shared.Set(ctx, cacheKey, value, SharedListingTTL); err != nil {
				metrics.CacheErrorTotal.Inc()
				log.Printf("[ListingService] shared cache set failed for %s: %v", cacheKey, err)
			}
		}()
	}

	return listings, nil
}

// RetrieveManyLive fetches several pairs in one database round trip.
// Every requested (world, item) combination is present in the result;
// missing pairs map to empty sequences.
func (s *ListingService) RetrieveManyLive(ctx context.Context, worldIDs, itemIDs []int32) (map[model.WorldItemKey][]model.Listing, error) {
	found, err := s.repo.RetrieveMany(ctx, worldIDs, itemIDs)
	if err != nil {
		log.Printf("[ListingService] bulk database read failed: %v", err)
		return nil, err
	}

	out := make(map[model.WorldItemKey][]model.Listing, len(worldIDs)*len(itemIDs))
	for _, worldID := range worldIDs {
		for _, itemID := range itemIDs {
			key := model.WorldItemKey{WorldID: worldID, ItemID: itemID}
			listings := found[key]
			sortListings(listings)
			if listings == nil {
				listings = []model.Listing{}
			}
			out[key] = listings
		}
	}
	return out, nil
}

// invalidate removes the pair from both tiers. The shared-tier delete is
// best effort: a failure is counted and logged, never surfaced, and the
// entry still expires at its TTL.
func (s *ListingService) invalidate(ctx context.Context, key model.WorldItemKey) {
	cacheKey := listingKey(key)

	if s.shared != nil {
		if err := s.shared.Delete(ctx, cacheKey); err != nil {
			metrics.CacheErrorTotal.Inc()
			log.Printf("[ListingService] shared cache delete failed for %s: %v", cacheKey, err)
		}
	}
	if err := s.local.Delete(ctx, cacheKey); err != nil {
		log.Printf("[ListingService] local cache delete failed for %s: %v", cacheKey, err)
	}
}

// sortListings orders by unit price ascending with listing_id as the
// lexicographic tie-break, the total order all consumers rely on.
func sortListings(listings []model.Listing) {
	sort.SliceStable(listings, func(i, j int) bool {
		if listings[i].UnitPrice != listings[j].UnitPrice {
			return listings[i].UnitPrice < listings[j].UnitPrice
		}
		return listings[i].ListingID < listings[j].ListingID
	})
}
