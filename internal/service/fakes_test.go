package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/kireshiki/Universalis/internal/model"
	"github.com/kireshiki/Universalis/internal/repository"
)

// fakeListingRepo mirrors the relational replace semantics in memory:
// replacing a pair drops rows absent from the incoming set while rows
// whose listing_id survives keep their original attributes.
type fakeListingRepo struct {
	mu    sync.Mutex
	rows  map[model.WorldItemKey]map[string]model.Listing
	err   error
	reads int
}

func newFakeListingRepo() *fakeListingRepo {
	return &fakeListingRepo{rows: make(map[model.WorldItemKey]map[string]model.Listing)}
}

func (f *fakeListingRepo) ReplaceGroup(ctx context.Context, key model.WorldItemKey, listings []model.Listing, uploadedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}

	existing := f.rows[key]
	next := make(map[string]model.Listing, len(listings))
	for _, l := range listings {
		if kept, ok := existing[l.ListingID]; ok {
			next[l.ListingID] = kept
			continue
		}
		l.UploadedAt = uploadedAt
		next[l.ListingID] = l
	}
	f.rows[key] = next
	return nil
}

func (f *fakeListingRepo) DeleteGroup(ctx context.Context, key model.WorldItemKey) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	delete(f.rows, key)
	return nil
}

func (f *fakeListingRepo) Retrieve(ctx context.Context, key model.WorldItemKey) ([]model.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.reads++

	var out []model.Listing
	for _, l := range f.rows[key] {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UnitPrice != out[j].UnitPrice {
			return out[i].UnitPrice < out[j].UnitPrice
		}
		return out[i].ListingID < out[j].ListingID
	})
	return out, nil
}

func (f *fakeListingRepo) RetrieveMany(ctx context.Context, worldIDs, itemIDs []int32) (map[model.WorldItemKey][]model.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}

	out := make(map[model.WorldItemKey][]model.Listing)
	for _, w := range worldIDs {
		for _, i := range itemIDs {
			key := model.WorldItemKey{WorldID: w, ItemID: i}
			for _, l := range f.rows[key] {
				out[key] = append(out[key], l)
			}
		}
	}
	return out, nil
}

// setDirect plants a row bypassing replace semantics, for staleness tests.
func (f *fakeListingRepo) setDirect(key model.WorldItemKey, listings ...model.Listing) {
	f.mu.Lock()
	defer f.mu.Unlock()
	next := make(map[string]model.Listing, len(listings))
	for _, l := range listings {
		next[l.ListingID] = l
	}
	f.rows[key] = next
}

var _ repository.ListingRepository = (*fakeListingRepo)(nil)

type fakeSaleRepo struct {
	mu   sync.Mutex
	rows []model.Sale
	err  error
}

func (f *fakeSaleRepo) Append(ctx context.Context, worldID, itemID int32, sales []model.Sale) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for _, s := range sales {
		dup := false
		for _, have := range f.rows {
			if have == s {
				dup = true
				break
			}
		}
		if !dup {
			f.rows = append(f.rows, s)
		}
	}
	return nil
}

func (f *fakeSaleRepo) Recent(ctx context.Context, worldID, itemID int32, limit int) ([]model.Sale, error) {
	return f.RecentMany(ctx, []int32{worldID}, itemID, limit)
}

func (f *fakeSaleRepo) RecentMany(ctx context.Context, worldIDs []int32, itemID int32, limit int) ([]model.Sale, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}

	var out []model.Sale
	for _, s := range f.rows {
		if s.ItemID != itemID {
			continue
		}
		for _, w := range worldIDs {
			if s.WorldID == w {
				out = append(out, s)
				break
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SoldAt.After(out[j].SoldAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var _ repository.SaleRepository = (*fakeSaleRepo)(nil)

type fakeSourceRepo struct {
	mu      sync.Mutex
	sources map[string]*model.TrustedSource
}

func newFakeSourceRepo(sources ...*model.TrustedSource) *fakeSourceRepo {
	f := &fakeSourceRepo{sources: make(map[string]*model.TrustedSource)}
	for _, s := range sources {
		f.sources[s.APIKeyHash] = s
	}
	return f
}

func (f *fakeSourceRepo) GetByKeyHash(ctx context.Context, keyHash string) (*model.TrustedSource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	src, ok := f.sources[keyHash]
	if !ok {
		return nil, nil
	}
	copied := *src
	return &copied, nil
}

func (f *fakeSourceRepo) IncrementUploadCount(ctx context.Context, keyHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if src, ok := f.sources[keyHash]; ok {
		src.UploadCount++
	}
	return nil
}

var _ repository.TrustedSourceRepository = (*fakeSourceRepo)(nil)

type fakeBlacklist struct {
	hashes map[string]bool
}

func (f *fakeBlacklist) Has(ctx context.Context, hash string) (bool, error) {
	return f.hashes[hash], nil
}

func (f *fakeBlacklist) Add(ctx context.Context, hash string) error {
	f.hashes[hash] = true
	return nil
}

var _ repository.BlacklistRepository = (*fakeBlacklist)(nil)

type fakeTaxRepo struct {
	rates map[int32]model.TaxRates
}

func (f *fakeTaxRepo) Update(ctx context.Context, worldID int32, rates model.TaxRates) error {
	f.rates[worldID] = rates
	return nil
}

func (f *fakeTaxRepo) Retrieve(ctx context.Context, worldID int32) (*model.TaxRates, error) {
	if rates, ok := f.rates[worldID]; ok {
		return &rates, nil
	}
	return nil, nil
}

var _ repository.TaxRatesRepository = (*fakeTaxRepo)(nil)

type fakeCountRepo struct {
	increments int
}

func (f *fakeCountRepo) Increment(ctx context.Context, now time.Time) error {
	f.increments++
	return nil
}

func (f *fakeCountRepo) Get(ctx context.Context) (model.UploadCountHistory, error) {
	return model.UploadCountHistory{Counts: []int64{int64(f.increments)}}, nil
}

var _ repository.UploadCountRepository = (*fakeCountRepo)(nil)
