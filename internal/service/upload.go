package service

import (
	"context"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/kireshiki/Universalis/internal/metrics"
	"github.com/kireshiki/Universalis/internal/model"
	"github.com/kireshiki/Universalis/internal/repository"
)

var (
	// ErrForbidden is returned when the API key hashes to no known source.
	ErrForbidden = errors.New("unknown api key")

	// ErrInvalidUpload is returned for structurally invalid upload bodies.
	ErrInvalidUpload = errors.New("invalid upload")
)

// Behavior is one step of the upload pipeline. Behaviors run in
// registration order; the first failure stops the chain.
type Behavior interface {
	Name() string
	ShouldExecute(p *model.UploadParameters) bool
	Execute(ctx context.Context, source *model.TrustedSource, p *model.UploadParameters) error
}

// UploadService authenticates an upload, sanitizes it, and commits its
// side-effects through the registered behavior chain. Earlier behaviors
// are not rolled back when a later one fails.
type UploadService struct {
	sources   repository.TrustedSourceRepository
	blacklist repository.BlacklistRepository
	behaviors []Behavior
}

// NewUploadService creates the pipeline with the given behavior order.
func NewUploadService(sources repository.TrustedSourceRepository, blacklist repository.BlacklistRepository, behaviors ...Behavior) *UploadService {
	return &UploadService{
		sources:   sources,
		blacklist: blacklist,
		behaviors: behaviors,
	}
}

// Authenticate resolves the plaintext API key to a trusted source.
func (s *UploadService) Authenticate(ctx context.Context, apiKey string) (*model.TrustedSource, error) {
	sum := sha512.Sum512([]byte(apiKey))
	source, err := s.sources.GetByKeyHash(ctx, hex.EncodeToString(sum[:]))
	if err != nil {
		return nil, err
	}
	if source == nil {
		return nil, ErrForbidden
	}
	return source, nil
}

// Process runs one authenticated upload through validation, the blacklist
// gate, and the behavior chain. A blacklisted uploader hash suppresses all
// side-effects while the caller still reports success.
func (s *UploadService) Process(ctx context.Context, source *model.TrustedSource, p *model.UploadParameters) error {
	if err := validateUpload(p); err != nil {
		metrics.UploadTotal.WithLabelValues("invalid").Inc()
		return err
	}

	uploaderHash := hashUploader(p.UploaderID)

	flagged, err := s.blacklist.Has(ctx, uploaderHash)
	if err != nil {
		return fmt.Errorf("blacklist check failed: %w", err)
	}
	if flagged {
		metrics.UploadTotal.WithLabelValues("blacklisted").Inc()
		return nil
	}

	for _, b := range s.behaviors {
		if !b.ShouldExecute(p) {
			continue
		}
		if err := b.Execute(ctx, source, p); err != nil {
			metrics.UploadTotal.WithLabelValues("failed").Inc()
			log.Printf("[UploadService] behavior %s failed for source %s: %v", b.Name(), source.Name, err)
			return err
		}
	}

	metrics.UploadTotal.WithLabelValues("ok").Inc()
	return nil
}

// hashUploader produces the opaque blacklisting identity.
func hashUploader(uploaderID string) string {
	sum := sha256.Sum256([]byte(uploaderID))
	return hex.EncodeToString(sum[:])
}

func validateUpload(p *model.UploadParameters) error {
	if p.UploaderID == "" {
		return fmt.Errorf("%w: uploader_id is required", ErrInvalidUpload)
	}
	if p.Listings != nil {
		if p.WorldID == nil || p.ItemID == nil {
			return fmt.Errorf("%w: listings require world_id and item_id", ErrInvalidUpload)
		}
		for _, l := range p.Listings {
			if l.ListingID == "" {
				return fmt.Errorf("%w: listing without listing_id", ErrInvalidUpload)
			}
			if l.PricePerUnit < 1 {
				return fmt.Errorf("%w: listing %s has price %d", ErrInvalidUpload, l.ListingID, l.PricePerUnit)
			}
			if l.Quantity < 1 {
				return fmt.Errorf("%w: listing %s has quantity %d", ErrInvalidUpload, l.ListingID, l.Quantity)
			}
		}
	}
	if p.Entries != nil {
		if p.WorldID == nil || p.ItemID == nil {
			return fmt.Errorf("%w: entries require world_id and item_id", ErrInvalidUpload)
		}
		for _, e := range p.Entries {
			if e.PricePerUnit < 1 || e.Quantity < 1 {
				return fmt.Errorf("%w: sale entry with price %d, quantity %d", ErrInvalidUpload, e.PricePerUnit, e.Quantity)
			}
		}
	}
	if p.TaxRates != nil && p.WorldID == nil {
		return fmt.Errorf("%w: tax_rates require world_id", ErrInvalidUpload)
	}
	return nil
}

// ListingsBehavior replaces the live listing set for the uploaded pair.
// An upload carrying an empty listings array clears the pair.
type ListingsBehavior struct {
	listings *ListingService
}

// NewListingsBehavior creates the live-listing replacement step.
func NewListingsBehavior(listings *ListingService) *ListingsBehavior {
	return &ListingsBehavior{listings: listings}
}

func (b *ListingsBehavior) Name() string { return "listings" }

func (b *ListingsBehavior) ShouldExecute(p *model.UploadParameters) bool {
	return p.Listings != nil && p.WorldID != nil && p.ItemID != nil
}

func (b *ListingsBehavior) Execute(ctx context.Context, source *model.TrustedSource, p *model.UploadParameters) error {
	key := model.WorldItemKey{WorldID: *p.WorldID, ItemID: *p.ItemID}
	if len(p.Listings) == 0 {
		return b.listings.DeleteLive(ctx, key)
	}

	listings := make([]model.Listing, len(p.Listings))
	for i, u := range p.Listings {
		listings[i] = model.Listing{
			ListingID:      u.ListingID,
			WorldID:        key.WorldID,
			ItemID:         key.ItemID,
			HQ:             u.HQ,
			OnMannequin:    u.OnMannequin,
			Materia:        u.Materia,
			UnitPrice:      u.PricePerUnit,
			Quantity:       u.Quantity,
			DyeID:          u.DyeID,
			CreatorID:      u.CreatorID,
			CreatorName:    u.CreatorName,
			LastReviewTime: time.Unix(u.LastReviewTime, 0).UTC(),
			RetainerID:     u.RetainerID,
			RetainerName:   u.RetainerName,
			RetainerCityID: u.RetainerCityID,
			SellerID:       u.SellerID,
			Source:         source.Name,
		}
	}
	return b.listings.ReplaceLive(ctx, listings)
}

// SalesBehavior appends uploaded sale entries to the history.
type SalesBehavior struct {
	sales *SaleService
}

// NewSalesBehavior creates the sale-history step.
func NewSalesBehavior(sales *SaleService) *SalesBehavior {
	return &SalesBehavior{sales: sales}
}

func (b *SalesBehavior) Name() string { return "sales" }

func (b *SalesBehavior) ShouldExecute(p *model.UploadParameters) bool {
	return p.Entries != nil && p.WorldID != nil && p.ItemID != nil
}

func (b *SalesBehavior) Execute(ctx context.Context, source *model.TrustedSource, p *model.UploadParameters) error {
	sales := make([]model.Sale, len(p.Entries))
	for i, e := range p.Entries {
		sales[i] = model.Sale{
			WorldID:   *p.WorldID,
			ItemID:    *p.ItemID,
			HQ:        e.HQ,
			UnitPrice: e.PricePerUnit,
			Quantity:  e.Quantity,
			BuyerName: e.BuyerName,
			SoldAt:    time.Unix(e.Timestamp, 0).UTC(),
		}
	}
	return b.sales.Append(ctx, *p.WorldID, *p.ItemID, sales)
}

// TaxRatesBehavior merges uploaded tax rates with the stored ones. An
// uploaded city wins; a city the client did not observe keeps its stored
// value, or zero when nothing was ever stored.
type TaxRatesBehavior struct {
	taxes repository.TaxRatesRepository
}

// NewTaxRatesBehavior creates the tax-rate merge step.
func NewTaxRatesBehavior(taxes repository.TaxRatesRepository) *TaxRatesBehavior {
	return &TaxRatesBehavior{taxes: taxes}
}

func (b *TaxRatesBehavior) Name() string { return "tax-rates" }

func (b *TaxRatesBehavior) ShouldExecute(p *model.UploadParameters) bool {
	return p.TaxRates != nil && p.WorldID != nil
}

func (b *TaxRatesBehavior) Execute(ctx context.Context, source *model.TrustedSource, p *model.UploadParameters) error {
	existing, err := b.taxes.Retrieve(ctx, *p.WorldID)
	if err != nil {
		return err
	}
	if existing == nil {
		existing = &model.TaxRates{}
	}

	merged := model.TaxRates{
		LimsaLominsa: mergeRate(p.TaxRates.LimsaLominsa, existing.LimsaLominsa),
		Gridania:     mergeRate(p.TaxRates.Gridania, existing.Gridania),
		Uldah:        mergeRate(p.TaxRates.Uldah, existing.Uldah),
		Ishgard:      mergeRate(p.TaxRates.Ishgard, existing.Ishgard),
		Kugane:       mergeRate(p.TaxRates.Kugane, existing.Kugane),
		Crystarium:   mergeRate(p.TaxRates.Crystarium, existing.Crystarium),
		OldSharlayan: mergeRate(p.TaxRates.OldSharlayan, existing.OldSharlayan),
		Tuliyollal:   mergeRate(p.TaxRates.Tuliyollal, existing.Tuliyollal),
		Source:       source.Name,
	}
	return b.taxes.Update(ctx, *p.WorldID, merged)
}

func mergeRate(uploaded *int32, existing int32) int32 {
	if uploaded != nil {
		return *uploaded
	}
	return existing
}

// TrustedSourceIncrementBehavior counts the upload against its source.
type TrustedSourceIncrementBehavior struct {
	sources repository.TrustedSourceRepository
}

// NewTrustedSourceIncrementBehavior creates the per-source counting step.
func NewTrustedSourceIncrementBehavior(sources repository.TrustedSourceRepository) *TrustedSourceIncrementBehavior {
	return &TrustedSourceIncrementBehavior{sources: sources}
}

func (b *TrustedSourceIncrementBehavior) Name() string { return "source-increment" }

func (b *TrustedSourceIncrementBehavior) ShouldExecute(p *model.UploadParameters) bool { return true }

func (b *TrustedSourceIncrementBehavior) Execute(ctx context.Context, source *model.TrustedSource, p *model.UploadParameters) error {
	return b.sources.IncrementUploadCount(ctx, source.APIKeyHash)
}

// DailyUploadIncrementBehavior counts the upload in the rolling window.
type DailyUploadIncrementBehavior struct {
	counts repository.UploadCountRepository
}

// NewDailyUploadIncrementBehavior creates the daily counting step.
func NewDailyUploadIncrementBehavior(counts repository.UploadCountRepository) *DailyUploadIncrementBehavior {
	return &DailyUploadIncrementBehavior{counts: counts}
}

func (b *DailyUploadIncrementBehavior) Name() string { return "daily-increment" }

func (b *DailyUploadIncrementBehavior) ShouldExecute(p *model.UploadParameters) bool { return true }

func (b *DailyUploadIncrementBehavior) Execute(ctx context.Context, source *model.TrustedSource, p *model.UploadParameters) error {
	return b.counts.Increment(ctx, time.Now())
}
