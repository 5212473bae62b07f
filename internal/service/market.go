package service

import (
	"context"
	"sort"

	"github.com/kireshiki/Universalis/internal/gamedata"
	"github.com/kireshiki/Universalis/internal/model"
)

// MarketService resolves worldOrDc tokens and fans queries out across the
// member worlds of a data center, merging per-world results into one view.
type MarketService struct {
	resolver *gamedata.Resolver
	listings *ListingService
	sales    *SaleService
}

// NewMarketService creates the aggregating query service.
func NewMarketService(resolver *gamedata.Resolver, listings *ListingService, sales *SaleService) *MarketService {
	return &MarketService{
		resolver: resolver,
		listings: listings,
		sales:    sales,
	}
}

// CurrentListings resolves the token and returns the live listings for a
// world, or the merged price-ascending set for a data center with each
// listing annotated by its source world.
func (m *MarketService) CurrentListings(ctx context.Context, itemID int32, token string) (*model.CurrentlyShownView, error) {
	target, err := m.resolver.Resolve(token)
	if err != nil {
		return nil, err
	}

	if target.IsWorld() {
		listings, err := m.listings.RetrieveLive(ctx, model.WorldItemKey{WorldID: target.World.ID, ItemID: itemID})
		if err != nil {
			return nil, err
		}
		return &model.CurrentlyShownView{
			ItemID:   itemID,
			WorldID:  target.World.ID,
			Listings: m.annotateListings(listings),
		}, nil
	}

	byPair, err := m.listings.RetrieveManyLive(ctx, target.Dc.WorldIDs, []int32{itemID})
	if err != nil {
		return nil, err
	}

	var merged []model.Listing
	for _, listings := range byPair {
		merged = append(merged, listings...)
	}
	sortListings(merged)

	return &model.CurrentlyShownView{
		ItemID:   itemID,
		DcName:   target.Dc.Name,
		Listings: m.annotateListings(merged),
	}, nil
}

// History resolves the token and returns the sale history for a world, or
// the merged newest-first history for a data center.
func (m *MarketService) History(ctx context.Context, itemID int32, token string, limit int) (*model.HistoryView, error) {
	target, err := m.resolver.Resolve(token)
	if err != nil {
		return nil, err
	}

	if target.IsWorld() {
		sales, err := m.sales.Recent(ctx, target.World.ID, itemID, limit)
		if err != nil {
			return nil, err
		}
		return &model.HistoryView{
			ItemID:  itemID,
			WorldID: target.World.ID,
			Entries: m.annotateSales(sales),
		}, nil
	}

	sales, err := m.sales.RecentMany(ctx, target.Dc.WorldIDs, itemID, limit)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(sales, func(i, j int) bool {
		return sales[i].SoldAt.After(sales[j].SoldAt)
	})

	return &model.HistoryView{
		ItemID:  itemID,
		DcName:  target.Dc.Name,
		Entries: m.annotateSales(sales),
	}, nil
}

// IsMarketable reports whether queries for the item are servable at all.
func (m *MarketService) IsMarketable(itemID int32) bool {
	return m.resolver.IsMarketable(itemID)
}

func (m *MarketService) annotateListings(listings []model.Listing) []model.ListingView {
	out := make([]model.ListingView, len(listings))
	for i, l := range listings {
		name, _ := m.resolver.WorldName(l.WorldID)
		out[i] = model.ListingView{Listing: l, WorldName: name}
	}
	return out
}

func (m *MarketService) annotateSales(sales []model.Sale) []model.SaleView {
	out := make([]model.SaleView, len(sales))
	for i, s := range sales {
		name, _ := m.resolver.WorldName(s.WorldID)
		out[i] = model.SaleView{Sale: s, WorldName: name}
	}
	return out
}
