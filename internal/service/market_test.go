package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kireshiki/Universalis/internal/gamedata"
	"github.com/kireshiki/Universalis/internal/model"
)

type catalogStub struct{}

func (catalogStub) Worlds() ([]gamedata.WorldRow, error) {
	return []gamedata.WorldRow{
		{ID: 23, Name: "Asura", DataCenterID: 1, IsPublic: true},
		{ID: 24, Name: "Belias", DataCenterID: 1, IsPublic: true},
		{ID: 34, Name: "Brynhildr", DataCenterID: 2, IsPublic: true},
	}, nil
}

func (catalogStub) DataCenters() ([]gamedata.DataCenterRow, error) {
	return []gamedata.DataCenterRow{
		{ID: 1, Name: "Aether", Region: 2},
		{ID: 2, Name: "Crystal", Region: 2},
	}, nil
}

func (catalogStub) Items() ([]gamedata.ItemRow, error) {
	return []gamedata.ItemRow{{ID: 5057, StackSize: 999, SearchCategory: 58}}, nil
}

func newMarketFixture(t *testing.T) (*MarketService, *fakeListingRepo, *fakeSaleRepo) {
	t.Helper()

	resolver, err := gamedata.NewResolver(catalogStub{})
	if err != nil {
		t.Fatalf("resolver: %v", err)
	}

	listingRepo := newFakeListingRepo()
	saleRepo := &fakeSaleRepo{}
	svc := NewMarketService(resolver,
		newTestListingService(t, listingRepo),
		NewSaleService(saleRepo))
	return svc, listingRepo, saleRepo
}

func TestCurrentListingsSingleWorld(t *testing.T) {
	svc, listingRepo, _ := newMarketFixture(t)

	listingRepo.setDirect(model.WorldItemKey{WorldID: 23, ItemID: 5057},
		listing("A", 23, 5057, 100))

	view, err := svc.CurrentListings(context.Background(), 5057, "Asura")
	if err != nil {
		t.Fatalf("current listings: %v", err)
	}
	if view.WorldID != 23 || view.DcName != "" {
		t.Fatalf("view scope = %+v, want world 23", view)
	}
	if len(view.Listings) != 1 || view.Listings[0].WorldName != "Asura" {
		t.Fatalf("listings = %+v", view.Listings)
	}
}

func TestCurrentListingsDataCenterMerge(t *testing.T) {
	svc, listingRepo, _ := newMarketFixture(t)

	listingRepo.setDirect(model.WorldItemKey{WorldID: 23, ItemID: 5057},
		listing("A", 23, 5057, 80))
	listingRepo.setDirect(model.WorldItemKey{WorldID: 24, ItemID: 5057},
		listing("B", 24, 5057, 60))

	view, err := svc.CurrentListings(context.Background(), 5057, "Aether")
	if err != nil {
		t.Fatalf("current listings: %v", err)
	}
	if view.DcName != "Aether" {
		t.Fatalf("view scope = %+v, want DC Aether", view)
	}
	if len(view.Listings) != 2 {
		t.Fatalf("merged %d listings, want 2", len(view.Listings))
	}
	if view.Listings[0].WorldID != 24 || view.Listings[0].UnitPrice != 60 {
		t.Fatalf("first merged listing = %+v, want world 24 at 60", view.Listings[0])
	}
	if view.Listings[1].WorldID != 23 || view.Listings[1].UnitPrice != 80 {
		t.Fatalf("second merged listing = %+v, want world 23 at 80", view.Listings[1])
	}
	if view.Listings[0].WorldName != "Belias" || view.Listings[1].WorldName != "Asura" {
		t.Fatalf("world annotations = %q, %q", view.Listings[0].WorldName, view.Listings[1].WorldName)
	}
}

func TestHistoryDataCenterMerge(t *testing.T) {
	svc, _, saleRepo := newMarketFixture(t)
	base := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)

	saleRepo.rows = []model.Sale{
		{WorldID: 23, ItemID: 5057, UnitPrice: 90, Quantity: 1, SoldAt: base},
		{WorldID: 24, ItemID: 5057, UnitPrice: 85, Quantity: 1, SoldAt: base.Add(time.Hour)},
		{WorldID: 34, ItemID: 5057, UnitPrice: 85, Quantity: 1, SoldAt: base.Add(2 * time.Hour)},
	}

	view, err := svc.History(context.Background(), 5057, "aether", 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(view.Entries) != 2 {
		t.Fatalf("merged %d sales, want 2 (world 34 is outside the DC)", len(view.Entries))
	}
	if view.Entries[0].WorldID != 24 || view.Entries[1].WorldID != 23 {
		t.Fatalf("history not newest-first: %+v", view.Entries)
	}
}

func TestMarketUnknownToken(t *testing.T) {
	svc, _, _ := newMarketFixture(t)

	if _, err := svc.CurrentListings(context.Background(), 5057, "Atlantis"); !errors.Is(err, gamedata.ErrUnknownWorldOrDc) {
		t.Fatalf("expected ErrUnknownWorldOrDc, got %v", err)
	}
	if _, err := svc.History(context.Background(), 5057, "", 10); !errors.Is(err, gamedata.ErrUnknownWorldOrDc) {
		t.Fatalf("expected ErrUnknownWorldOrDc, got %v", err)
	}
}
