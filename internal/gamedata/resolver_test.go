package gamedata

import (
	"errors"
	"strconv"
	"testing"
)

type fakeReader struct {
	worlds      []WorldRow
	dataCenters []DataCenterRow
	items       []ItemRow
}

func (f *fakeReader) Worlds() ([]WorldRow, error)           { return f.worlds, nil }
func (f *fakeReader) DataCenters() ([]DataCenterRow, error) { return f.dataCenters, nil }
func (f *fakeReader) Items() ([]ItemRow, error)             { return f.items, nil }

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()

	reader := &fakeReader{
		worlds: []WorldRow{
			{ID: 23, Name: "Asura", DataCenterID: 1, IsPublic: true},
			{ID: 24, Name: "Belias", DataCenterID: 1, IsPublic: true},
			{ID: 34, Name: "Brynhildr", DataCenterID: 2, IsPublic: true},
			{ID: 25, Name: "Chaos", DataCenterID: 1, IsPublic: true},
			{ID: 50, Name: "Hidden", DataCenterID: 1, IsPublic: false},
			{ID: 408, Name: "Ravana", DataCenterID: 3, IsPublic: false},
			{ID: 77, Name: "Orphan", DataCenterID: 0, IsPublic: true},
		},
		dataCenters: []DataCenterRow{
			{ID: 1, Name: "Aether", Region: 2},
			{ID: 2, Name: "Crystal", Region: 2},
			{ID: 3, Name: "Materia", Region: 4},
			{ID: 4, Name: "Empty", Region: 3},
			{ID: 0, Name: "Bogus", Region: 2},
			{ID: 99, Name: "Internal", Region: 2},
		},
		items: []ItemRow{
			{ID: 5057, StackSize: 999, SearchCategory: 58},
			{ID: 1, StackSize: 1, SearchCategory: 0},
		},
	}

	r, err := NewResolver(reader)
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	return r
}

func TestResolverLoadingRules(t *testing.T) {
	r := newTestResolver(t)

	byID := r.WorldsByID()
	if _, ok := byID[25]; ok {
		t.Fatalf("world 25 must be excluded")
	}
	if _, ok := byID[50]; ok {
		t.Fatalf("non-public world 50 must be excluded")
	}
	if _, ok := byID[77]; ok {
		t.Fatalf("world without data center must be excluded")
	}
	if name := byID[408]; name != "Ravana" {
		t.Fatalf("force-included world 408 missing, got %q", name)
	}

	seen := map[string][]int32{}
	for _, dc := range r.DataCenters() {
		seen[dc.Name] = dc.WorldIDs
	}
	if _, ok := seen["Empty"]; ok {
		t.Fatalf("data center without worlds must be excluded")
	}
	if _, ok := seen["Internal"]; ok {
		t.Fatalf("data center with row id 99 must be excluded")
	}
	if got := seen["Aether"]; len(got) != 2 || got[0] != 23 || got[1] != 24 {
		t.Fatalf("Aether worlds = %v, want [23 24]", got)
	}
	if _, ok := seen["陆行鸟"]; !ok {
		t.Fatalf("static Chinese catalog missing")
	}
	if _, ok := seen["한국"]; !ok {
		t.Fatalf("static Korean catalog missing")
	}
}

func TestResolveRoundTrip(t *testing.T) {
	r := newTestResolver(t)

	for id, name := range map[int32]string{23: "Asura", 24: "Belias", 408: "Ravana"} {
		got, err := r.Resolve(name)
		if err != nil {
			t.Fatalf("Resolve(%q): %v", name, err)
		}
		if !got.IsWorld() || got.World.ID != id {
			t.Fatalf("Resolve(%q) = %+v, want world %d", name, got, id)
		}

		numeric := strconv.Itoa(int(id))
		got, err = r.Resolve(numeric)
		if err != nil || !got.IsWorld() || got.World.ID != id {
			t.Fatalf("Resolve(%q) = %+v, %v", numeric, got, err)
		}
	}
}

func TestResolveNormalizesNames(t *testing.T) {
	r := newTestResolver(t)

	for _, token := range []string{"asura", "ASURA", "aSuRa"} {
		got, err := r.Resolve(token)
		if err != nil {
			t.Fatalf("Resolve(%q): %v", token, err)
		}
		if !got.IsWorld() || got.World.Name != "Asura" {
			t.Fatalf("Resolve(%q) = %+v, want Asura", token, got)
		}
	}
}

func TestResolveDataCenter(t *testing.T) {
	r := newTestResolver(t)

	got, err := r.Resolve("aether")
	if err != nil {
		t.Fatalf("Resolve(aether): %v", err)
	}
	if got.IsWorld() || got.Dc.Name != "Aether" {
		t.Fatalf("Resolve(aether) = %+v, want DC Aether", got)
	}
	if ids := got.WorldIDs(); len(ids) != 2 {
		t.Fatalf("Aether WorldIDs = %v", ids)
	}
}

func TestResolveUnknown(t *testing.T) {
	r := newTestResolver(t)

	for _, token := range []string{"", "Atlantis", "9999", "25", "Chaos25"} {
		if _, err := r.Resolve(token); !errors.Is(err, ErrUnknownWorldOrDc) {
			t.Fatalf("Resolve(%q) err = %v, want ErrUnknownWorldOrDc", token, err)
		}
	}
}

func TestMarketableItems(t *testing.T) {
	r := newTestResolver(t)

	if !r.IsMarketable(5057) {
		t.Fatalf("item 5057 should be marketable")
	}
	if r.IsMarketable(1) {
		t.Fatalf("item 1 has no search category, not marketable")
	}
	if size, ok := r.StackSize(5057); !ok || size != 999 {
		t.Fatalf("StackSize(5057) = %d, %v", size, ok)
	}
	if items := r.MarketableItems(); len(items) != 1 || items[0] != 5057 {
		t.Fatalf("MarketableItems = %v", items)
	}
}
