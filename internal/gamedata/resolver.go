package gamedata

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/kireshiki/Universalis/internal/model"
)

// ErrUnknownWorldOrDc is returned when a token matches neither a world id,
// a world name, nor a data-center name.
var ErrUnknownWorldOrDc = errors.New("unknown world or data center")

// Worlds documented public but not flagged as such in the game data.
var forceIncludedWorlds = map[int32]bool{408: true, 409: true, 410: true, 411: true}

// World 25 carries the name "Chaos", which collides with the data center.
const excludedWorldID = 25

// Resolver is the immutable catalog of worlds, data centers and regions.
// It is built once at startup; all accessors are safe for concurrent use
// without locking.
type Resolver struct {
	worldsByID    map[int32]string
	worldsByName  map[string]int32
	worldIDs      []int32
	dataCenters   []model.DataCenter
	regions       []model.Region
	stackSizes    map[int32]int32
	marketableIDs []int32
}

// NewResolver builds the catalog from the game-data reader plus the static
// catalogs for regions absent from the export.
func NewResolver(reader SheetReader) (*Resolver, error) {
	worldRows, err := reader.Worlds()
	if err != nil {
		return nil, fmt.Errorf("failed to load worlds: %w", err)
	}
	dcRows, err := reader.DataCenters()
	if err != nil {
		return nil, fmt.Errorf("failed to load data centers: %w", err)
	}
	itemRows, err := reader.Items()
	if err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}

	r := &Resolver{
		worldsByID:   make(map[int32]string),
		worldsByName: make(map[string]int32),
		stackSizes:   make(map[int32]int32),
		regions:      append([]model.Region(nil), staticRegions...),
	}

	dcWorlds := make(map[int32][]int32)
	for _, w := range worldRows {
		if w.ID == excludedWorldID {
			continue
		}
		if !(w.DataCenterID > 0 && w.IsPublic) && !forceIncludedWorlds[w.ID] {
			continue
		}
		r.addWorld(w.ID, w.Name)
		dcWorlds[w.DataCenterID] = append(dcWorlds[w.DataCenterID], w.ID)
	}

	regionNames := make(map[uint8]string, len(r.regions))
	for _, reg := range r.regions {
		regionNames[reg.ID] = reg.Name
	}

	for _, dc := range dcRows {
		if dc.ID <= 0 || dc.ID >= 99 {
			continue
		}
		worlds := dcWorlds[dc.ID]
		if len(worlds) == 0 {
			continue
		}
		sortInt32s(worlds)
		r.dataCenters = append(r.dataCenters, model.DataCenter{
			Name:     dc.Name,
			Region:   regionNames[dc.Region],
			WorldIDs: worlds,
		})
	}

	for _, sc := range staticCatalogs {
		ids := make([]int32, 0, len(sc.worlds))
		for _, w := range sc.worlds {
			r.addWorld(w.ID, w.Name)
			ids = append(ids, w.ID)
		}
		sortInt32s(ids)
		r.dataCenters = append(r.dataCenters, model.DataCenter{
			Name:     sc.dcName,
			Region:   regionNames[sc.region],
			WorldIDs: ids,
		})
	}

	for _, item := range itemRows {
		if item.SearchCategory < 1 {
			continue
		}
		r.stackSizes[item.ID] = item.StackSize
		r.marketableIDs = append(r.marketableIDs, item.ID)
	}
	sortInt32s(r.marketableIDs)

	for id := range r.worldsByID {
		r.worldIDs = append(r.worldIDs, id)
	}
	sortInt32s(r.worldIDs)

	return r, nil
}

func (r *Resolver) addWorld(id int32, name string) {
	r.worldsByID[id] = name
	r.worldsByName[name] = id
}

// WorldsByID returns a copy of the id-to-name world map.
func (r *Resolver) WorldsByID() map[int32]string {
	out := make(map[int32]string, len(r.worldsByID))
	for k, v := range r.worldsByID {
		out[k] = v
	}
	return out
}

// WorldsByName returns a copy of the name-to-id world map.
func (r *Resolver) WorldsByName() map[string]int32 {
	out := make(map[string]int32, len(r.worldsByName))
	for k, v := range r.worldsByName {
		out[k] = v
	}
	return out
}

// WorldIDs returns the sorted set of known world ids.
func (r *Resolver) WorldIDs() []int32 {
	return append([]int32(nil), r.worldIDs...)
}

// WorldName returns the display name for a world id, if known.
func (r *Resolver) WorldName(id int32) (string, bool) {
	name, ok := r.worldsByID[id]
	return name, ok
}

// DataCenters returns the data-center catalog.
func (r *Resolver) DataCenters() []model.DataCenter {
	return append([]model.DataCenter(nil), r.dataCenters...)
}

// MarketableItems returns the sorted set of marketable item ids.
func (r *Resolver) MarketableItems() []int32 {
	return append([]int32(nil), r.marketableIDs...)
}

// IsMarketable reports whether the item can be traded on the market board.
func (r *Resolver) IsMarketable(itemID int32) bool {
	_, ok := r.stackSizes[itemID]
	return ok
}

// StackSize returns the stack size for a marketable item.
func (r *Resolver) StackSize(itemID int32) (int32, bool) {
	size, ok := r.stackSizes[itemID]
	return size, ok
}

// Resolve parses a worldOrDc token. Numeric tokens must name a known world
// id; otherwise the token is canonicalized and matched against world names,
// then data-center names (case-insensitive).
func (r *Resolver) Resolve(token string) (model.WorldOrDc, error) {
	if token == "" {
		return model.WorldOrDc{}, ErrUnknownWorldOrDc
	}

	if id, err := strconv.ParseInt(token, 10, 32); err == nil && id > 0 {
		if name, ok := r.worldsByID[int32(id)]; ok {
			return model.WorldOrDc{World: &model.World{ID: int32(id), Name: name}}, nil
		}
		return model.WorldOrDc{}, ErrUnknownWorldOrDc
	}

	name := canonicalName(token)
	if id, ok := r.worldsByName[name]; ok {
		return model.WorldOrDc{World: &model.World{ID: id, Name: name}}, nil
	}

	for i := range r.dataCenters {
		if strings.EqualFold(r.dataCenters[i].Name, token) {
			dc := r.dataCenters[i]
			return model.WorldOrDc{Dc: &dc}, nil
		}
	}

	return model.WorldOrDc{}, ErrUnknownWorldOrDc
}

// canonicalName uppercases the first code point and lowercases the rest.
// Only ASCII letters are folded; other scripts pass through unchanged.
func canonicalName(s string) string {
	runes := []rune(s)
	for i, c := range runes {
		if i == 0 {
			if c >= 'a' && c <= 'z' {
				runes[i] = c - ('a' - 'A')
			}
			continue
		}
		if c >= 'A' && c <= 'Z' {
			runes[i] = c + ('a' - 'A')
		}
	}
	return string(runes)
}

func sortInt32s(s []int32) {
	sort.Slice(s, func(i, j int) bool { return s[i] < s[j] })
}
