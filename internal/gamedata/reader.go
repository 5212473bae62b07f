package gamedata

import (
	"encoding/json"
	"fmt"
	"os"
)

// WorldRow is a raw world record as produced by the game-data reader.
type WorldRow struct {
	ID           int32  `json:"id"`
	Name         string `json:"name"`
	DataCenterID int32  `json:"data_center"`
	IsPublic     bool   `json:"is_public"`
}

// DataCenterRow is a raw data-center record.
type DataCenterRow struct {
	ID     int32  `json:"id"`
	Name   string `json:"name"`
	Region uint8  `json:"region"`
}

// ItemRow is a raw item record. SearchCategory >= 1 marks the item as
// tradeable on the market board.
type ItemRow struct {
	ID             int32 `json:"id"`
	StackSize      int32 `json:"stack_size"`
	SearchCategory int32 `json:"search_category"`
}

// SheetReader produces the raw world/item catalog the resolver is built
// from. Implementations wrap whatever game-data source is available.
type SheetReader interface {
	Worlds() ([]WorldRow, error)
	DataCenters() ([]DataCenterRow, error)
	Items() ([]ItemRow, error)
}

// FileReader reads the catalog from a single JSON export on disk.
type FileReader struct {
	worlds      []WorldRow
	dataCenters []DataCenterRow
	items       []ItemRow
}

type catalogFile struct {
	Worlds      []WorldRow      `json:"worlds"`
	DataCenters []DataCenterRow `json:"data_centers"`
	Items       []ItemRow       `json:"items"`
}

// NewFileReader loads and parses the catalog export at path.
func NewFileReader(path string) (*FileReader, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read game data: %w", err)
	}

	var file catalogFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse game data: %w", err)
	}

	return &FileReader{
		worlds:      file.Worlds,
		dataCenters: file.DataCenters,
		items:       file.Items,
	}, nil
}

// Worlds returns the raw world rows.
func (r *FileReader) Worlds() ([]WorldRow, error) { return r.worlds, nil }

// DataCenters returns the raw data-center rows.
func (r *FileReader) DataCenters() ([]DataCenterRow, error) { return r.dataCenters, nil }

// Items returns the raw item rows.
func (r *FileReader) Items() ([]ItemRow, error) { return r.items, nil }
