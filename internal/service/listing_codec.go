package service

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/golang/snappy"

	"github.com/kireshiki/Universalis/internal/model"
)

// Cached listing sets are stored as a 4-byte big-endian length of the raw
// payload followed by its snappy-compressed bytes. The prefix guards
// against truncated or foreign values sharing the key space.
func encodeListings(listings []model.Listing) ([]byte, error) {
	if listings == nil {
		listings = []model.Listing{}
	}
	payload, err := json.Marshal(listings)
	if err != nil {
		return nil, fmt.Errorf("failed to encode listings: %w", err)
	}

	compressed := snappy.Encode(nil, payload)
	out := make([]byte, 4+len(compressed))
	binary.BigEndian.PutUint32(out[:4], uint32(len(payload)))
	copy(out[4:], compressed)
	return out, nil
}

func decodeListings(value []byte) ([]model.Listing, error) {
	if len(value) < 4 {
		return nil, fmt.Errorf("cached listing value too short: %d bytes", len(value))
	}
	want := binary.BigEndian.Uint32(value)

	payload, err := snappy.Decode(nil, value[4:])
	if err != nil {
		return nil, fmt.Errorf("failed to decompress listings: %w", err)
	}
	if uint32(len(payload)) != want {
		return nil, fmt.Errorf("cached listing length mismatch: got %d, want %d", len(payload), want)
	}

	var listings []model.Listing
	if err := json.Unmarshal(payload, &listings); err != nil {
		return nil, fmt.Errorf("failed to decode listings: %w", err)
	}
	return listings, nil
}
