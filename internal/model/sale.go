package model

import "time"

// Sale is a completed purchase recorded for historical analysis.
// Rows are append-only; newest-first is the canonical read order.
type Sale struct {
	WorldID   int32     `json:"world_id"`
	ItemID    int32     `json:"item_id"`
	HQ        bool      `json:"hq"`
	UnitPrice int32     `json:"unit_price"`
	Quantity  int32     `json:"quantity"`
	BuyerName string    `json:"buyer_name"`
	SoldAt    time.Time `json:"sold_at"`
}
