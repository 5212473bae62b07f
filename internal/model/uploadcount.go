package model

// UploadCountHistory is the singleton rolling 30-day upload counter.
// Counts[0] is today; a rollover prepends a fresh zero and truncates.
type UploadCountHistory struct {
	LastPush int64   `json:"last_push"`
	Counts   []int64 `json:"counts"`
}

// UploadCountDays is the retention window for daily upload counters.
const UploadCountDays = 30
