package model

import "time"

// WeightEntry is a single weight log record.
type WeightEntry struct {
	// ID is generated client-side so that an entry replayed from the sync
	// queue can be deduplicated by the remote service.
	ID         string    `json:"id"`
	OwnerID    string    `json:"owner_id"`
	WeightKg   float64   `json:"weight_kg"`
	Notes      string    `json:"notes,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}
