package model

import "time"

// Stats is the remote-computed activity summary for a user.
type Stats struct {
	OwnerID         string    `json:"owner_id"`
	TotalSessions   int       `json:"total_sessions"`
	TotalMinutes    int       `json:"total_minutes"`
	TotalDistanceKm float64   `json:"total_distance_km"`
	CurrentWeightKg float64   `json:"current_weight_kg"`
	WeightChangeKg  float64   `json:"weight_change_kg"` // Negative means lost weight.
	ComputedAt      time.Time `json:"computed_at"`
}
