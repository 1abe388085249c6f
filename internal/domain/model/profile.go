// Package model contains the domain types shared across the application.
// Domain records double as wire records: they are JSON-marshaled both into
// the local cache and into remote data service requests, so field tags live
// on the models themselves.
package model

import "time"

// UserProfile is the tracked user's profile record.
type UserProfile struct {
	OwnerID      string    `json:"owner_id"`
	DisplayName  string    `json:"display_name"`
	BirthYear    int       `json:"birth_year"`
	HeightCm     float64   `json:"height_cm"`
	WeightKg     float64   `json:"weight_kg"`
	TargetWeight float64   `json:"target_weight_kg"`
	City         string    `json:"city"`
	Goal         string    `json:"goal"` // Free-form, e.g. "lose weight", "5k under 25min".
	UpdatedAt    time.Time `json:"updated_at"`
}

// Age returns the user's age in years as of now, or 0 when BirthYear is unset.
func (p UserProfile) Age() int {
	if p.BirthYear == 0 {
		return 0
	}
	return time.Now().Year() - p.BirthYear
}
