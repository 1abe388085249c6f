package model

import "time"

// ActivitySession is a single logged workout.
type ActivitySession struct {
	// ID is generated client-side so that a session replayed from the sync
	// queue can be deduplicated by the remote service.
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Activity    string    `json:"activity"` // e.g. "run", "walk", "cycle", "swim".
	DurationMin int       `json:"duration_min"`
	DistanceKm  float64   `json:"distance_km,omitempty"`
	Calories    int       `json:"calories,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	StartedAt   time.Time `json:"started_at"`
}
