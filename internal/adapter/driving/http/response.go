package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/fittrack-app/fittrack/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// ProfileResponse is the JSON representation of the owner's profile. The
// freshness field tells the UI whether it is looking at live or cached data.
type ProfileResponse struct {
	OwnerID      string  `json:"owner_id"`
	DisplayName  string  `json:"display_name"`
	BirthYear    int     `json:"birth_year"`
	Age          int     `json:"age"`
	HeightCm     float64 `json:"height_cm"`
	WeightKg     float64 `json:"weight_kg"`
	TargetWeight float64 `json:"target_weight_kg"`
	City         string  `json:"city"`
	Goal         string  `json:"goal"`
	UpdatedAt    string  `json:"updated_at"`
	Freshness    string  `json:"freshness"`
}

// SaveProfileRequest is the JSON body for the save profile endpoint.
type SaveProfileRequest struct {
	DisplayName  string  `json:"display_name"`
	BirthYear    int     `json:"birth_year"`
	HeightCm     float64 `json:"height_cm"`
	WeightKg     float64 `json:"weight_kg"`
	TargetWeight float64 `json:"target_weight_kg"`
	City         string  `json:"city"`
	Goal         string  `json:"goal"`
}

func (r SaveProfileRequest) toModel() model.UserProfile {
	return model.UserProfile{
		DisplayName:  r.DisplayName,
		BirthYear:    r.BirthYear,
		HeightCm:     r.HeightCm,
		WeightKg:     r.WeightKg,
		TargetWeight: r.TargetWeight,
		City:         r.City,
		Goal:         r.Goal,
	}
}

// SessionResponse is the JSON representation of a logged workout.
type SessionResponse struct {
	ID          string  `json:"id"`
	Activity    string  `json:"activity"`
	DurationMin int     `json:"duration_min"`
	DistanceKm  float64 `json:"distance_km"`
	Calories    int     `json:"calories"`
	Notes       string  `json:"notes"`
	StartedAt   string  `json:"started_at"`
}

// SessionListResponse wraps a session list with its freshness.
type SessionListResponse struct {
	Sessions  []SessionResponse `json:"sessions"`
	Freshness string            `json:"freshness"`
}

// AddSessionRequest is the JSON body for the add session endpoint.
type AddSessionRequest struct {
	Activity    string  `json:"activity"`
	DurationMin int     `json:"duration_min"`
	DistanceKm  float64 `json:"distance_km"`
	Calories    int     `json:"calories"`
	Notes       string  `json:"notes"`
	StartedAt   string  `json:"started_at"`
}

func (r AddSessionRequest) toModel() model.ActivitySession {
	session := model.ActivitySession{
		Activity:    r.Activity,
		DurationMin: r.DurationMin,
		DistanceKm:  r.DistanceKm,
		Calories:    r.Calories,
		Notes:       r.Notes,
	}
	if t, err := time.Parse(time.RFC3339, r.StartedAt); err == nil {
		session.StartedAt = t
	}
	return session
}

// WeightResponse is the JSON representation of a weight log entry.
type WeightResponse struct {
	ID         string  `json:"id"`
	WeightKg   float64 `json:"weight_kg"`
	Notes      string  `json:"notes"`
	RecordedAt string  `json:"recorded_at"`
}

// WeightListResponse wraps a weight history with its freshness.
type WeightListResponse struct {
	Entries   []WeightResponse `json:"entries"`
	Freshness string           `json:"freshness"`
}

// AddWeightRequest is the JSON body for the add weight endpoint.
type AddWeightRequest struct {
	WeightKg float64 `json:"weight_kg"`
	Notes    string  `json:"notes"`
}

// StatsResponse is the JSON representation of the activity summary.
type StatsResponse struct {
	TotalSessions   int     `json:"total_sessions"`
	TotalMinutes    int     `json:"total_minutes"`
	TotalDistanceKm float64 `json:"total_distance_km"`
	CurrentWeightKg float64 `json:"current_weight_kg"`
	WeightChangeKg  float64 `json:"weight_change_kg"`
	ComputedAt      string  `json:"computed_at"`
	Freshness       string  `json:"freshness"`
}

// WeatherResponse is the JSON representation of current conditions.
type WeatherResponse struct {
	City      string  `json:"city"`
	TempC     float64 `json:"temp_c"`
	Condition string  `json:"condition"`
	WindKph   float64 `json:"wind_kph"`
	Humidity  int     `json:"humidity"`
	FetchedAt string  `json:"fetched_at"`
	Freshness string  `json:"freshness"`
}

// SyncStatusResponse reports the state of the offline machinery.
type SyncStatusResponse struct {
	Online        bool `json:"online"`
	PendingItems  int  `json:"pending_items"`
	CacheDegraded bool `json:"cache_degraded"`
}

// SyncResponse is the result of a manual sync trigger.
type SyncResponse struct {
	Applied int `json:"applied"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// toProfileResponse converts a domain UserProfile to its JSON representation.
func toProfileResponse(p model.UserProfile, freshness model.Freshness) ProfileResponse {
	return ProfileResponse{
		OwnerID:      p.OwnerID,
		DisplayName:  p.DisplayName,
		BirthYear:    p.BirthYear,
		Age:          p.Age(),
		HeightCm:     p.HeightCm,
		WeightKg:     p.WeightKg,
		TargetWeight: p.TargetWeight,
		City:         p.City,
		Goal:         p.Goal,
		UpdatedAt:    p.UpdatedAt.UTC().Format(time.RFC3339),
		Freshness:    string(freshness),
	}
}

// toSessionResponse converts a domain ActivitySession to its JSON representation.
func toSessionResponse(s model.ActivitySession) SessionResponse {
	return SessionResponse{
		ID:          s.ID,
		Activity:    s.Activity,
		DurationMin: s.DurationMin,
		DistanceKm:  s.DistanceKm,
		Calories:    s.Calories,
		Notes:       s.Notes,
		StartedAt:   s.StartedAt.UTC().Format(time.RFC3339),
	}
}

// toWeightResponse converts a domain WeightEntry to its JSON representation.
func toWeightResponse(e model.WeightEntry) WeightResponse {
	return WeightResponse{
		ID:         e.ID,
		WeightKg:   e.WeightKg,
		Notes:      e.Notes,
		RecordedAt: e.RecordedAt.UTC().Format(time.RFC3339),
	}
}

// toStatsResponse converts domain Stats to its JSON representation.
func toStatsResponse(s model.Stats, freshness model.Freshness) StatsResponse {
	return StatsResponse{
		TotalSessions:   s.TotalSessions,
		TotalMinutes:    s.TotalMinutes,
		TotalDistanceKm: s.TotalDistanceKm,
		CurrentWeightKg: s.CurrentWeightKg,
		WeightChangeKg:  s.WeightChangeKg,
		ComputedAt:      s.ComputedAt.UTC().Format(time.RFC3339),
		Freshness:       string(freshness),
	}
}

// toWeatherResponse converts a domain WeatherReport to its JSON representation.
func toWeatherResponse(r model.WeatherReport, freshness model.Freshness) WeatherResponse {
	return WeatherResponse{
		City:      r.CityKey,
		TempC:     r.TempC,
		Condition: r.Condition,
		WindKph:   r.WindKph,
		Humidity:  r.Humidity,
		FetchedAt: r.FetchedAt.UTC().Format(time.RFC3339),
		Freshness: string(freshness),
	}
}
