package model

import "time"

// WeatherReport is the current conditions for a city, used by daily
// activity planning.
type WeatherReport struct {
	CityKey   string    `json:"city_key"`
	TempC     float64   `json:"temp_c"`
	Condition string    `json:"condition"` // e.g. "clear", "rain", "snow".
	WindKph   float64   `json:"wind_kph"`
	Humidity  int       `json:"humidity"`
	FetchedAt time.Time `json:"fetched_at"`
}
