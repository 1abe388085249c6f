// Package weather implements the WeatherClient port against the weather
// service's JSON API.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gregjones/httpcache"

	"github.com/fittrack-app/fittrack/internal/domain/model"
	"github.com/fittrack-app/fittrack/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.WeatherClient = (*Client)(nil)

// Client fetches current conditions. Weather lookups carry their own 10s
// timeout, independent of the data service's timeout policy.
type Client struct {
	http    *http.Client
	baseURL string
}

// NewClient creates a Client for the weather service at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		http: &http.Client{
			Transport: httpcache.NewMemoryCacheTransport(),
			Timeout:   10 * time.Second,
		},
		baseURL: baseURL,
	}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client.
// Intended for testing with an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string) *Client {
	return &Client{http: httpClient, baseURL: baseURL}
}

// currentResponse is the service's wire format for current conditions.
type currentResponse struct {
	TempC     float64 `json:"temp_c"`
	Condition string  `json:"condition"`
	WindKph   float64 `json:"wind_kph"`
	Humidity  int     `json:"humidity"`
}

// Current returns the current conditions for cityKey.
func (c *Client) Current(ctx context.Context, cityKey string) (*model.WeatherReport, error) {
	u := fmt.Sprintf("%s/v1/current?city=%s", c.baseURL, url.QueryEscape(cityKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build weather request for %q: %w", cityKey, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch weather for %q: %w", cityKey, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch weather for %q: status %d", cityKey, resp.StatusCode)
	}

	var body currentResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode weather response for %q: %w", cityKey, err)
	}

	return &model.WeatherReport{
		CityKey:   cityKey,
		TempC:     body.TempC,
		Condition: body.Condition,
		WindKph:   body.WindKph,
		Humidity:  body.Humidity,
		FetchedAt: time.Now().UTC(),
	}, nil
}
