// Package remote implements the RemoteClient port against the fittrack
// document service's JSON REST API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gregjones/httpcache"

	"github.com/fittrack-app/fittrack/internal/domain/model"
	"github.com/fittrack-app/fittrack/internal/domain/port/driven"
)

// ErrUnavailable is returned (wrapped) for every transport failure and
// non-2xx response. Callers treat all of them uniformly: fall back to the
// cache on reads, queue on writes.
var ErrUnavailable = errors.New("remote data service unavailable")

// errNotFound marks a 404 internally; only GetProfile maps it to (nil, nil).
var errNotFound = errors.New("not found")

// StatusReporter receives the outcome of every remote call. The production
// implementation is the connectivity monitor, which derives online/offline
// state from these reports.
type StatusReporter interface {
	ReportSuccess()
	ReportFailure()
}

// Compile-time interface satisfaction check.
var _ driven.RemoteClient = (*Client)(nil)

// Client implements the driven.RemoteClient port. Its transport stack is
// httpcache (conditional-request caching for GETs) over the default
// transport, with a 15s overall per-call timeout.
type Client struct {
	http     *http.Client
	baseURL  string
	reporter StatusReporter
}

// NewClient creates a Client for the service at baseURL. reporter may be nil.
func NewClient(baseURL string, reporter StatusReporter) *Client {
	return &Client{
		http: &http.Client{
			Transport: httpcache.NewMemoryCacheTransport(),
			Timeout:   15 * time.Second,
		},
		baseURL:  strings.TrimRight(baseURL, "/"),
		reporter: reporter,
	}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client.
// This constructor is intended for testing with an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string, reporter StatusReporter) *Client {
	return &Client{
		http:     httpClient,
		baseURL:  strings.TrimRight(baseURL, "/"),
		reporter: reporter,
	}
}

// GetProfile fetches the profile for ownerID. Returns (nil, nil) when the
// service has no profile for that owner.
func (c *Client) GetProfile(ctx context.Context, ownerID string) (*model.UserProfile, error) {
	var profile model.UserProfile
	err := c.doJSON(ctx, http.MethodGet, c.userPath(ownerID, "profile"), nil, &profile)
	if errors.Is(err, errNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// SaveProfile stores the profile for ownerID, replacing any existing one.
func (c *Client) SaveProfile(ctx context.Context, ownerID string, profile model.UserProfile) error {
	return c.doJSON(ctx, http.MethodPut, c.userPath(ownerID, "profile"), profile, nil)
}

// AddSession records a new activity session. The service deduplicates on the
// client-generated session ID, so replays from the sync queue are safe.
func (c *Client) AddSession(ctx context.Context, session model.ActivitySession) error {
	return c.doJSON(ctx, http.MethodPost, c.userPath(session.OwnerID, "sessions"), session, nil)
}

// ListSessions returns the most recent sessions for ownerID, newest first.
func (c *Client) ListSessions(ctx context.Context, ownerID string, limit int) ([]model.ActivitySession, error) {
	var sessions []model.ActivitySession
	path := c.userPath(ownerID, "sessions") + "?limit=" + strconv.Itoa(limit)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &sessions); err != nil {
		return nil, err
	}
	if sessions == nil {
		sessions = []model.ActivitySession{}
	}
	return sessions, nil
}

// AddWeightEntry records a new weight log entry. Deduplicated on the
// client-generated entry ID, as with sessions.
func (c *Client) AddWeightEntry(ctx context.Context, entry model.WeightEntry) error {
	return c.doJSON(ctx, http.MethodPost, c.userPath(entry.OwnerID, "weights"), entry, nil)
}

// ListWeightHistory returns the most recent weight entries, newest first.
func (c *Client) ListWeightHistory(ctx context.Context, ownerID string, limit int) ([]model.WeightEntry, error) {
	var entries []model.WeightEntry
	path := c.userPath(ownerID, "weights") + "?limit=" + strconv.Itoa(limit)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []model.WeightEntry{}
	}
	return entries, nil
}

// ComputeStats asks the service for the aggregated activity summary.
func (c *Client) ComputeStats(ctx context.Context, ownerID string) (*model.Stats, error) {
	var stats model.Stats
	if err := c.doJSON(ctx, http.MethodGet, c.userPath(ownerID, "stats"), nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Ping checks reachability without touching any user data.
func (c *Client) Ping(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodGet, "/v1/ping", nil, nil)
}

// userPath builds /v1/users/{id}/{resource} with the owner ID escaped.
func (c *Client) userPath(ownerID, resource string) string {
	return "/v1/users/" + url.PathEscape(ownerID) + "/" + resource
}

// doJSON performs one request/response cycle and reports the outcome to the
// status reporter. Transport errors and non-2xx responses (except 404, see
// errNotFound) come back wrapped around ErrUnavailable.
func (c *Client) doJSON(ctx context.Context, method, path string, body, dest any) error {
	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body for %s %s: %w", method, path, err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request %s %s: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.reportFailure()
		return fmt.Errorf("%s %s: %w: %w", method, path, ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		// The service answered, so connectivity is fine; the resource just
		// does not exist.
		c.reportSuccess()
		return errNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		c.reportFailure()
		return fmt.Errorf("%s %s: status %d: %w", method, path, resp.StatusCode, ErrUnavailable)
	}

	c.reportSuccess()

	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response for %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) reportSuccess() {
	if c.reporter != nil {
		c.reporter.ReportSuccess()
	}
}

func (c *Client) reportFailure() {
	if c.reporter != nil {
		c.reporter.ReportFailure()
	}
}
