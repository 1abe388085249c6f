package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fittrack-app/fittrack/internal/domain/model"
	"github.com/fittrack-app/fittrack/internal/domain/port/driven"
)

// ErrNotFound is returned when neither the cache nor the remote service has
// a value for the requested resource.
var ErrNotFound = errors.New("resource not found")

// Cache retention per resource. Domain records never expire locally (the
// remote refresh overwrites them); derived and external data carries a TTL.
const (
	statsTTL   = 24 * time.Hour
	weatherTTL = time.Hour
)

// Snapshot pairs a resource value with where it came from.
type Snapshot[T any] struct {
	Value     T
	Freshness model.Freshness
}

// DataService is the data orchestrator: every read merges cache and remote,
// every write goes through the cache and then either the remote (online) or
// the sync queue (offline). The UI layer talks only to this service, never
// to the cache or queue directly.
type DataService struct {
	cache   driven.CacheStore
	queue   *SyncQueue
	remote  driven.RemoteClient
	weather driven.WeatherClient
	monitor driven.ConnectivityMonitor
}

// NewDataService creates a DataService. weather may be nil when no weather
// service is configured.
func NewDataService(
	cache driven.CacheStore,
	queue *SyncQueue,
	remote driven.RemoteClient,
	weather driven.WeatherClient,
	monitor driven.ConnectivityMonitor,
) *DataService {
	return &DataService{
		cache:   cache,
		queue:   queue,
		remote:  remote,
		weather: weather,
		monitor: monitor,
	}
}

// Cache key layout. The kvcache adds the application namespace prefix on
// top of these.
func profileKey(ownerID string) string { return "profile:" + ownerID }
func sessionsKey(ownerID string) string { return "sessions:" + ownerID }
func weightsKey(ownerID string) string { return "weights:" + ownerID }
func statsKey(ownerID string) string   { return "stats:" + ownerID }
func weatherKey(cityKey string) string { return "weather:" + cityKey }

// Profile returns the user's profile, cache-first. When online, a remote
// read refreshes the cache; a failed refresh silently falls back to the
// cached value. ErrNotFound is returned only when no value exists anywhere.
func (s *DataService) Profile(ctx context.Context, ownerID string) (Snapshot[model.UserProfile], error) {
	var cached model.UserProfile
	haveCached := s.cache.Get(ctx, profileKey(ownerID), &cached)

	if s.monitor.Online() {
		profile, err := s.remote.GetProfile(ctx, ownerID)
		switch {
		case err != nil:
			slog.Warn("profile refresh failed, serving cached value", "owner", ownerID, "error", err)
		case profile != nil:
			_ = s.cache.Set(ctx, profileKey(ownerID), *profile, 0)
			return Snapshot[model.UserProfile]{Value: *profile, Freshness: model.FreshnessFresh}, nil
		}
		// Remote has no profile: fall through to the cache, which may hold
		// a locally created profile still waiting in the sync queue.
	}

	if haveCached {
		return Snapshot[model.UserProfile]{Value: cached, Freshness: model.FreshnessCached}, nil
	}
	return Snapshot[model.UserProfile]{Freshness: model.FreshnessAbsent}, ErrNotFound
}

// SaveProfile writes the profile through the cache, then either remotely
// (online, remote errors surface to the caller) or into the sync queue
// (offline, reported as local success).
func (s *DataService) SaveProfile(ctx context.Context, ownerID string, profile model.UserProfile) error {
	profile.OwnerID = ownerID
	profile.UpdatedAt = time.Now().UTC()

	// The cache is updated before any remote attempt so the UI never
	// displays state the cache disagrees with.
	if err := s.cache.Set(ctx, profileKey(ownerID), profile, 0); err != nil {
		return fmt.Errorf("cache profile: %w", err)
	}

	if s.monitor.Online() {
		if err := s.remote.SaveProfile(ctx, ownerID, profile); err != nil {
			return fmt.Errorf("save profile remotely: %w", err)
		}
		return nil
	}

	payload, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encode profile for sync queue: %w", err)
	}
	return s.queue.Enqueue(ctx, model.SyncActionUpdate, model.CollectionUsers, payload)
}

// Sessions returns the user's recent activity sessions, cache-first with a
// remote refresh when online.
func (s *DataService) Sessions(ctx context.Context, ownerID string, limit int) (Snapshot[[]model.ActivitySession], error) {
	var cached []model.ActivitySession
	haveCached := s.cache.Get(ctx, sessionsKey(ownerID), &cached)

	if s.monitor.Online() {
		sessions, err := s.remote.ListSessions(ctx, ownerID, limit)
		if err != nil {
			slog.Warn("session list refresh failed, serving cached value", "owner", ownerID, "error", err)
		} else {
			_ = s.cache.Set(ctx, sessionsKey(ownerID), sessions, 0)
			return Snapshot[[]model.ActivitySession]{Value: sessions, Freshness: model.FreshnessFresh}, nil
		}
	}

	if haveCached {
		return Snapshot[[]model.ActivitySession]{Value: cached, Freshness: model.FreshnessCached}, nil
	}
	return Snapshot[[]model.ActivitySession]{Value: []model.ActivitySession{}, Freshness: model.FreshnessAbsent}, nil
}

// AddSession logs a workout. A missing ID is filled with a client-generated
// uuid so the remote service can deduplicate sync queue replays.
func (s *DataService) AddSession(ctx context.Context, ownerID string, session model.ActivitySession) (model.ActivitySession, error) {
	session.OwnerID = ownerID
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.StartedAt.IsZero() {
		session.StartedAt = time.Now().UTC()
	}

	var sessions []model.ActivitySession
	s.cache.Get(ctx, sessionsKey(ownerID), &sessions)
	sessions = append([]model.ActivitySession{session}, sessions...)
	if err := s.cache.Set(ctx, sessionsKey(ownerID), sessions, 0); err != nil {
		return session, fmt.Errorf("cache session: %w", err)
	}

	if s.monitor.Online() {
		if err := s.remote.AddSession(ctx, session); err != nil {
			return session, fmt.Errorf("save session remotely: %w", err)
		}
		return session, nil
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return session, fmt.Errorf("encode session for sync queue: %w", err)
	}
	return session, s.queue.Enqueue(ctx, model.SyncActionCreate, model.CollectionSessions, payload)
}

// WeightHistory returns recent weight entries, cache-first with a remote
// refresh when online.
func (s *DataService) WeightHistory(ctx context.Context, ownerID string, limit int) (Snapshot[[]model.WeightEntry], error) {
	var cached []model.WeightEntry
	haveCached := s.cache.Get(ctx, weightsKey(ownerID), &cached)

	if s.monitor.Online() {
		entries, err := s.remote.ListWeightHistory(ctx, ownerID, limit)
		if err != nil {
			slog.Warn("weight history refresh failed, serving cached value", "owner", ownerID, "error", err)
		} else {
			_ = s.cache.Set(ctx, weightsKey(ownerID), entries, 0)
			return Snapshot[[]model.WeightEntry]{Value: entries, Freshness: model.FreshnessFresh}, nil
		}
	}

	if haveCached {
		return Snapshot[[]model.WeightEntry]{Value: cached, Freshness: model.FreshnessCached}, nil
	}
	return Snapshot[[]model.WeightEntry]{Value: []model.WeightEntry{}, Freshness: model.FreshnessAbsent}, nil
}

// AddWeight logs a weight entry, following the same write path as sessions.
func (s *DataService) AddWeight(ctx context.Context, ownerID string, weightKg float64, notes string) (model.WeightEntry, error) {
	entry := model.WeightEntry{
		ID:         uuid.NewString(),
		OwnerID:    ownerID,
		WeightKg:   weightKg,
		Notes:      notes,
		RecordedAt: time.Now().UTC(),
	}

	var entries []model.WeightEntry
	s.cache.Get(ctx, weightsKey(ownerID), &entries)
	entries = append([]model.WeightEntry{entry}, entries...)
	if err := s.cache.Set(ctx, weightsKey(ownerID), entries, 0); err != nil {
		return entry, fmt.Errorf("cache weight entry: %w", err)
	}

	if s.monitor.Online() {
		if err := s.remote.AddWeightEntry(ctx, entry); err != nil {
			return entry, fmt.Errorf("save weight entry remotely: %w", err)
		}
		return entry, nil
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		return entry, fmt.Errorf("encode weight entry for sync queue: %w", err)
	}
	return entry, s.queue.Enqueue(ctx, model.SyncActionCreate, model.CollectionWeights, payload)
}

// Stats returns the remote-computed activity summary, cached for a day so
// the dashboard stays useful offline.
func (s *DataService) Stats(ctx context.Context, ownerID string) (Snapshot[model.Stats], error) {
	var cached model.Stats
	haveCached := s.cache.Get(ctx, statsKey(ownerID), &cached)

	if s.monitor.Online() {
		stats, err := s.remote.ComputeStats(ctx, ownerID)
		if err != nil {
			slog.Warn("stats refresh failed, serving cached value", "owner", ownerID, "error", err)
		} else {
			_ = s.cache.Set(ctx, statsKey(ownerID), *stats, statsTTL)
			return Snapshot[model.Stats]{Value: *stats, Freshness: model.FreshnessFresh}, nil
		}
	}

	if haveCached {
		return Snapshot[model.Stats]{Value: cached, Freshness: model.FreshnessCached}, nil
	}
	return Snapshot[model.Stats]{Freshness: model.FreshnessAbsent}, ErrNotFound
}

// Weather returns current conditions for a city. Cached reports are served
// until their TTL lapses; only then is the weather service consulted.
func (s *DataService) Weather(ctx context.Context, cityKey string) (Snapshot[model.WeatherReport], error) {
	var cached model.WeatherReport
	if s.cache.Get(ctx, weatherKey(cityKey), &cached) {
		return Snapshot[model.WeatherReport]{Value: cached, Freshness: model.FreshnessCached}, nil
	}

	if s.weather == nil {
		return Snapshot[model.WeatherReport]{Freshness: model.FreshnessAbsent}, ErrNotFound
	}

	report, err := s.weather.Current(ctx, cityKey)
	if err != nil {
		slog.Warn("weather fetch failed", "city", cityKey, "error", err)
		return Snapshot[model.WeatherReport]{Freshness: model.FreshnessAbsent}, ErrNotFound
	}

	_ = s.cache.Set(ctx, weatherKey(cityKey), *report, weatherTTL)
	return Snapshot[model.WeatherReport]{Value: *report, Freshness: model.FreshnessFresh}, nil
}

// ClearLocalData wipes all locally cached records, including the sync
// queue. Intended for sign-out.
func (s *DataService) ClearLocalData(ctx context.Context) error {
	return s.cache.Clear(ctx)
}

// PendingSyncCount reports how many mutations are waiting in the queue.
func (s *DataService) PendingSyncCount(ctx context.Context) int {
	return s.queue.Len(ctx)
}

// CacheDegraded reports whether the cache has fallen back to memory-only
// mode. Diagnostic only.
func (s *DataService) CacheDegraded() bool {
	return s.cache.Degraded()
}
