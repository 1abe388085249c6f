// Package driven defines the driven ports: interfaces the application core
// depends on, implemented by adapters.
package driven

import (
	"context"

	"github.com/fittrack-app/fittrack/internal/domain/model"
)

// RemoteClient is the driven port for the remote data service. Every method
// that touches the network takes a context and returns an error; the core
// treats any failure uniformly as "remote unavailable" and falls back to the
// cache (reads) or the sync queue (writes).
type RemoteClient interface {
	// GetProfile returns (nil, nil) when no profile exists for the owner.
	GetProfile(ctx context.Context, ownerID string) (*model.UserProfile, error)
	SaveProfile(ctx context.Context, ownerID string, profile model.UserProfile) error

	AddSession(ctx context.Context, session model.ActivitySession) error
	ListSessions(ctx context.Context, ownerID string, limit int) ([]model.ActivitySession, error)

	AddWeightEntry(ctx context.Context, entry model.WeightEntry) error
	ListWeightHistory(ctx context.Context, ownerID string, limit int) ([]model.WeightEntry, error)

	ComputeStats(ctx context.Context, ownerID string) (*model.Stats, error)

	// Ping is a lightweight reachability check used by the connectivity
	// recovery probe. It must not mutate remote state.
	Ping(ctx context.Context) error
}
