package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/fittrack-app/fittrack/internal/domain/port/driven"
)

// syncRequest represents a manual sync trigger.
type syncRequest struct {
	done chan syncResult
}

type syncResult struct {
	applied int
	err     error
}

// SyncService owns the background sync loop: it drains the queue when
// connectivity returns, probes for recovery while offline, and serves
// manual sync requests from the API.
type SyncService struct {
	reconciler    *Reconciler
	monitor       driven.ConnectivityMonitor
	remote        driven.RemoteClient
	probeInterval time.Duration
	wakeCh        chan struct{}
	syncCh        chan syncRequest
}

// NewSyncService creates a SyncService with all required dependencies.
func NewSyncService(
	reconciler *Reconciler,
	monitor driven.ConnectivityMonitor,
	remote driven.RemoteClient,
	probeInterval time.Duration,
) *SyncService {
	return &SyncService{
		reconciler:    reconciler,
		monitor:       monitor,
		remote:        remote,
		probeInterval: probeInterval,
		wakeCh:        make(chan struct{}, 1),
		syncCh:        make(chan syncRequest),
	}
}

// Start runs the sync loop until the context is canceled. It subscribes to
// the connectivity monitor and drains on every offline-to-online transition;
// while offline it pings the remote on the probe interval so a recovered
// connection is noticed (the ping outcome flows back through the monitor).
func (s *SyncService) Start(ctx context.Context) {
	unsubscribe := s.monitor.Subscribe(func(online bool) {
		if !online {
			return
		}
		// Non-blocking: a pending wake-up already covers this transition.
		select {
		case s.wakeCh <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	// Pick up anything left in the queue by a previous run.
	if s.monitor.Online() {
		s.drain(ctx)
	}

	ticker := time.NewTicker(s.probeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("sync service stopped")
			return
		case <-ticker.C:
			if !s.monitor.Online() {
				_ = s.remote.Ping(ctx)
			}
		case <-s.wakeCh:
			s.drain(ctx)
		case req := <-s.syncCh:
			applied, err := s.reconciler.Drain(ctx)
			req.done <- syncResult{applied: applied, err: err}
		}
	}
}

// SyncNow triggers an immediate drain and blocks until it completes or the
// context is canceled. It returns the number of items applied.
func (s *SyncService) SyncNow(ctx context.Context) (int, error) {
	done := make(chan syncResult, 1)

	select {
	case s.syncCh <- syncRequest{done: done}:
	case <-ctx.Done():
		return 0, ctx.Err()
	}

	select {
	case res := <-done:
		return res.applied, res.err
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func (s *SyncService) drain(ctx context.Context) {
	applied, err := s.reconciler.Drain(ctx)
	if err != nil {
		slog.Error("sync drain failed", "error", err)
		return
	}
	if applied > 0 {
		slog.Info("sync drain complete", "items", applied)
	}
}
