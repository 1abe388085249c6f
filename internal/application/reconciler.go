package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/fittrack-app/fittrack/internal/domain/model"
	"github.com/fittrack-app/fittrack/internal/domain/port/driven"
)

// maxItemRetries is how many remote attempts an item gets before it is
// permanently dropped. Delivery is at-least-once with this bounded give-up
// policy; create payloads carry client-generated IDs so the remote side can
// deduplicate replays.
const maxItemRetries = 3

// errUnroutable marks items no remote operation exists for; they are dropped
// immediately instead of burning retries.
var errUnroutable = errors.New("no remote operation for sync item")

// Reconciler drains the sync queue against the remote service when
// connectivity allows.
type Reconciler struct {
	queue    *SyncQueue
	remote   driven.RemoteClient
	monitor  driven.ConnectivityMonitor
	notifier driven.Notifier

	draining atomic.Bool
}

// NewReconciler creates a Reconciler. notifier may be nil.
func NewReconciler(queue *SyncQueue, remote driven.RemoteClient, monitor driven.ConnectivityMonitor, notifier driven.Notifier) *Reconciler {
	return &Reconciler{
		queue:    queue,
		remote:   remote,
		monitor:  monitor,
		notifier: notifier,
	}
}

// Drain applies queued mutations in FIFO order and returns how many were
// applied. It returns 0 immediately when offline, and no-ops when another
// drain is already in flight so a queue item can never be applied twice by
// overlapping passes. Items that keep failing are dropped after
// maxItemRetries attempts, with the payload logged for manual recovery.
func (r *Reconciler) Drain(ctx context.Context) (int, error) {
	if !r.monitor.Online() {
		return 0, nil
	}
	if !r.draining.CompareAndSwap(false, true) {
		return 0, nil
	}
	defer r.draining.Store(false)

	items := r.queue.PeekAll(ctx)
	if len(items) == 0 {
		return 0, nil
	}

	applied := 0
	survivors := make([]model.SyncItem, 0, len(items))
	for _, item := range items {
		if item.SchemaVersion != model.SyncSchemaVersion {
			slog.Error("dropping sync item with unsupported schema version",
				"id", item.ID,
				"schema_version", item.SchemaVersion,
				"payload", string(item.Payload),
			)
			continue
		}

		err := r.apply(ctx, item)
		switch {
		case err == nil:
			applied++
		case errors.Is(err, errUnroutable):
			slog.Error("dropping unroutable sync item",
				"id", item.ID,
				"collection", item.Collection,
				"action", item.Action,
				"error", err,
				"payload", string(item.Payload),
			)
		default:
			item.RetryCount++
			if item.RetryCount < maxItemRetries {
				survivors = append(survivors, item)
				continue
			}
			// The payload is logged so the record can be recovered manually.
			slog.Error("dropping sync item after repeated remote failures",
				"id", item.ID,
				"collection", item.Collection,
				"action", item.Action,
				"retries", item.RetryCount,
				"payload", string(item.Payload),
			)
		}
	}

	if err := r.queue.commitDrain(ctx, len(items), survivors); err != nil {
		return applied, fmt.Errorf("persist queue after drain: %w", err)
	}

	if applied > 0 && r.notifier != nil {
		r.notifier.SyncCompleted(applied)
	}
	return applied, nil
}

// apply dispatches one item to the matching remote write operation.
func (r *Reconciler) apply(ctx context.Context, item model.SyncItem) error {
	switch {
	case item.Collection == model.CollectionUsers && item.Action == model.SyncActionUpdate:
		var profile model.UserProfile
		if err := json.Unmarshal(item.Payload, &profile); err != nil {
			return fmt.Errorf("%w: decode profile payload: %w", errUnroutable, err)
		}
		return r.remote.SaveProfile(ctx, profile.OwnerID, profile)

	case item.Collection == model.CollectionSessions && item.Action == model.SyncActionCreate:
		var session model.ActivitySession
		if err := json.Unmarshal(item.Payload, &session); err != nil {
			return fmt.Errorf("%w: decode session payload: %w", errUnroutable, err)
		}
		return r.remote.AddSession(ctx, session)

	case item.Collection == model.CollectionWeights && item.Action == model.SyncActionCreate:
		var entry model.WeightEntry
		if err := json.Unmarshal(item.Payload, &entry); err != nil {
			return fmt.Errorf("%w: decode weight payload: %w", errUnroutable, err)
		}
		return r.remote.AddWeightEntry(ctx, entry)
	}

	return fmt.Errorf("%w: %s/%s", errUnroutable, item.Collection, item.Action)
}
