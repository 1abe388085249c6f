package model

import (
	"encoding/json"
	"time"
)

// SyncAction is the kind of pending remote mutation.
type SyncAction string

const (
	SyncActionCreate SyncAction = "create"
	SyncActionUpdate SyncAction = "update"
	SyncActionDelete SyncAction = "delete"
)

// Collection names the sync queue and reconciler dispatch on.
const (
	CollectionUsers    = "users"
	CollectionSessions = "sessions"
	CollectionWeights  = "weights"
)

// SyncSchemaVersion is the current sync item envelope version. Bump it when
// the payload shape of any collection changes incompatibly; items persisted
// under an older version are dropped at drain time rather than misapplied.
const SyncSchemaVersion = 1

// SyncItem is one pending remote mutation, persisted FIFO in the sync queue.
// The payload is opaque to the queue itself; only the reconciler interprets
// it, dispatching on (Collection, Action).
type SyncItem struct {
	ID            string          `json:"id"`
	SchemaVersion int             `json:"schema_version"`
	Action        SyncAction      `json:"action"`
	Collection    string          `json:"collection"`
	Payload       json.RawMessage `json:"payload"`
	EnqueuedAt    time.Time       `json:"enqueued_at"`
	RetryCount    int             `json:"retry_count"`
}
