package driven

// Notifier is informed after a successful sync drain so a UI can surface
// "N items synced". Calls are fire-and-forget; the core never depends on
// notification delivery succeeding.
type Notifier interface {
	SyncCompleted(count int)
}
