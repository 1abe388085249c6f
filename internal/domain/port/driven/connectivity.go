package driven

// ConnectivityMonitor is the driven port for online/offline state. The
// monitor only reports state; reacting to a transition (e.g. draining the
// sync queue) is the subscriber's responsibility.
type ConnectivityMonitor interface {
	// Online reports the last observed connectivity state.
	Online() bool

	// Subscribe registers fn to be called on every state transition with
	// the new state. Callbacks fire only on transitions, never on repeated
	// observations of the same state. The returned function unsubscribes.
	Subscribe(fn func(online bool)) (unsubscribe func())
}
