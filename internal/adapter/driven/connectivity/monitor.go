// Package connectivity tracks online/offline state for the application.
//
// A server process has no single "am I online" signal the way a browser
// does, so the monitor derives state from transport outcomes: the remote
// client reports every call result here, and while offline the sync service
// issues a periodic lightweight ping whose outcome flows through the same
// path. Subscribers are notified only on state transitions.
package connectivity

import (
	"log/slog"
	"sync"

	"github.com/fittrack-app/fittrack/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ConnectivityMonitor = (*Monitor)(nil)

// Monitor is the production ConnectivityMonitor implementation. It also
// satisfies the remote client's StatusReporter interface.
type Monitor struct {
	mu     sync.Mutex
	online bool
	nextID int
	subs   map[int]func(online bool)
}

// New creates a Monitor with the given initial state. Most callers start
// offline and let the first successful remote call flip the state.
func New(initialOnline bool) *Monitor {
	return &Monitor{
		online: initialOnline,
		subs:   make(map[int]func(bool)),
	}
}

// Online reports the last observed connectivity state.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Subscribe registers fn for transition notifications and returns the
// matching unsubscribe function. Unsubscribing twice is harmless.
func (m *Monitor) Subscribe(fn func(online bool)) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

// SetOnline records a state observation. Subscribers fire only when the
// state actually changed, outside the monitor's lock so a callback may call
// back into the monitor.
func (m *Monitor) SetOnline(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	fns := make([]func(bool), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	slog.Info("connectivity changed", "online", online)
	for _, fn := range fns {
		fn(online)
	}
}

// ReportSuccess records a successful remote call.
func (m *Monitor) ReportSuccess() { m.SetOnline(true) }

// ReportFailure records a failed remote call.
func (m *Monitor) ReportFailure() { m.SetOnline(false) }
