package application_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/fittrack-app/fittrack/internal/domain/model"
)

// --- Fake cache store ---

// fakeCache is an in-memory CacheStore. TTLs are honored so orchestrator
// expiry behavior can be exercised without a real backend.
type fakeCache struct {
	mu       sync.Mutex
	data     map[string][]byte
	expiry   map[string]time.Time
	degraded bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		data:   make(map[string][]byte),
		expiry: make(map[string]time.Time),
	}
}

func (c *fakeCache) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
	delete(c.expiry, key)
	if ttl > 0 {
		c.expiry[key] = time.Now().Add(ttl)
	}
	return nil
}

func (c *fakeCache) Get(_ context.Context, key string, dest any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.data[key]
	if !ok {
		return false
	}
	if exp, hasExp := c.expiry[key]; hasExp && time.Now().After(exp) {
		delete(c.data, key)
		delete(c.expiry, key)
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

func (c *fakeCache) Remove(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	delete(c.expiry, key)
	return nil
}

func (c *fakeCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string][]byte)
	c.expiry = make(map[string]time.Time)
	return nil
}

func (c *fakeCache) Degraded() bool { return c.degraded }

// --- Mock remote client ---

var errRemoteDown = errors.New("remote down")

// mockRemote records every call and can be configured to fail or delay.
type mockRemote struct {
	mu sync.Mutex

	profile  *model.UserProfile
	sessions []model.ActivitySession
	weights  []model.WeightEntry
	stats    *model.Stats

	failAll bool
	delay   time.Duration
	pingFn  func(ctx context.Context) error

	calls map[string]int

	savedProfiles []model.UserProfile
	addedSessions []model.ActivitySession
	addedWeights  []model.WeightEntry
}

func newMockRemote() *mockRemote {
	return &mockRemote{calls: make(map[string]int)}
}

// begin records the call and applies the configured delay/failure.
func (m *mockRemote) begin(name string) error {
	m.mu.Lock()
	m.calls[name]++
	failing := m.failAll
	delay := m.delay
	m.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if failing {
		return errRemoteDown
	}
	return nil
}

func (m *mockRemote) callCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

func (m *mockRemote) totalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.calls {
		total += n
	}
	return total
}

func (m *mockRemote) setFailAll(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failAll = fail
}

func (m *mockRemote) GetProfile(_ context.Context, _ string) (*model.UserProfile, error) {
	if err := m.begin("GetProfile"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.profile, nil
}

func (m *mockRemote) SaveProfile(_ context.Context, _ string, profile model.UserProfile) error {
	if err := m.begin("SaveProfile"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.savedProfiles = append(m.savedProfiles, profile)
	m.profile = &profile
	return nil
}

func (m *mockRemote) AddSession(_ context.Context, session model.ActivitySession) error {
	if err := m.begin("AddSession"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addedSessions = append(m.addedSessions, session)
	return nil
}

func (m *mockRemote) ListSessions(_ context.Context, _ string, _ int) ([]model.ActivitySession, error) {
	if err := m.begin("ListSessions"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions, nil
}

func (m *mockRemote) AddWeightEntry(_ context.Context, entry model.WeightEntry) error {
	if err := m.begin("AddWeightEntry"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addedWeights = append(m.addedWeights, entry)
	return nil
}

func (m *mockRemote) ListWeightHistory(_ context.Context, _ string, _ int) ([]model.WeightEntry, error) {
	if err := m.begin("ListWeightHistory"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.weights, nil
}

func (m *mockRemote) ComputeStats(_ context.Context, _ string) (*model.Stats, error) {
	if err := m.begin("ComputeStats"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stats == nil {
		return &model.Stats{}, nil
	}
	return m.stats, nil
}

func (m *mockRemote) Ping(ctx context.Context) error {
	if m.pingFn != nil {
		m.mu.Lock()
		m.calls["Ping"]++
		m.mu.Unlock()
		return m.pingFn(ctx)
	}
	return m.begin("Ping")
}

// --- Fake connectivity monitor ---

type fakeMonitor struct {
	mu     sync.Mutex
	online bool
	nextID int
	subs   map[int]func(bool)
}

func newFakeMonitor(online bool) *fakeMonitor {
	return &fakeMonitor{online: online, subs: make(map[int]func(bool))}
}

func (m *fakeMonitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

func (m *fakeMonitor) Subscribe(fn func(online bool)) func() {
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

// set changes the state and fires subscribers on transitions, mirroring the
// production monitor.
func (m *fakeMonitor) set(online bool) {
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
	for _, fn := range fns {
		fn(online)
	}
}

// --- Fake notifier ---

type fakeNotifier struct {
	mu     sync.Mutex
	counts []int
}

func (n *fakeNotifier) SyncCompleted(count int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.counts = append(n.counts, count)
}

func (n *fakeNotifier) recorded() []int {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]int, len(n.counts))
	copy(out, n.counts)
	return out
}
