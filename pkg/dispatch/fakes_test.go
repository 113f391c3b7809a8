package dispatch

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"mercator-hq/dashgate/pkg/builder"
	"mercator-hq/dashgate/pkg/store"
)

// fakeStore serves fixed records and counts lookups.
type fakeStore struct {
	mu      sync.Mutex
	records map[string]*store.Record
	err     error
	calls   int
}

func newFakeStore(ids ...string) *fakeStore {
	s := &fakeStore{records: make(map[string]*store.Record)}
	for _, id := range ids {
		s.records[id] = &store.Record{
			ID:         id,
			Definition: []byte("title: " + id + "\nlayout: <h1>" + id + "</h1>\n"),
		}
	}
	return s
}

func (s *fakeStore) FindDefinition(ctx context.Context, id string) (*store.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	rec, ok := s.records[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return rec, nil
}

func (s *fakeStore) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// stubApp is a built handler that reports which build produced it.
type stubApp struct {
	tenant string
	serial int
}

func (a *stubApp) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintf(w, "%s#%d %s", a.tenant, a.serial, r.URL.Path)
}

// countingBuilder builds stubApps and counts builds.
type countingBuilder struct {
	mu      sync.Mutex
	builds  int
	err     error
	entered chan struct{}
	release chan struct{}
}

func (b *countingBuilder) Build(ctx context.Context, def *builder.Definition, cfg builder.ServerConfig) (http.Handler, error) {
	if b.entered != nil {
		b.entered <- struct{}{}
	}
	if b.release != nil {
		<-b.release
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return nil, b.err
	}
	b.builds++
	return &stubApp{tenant: cfg.TenantID, serial: b.builds}, nil
}

func (b *countingBuilder) Builds() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.builds
}

// fakeClock is a settable clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// recordingMetrics counts metric events.
type recordingMetrics struct {
	mu        sync.Mutex
	outcomes  map[string]int
	hits      int
	misses    int
	evictions map[string]int
	size      int
	builds    map[string]int
	storeErrs int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{
		outcomes:  make(map[string]int),
		evictions: make(map[string]int),
		builds:    make(map[string]int),
	}
}

func (m *recordingMetrics) RecordDispatch(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes[outcome]++
}

func (m *recordingMetrics) RecordCacheHit(string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hits++
}

func (m *recordingMetrics) RecordCacheMiss(string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.misses++
}

func (m *recordingMetrics) RecordCacheEviction(_, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evictions[reason]++
}

func (m *recordingMetrics) UpdateCacheSize(_ string, size int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.size = size
}

func (m *recordingMetrics) RecordBuild(_, result string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.builds[result]++
}

func (m *recordingMetrics) RecordStoreError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.storeErrs++
}
