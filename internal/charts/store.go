package charts

import (
	"context"
	"sync"
	"time"

	"prediction-dashboard-service/internal/analytics"
)

// Snapshot is the latest series of one chart.
type Snapshot struct {
	Series    analytics.Series `json:"series"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// Store keeps the latest replaced series per chart. It is written by the
// refresher and read concurrently by the HTTP API.
type Store struct {
	mu     sync.RWMutex
	latest map[analytics.ChartName]Snapshot
	now    func() time.Time
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		latest: make(map[analytics.ChartName]Snapshot),
		now:    time.Now,
	}
}

// Handle returns the chart handle that writes name into the store.
func (s *Store) Handle(name analytics.ChartName) analytics.ChartHandle {
	return analytics.ChartHandleFunc(func(_ context.Context, series analytics.Series) error {
		s.put(name, series)
		return nil
	})
}

func (s *Store) put(name analytics.ChartName, series analytics.Series) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest[name] = Snapshot{Series: series, UpdatedAt: s.now()}
}

// Get returns the latest snapshot of name.
func (s *Store) Get(name analytics.ChartName) (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.latest[name]
	return snap, ok
}

// All returns a copy of every stored snapshot.
func (s *Store) All() map[analytics.ChartName]Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[analytics.ChartName]Snapshot, len(s.latest))
	for k, v := range s.latest {
		out[k] = v
	}
	return out
}
