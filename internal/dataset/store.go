package dataset

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// StoreStats counts cache activity since the store was created.
type StoreStats struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Entries int   `json:"entries"`
}

// Store memoizes cleaned datasets by their source path string. A path that
// was loaded before is served from memory; a new path string misses and
// loads. Invalidation is always explicit: Invalidate, InvalidateAll, or a
// changed path. Datasets are immutable once stored, so readers share them
// without copying.
type Store struct {
	loader *Loader
	logger *slog.Logger

	mu    sync.Mutex
	cache map[string]*Dataset

	hits   atomic.Int64
	misses atomic.Int64
}

// NewStore creates a store around loader.
func NewStore(loader *Loader, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		loader: loader,
		logger: logger,
		cache:  make(map[string]*Dataset),
	}
}

// Get returns the memoized dataset for path, loading it on a miss.
// Loads are serialized; a load failure is not cached, so the next Get
// retries after the user corrects the input.
func (s *Store) Get(ctx context.Context, path string) (*Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ds, ok := s.cache[path]; ok {
		s.hits.Add(1)
		return ds, nil
	}
	s.misses.Add(1)

	ds, err := s.loader.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	s.cache[path] = ds
	return ds, nil
}

// Peek returns the memoized dataset for path without loading.
func (s *Store) Peek(path string) (*Dataset, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ds, ok := s.cache[path]
	return ds, ok
}

// Invalidate drops the memo for path. Returns true when an entry was
// present. The next Get re-reads the file.
func (s *Store) Invalidate(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.cache[path]
	delete(s.cache, path)
	if ok {
		s.logger.Debug("Invalidated dataset cache entry", slog.String("path", path))
	}
	return ok
}

// InvalidateAll empties the cache and returns how many entries were dropped.
func (s *Store) InvalidateAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.cache)
	s.cache = make(map[string]*Dataset)
	return n
}

// Stats reports cache counters for health and metrics endpoints.
func (s *Store) Stats() StoreStats {
	s.mu.Lock()
	entries := len(s.cache)
	s.mu.Unlock()
	return StoreStats{
		Hits:    s.hits.Load(),
		Misses:  s.misses.Load(),
		Entries: entries,
	}
}
