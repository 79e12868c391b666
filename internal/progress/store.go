// Package progress persists per-game lookup results between runs.
//
// The store maps a cache key ("title|system") to the enrichment entry last
// recorded for it. Presence of a key means both lookups already ran; the
// pipeline treats such items as cache hits. The file is rewritten wholesale on
// every Flush and guarded by an advisory lock so two scans cannot interleave
// checkpoints.
package progress

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/gofrs/flock"

	"backlogtimer/internal/backlog"
	"backlogtimer/internal/logging"
)

// ErrLocked is returned by Open when another process holds the store.
var ErrLocked = errors.New("progress file is in use by another scan")

// Store is a file-backed map from cache key to entry.
type Store struct {
	path    string
	logger  *slog.Logger
	lock    *flock.Flock
	mu      sync.RWMutex
	entries map[string]backlog.Entry
	dirty   bool
}

// Open loads the store at path and takes its lock. A missing file starts an
// empty store; an unreadable one is an error, since overwriting it at the next
// checkpoint would discard earlier progress.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if path == "" {
		return nil, errors.New("progress path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create progress directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire progress lock: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}

	s := &Store{
		path:    path,
		logger:  logging.NewComponentLogger(logger, "progress"),
		lock:    lock,
		entries: make(map[string]backlog.Entry),
	}
	if err := s.load(); err != nil {
		_ = lock.Unlock()
		return nil, err
	}
	s.logger.Debug("progress loaded",
		logging.String("path", path),
		logging.Int("entries", len(s.entries)))
	return s, nil
}

// Close releases the lock. Unflushed changes are discarded.
func (s *Store) Close() error {
	if s == nil || s.lock == nil {
		return nil
	}
	if err := s.lock.Unlock(); err != nil {
		return fmt.Errorf("release progress lock: %w", err)
	}
	return nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Get returns the entry for key.
func (s *Store) Get(key string) (backlog.Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[key]
	return entry, ok
}

// Put records entry under key in memory. Call Flush to persist.
func (s *Store) Put(key string, entry backlog.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry
	s.dirty = true
}

// Remove deletes key in memory and reports whether it was present.
func (s *Store) Remove(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[key]; !ok {
		return false
	}
	delete(s.entries, key)
	s.dirty = true
	return true
}

// Clear drops every entry in memory.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.entries) > 0 {
		s.entries = make(map[string]backlog.Entry)
		s.dirty = true
	}
}

// Count returns the number of entries.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Keys returns every key in sorted order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.entries))
	for key := range s.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Flush rewrites the whole file when anything changed since the last flush.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return nil
	}
	if err := s.save(); err != nil {
		return err
	}
	s.dirty = false
	return nil
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read progress file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, &s.entries); err != nil {
		return fmt.Errorf("parse progress file %s: %w", s.path, err)
	}
	if s.entries == nil {
		s.entries = make(map[string]backlog.Entry)
	}
	return nil
}

// save must be called with mu held.
func (s *Store) save() error {
	data, err := json.Marshal(s.entries)
	if err != nil {
		return fmt.Errorf("marshal progress: %w", err)
	}
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write progress: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename progress: %w", err)
	}
	return nil
}

// Reset deletes the progress file at path without opening it. A missing file
// is not an error.
func Reset(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove progress file: %w", err)
	}
	return nil
}
