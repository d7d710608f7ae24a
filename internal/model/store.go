package model

import (
	"log/slog"
	"sync"
	"time"
)

// Store holds the process-lifetime classifier state. It is populated once
// during startup and read-only afterwards; when loading fails the service
// runs degraded and scoring requests are rejected until a restart with a
// valid artifact.
type Store struct {
	mu       sync.RWMutex
	path     string
	clf      *Classifier
	loadedAt time.Time
}

// NewStore creates an empty store bound to an artifact path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the artifact from the configured path. Safe to call once at
// startup; a failed load leaves the store empty.
func (s *Store) Load() error {
	clf, err := Load(s.path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.clf = clf
	s.loadedAt = time.Now()
	s.mu.Unlock()

	slog.Info("Model loaded", "path", s.path, "version", clf.Version(), "folds", len(clf.Folds()))
	return nil
}

// Get returns the loaded classifier, or false when the store is degraded.
func (s *Store) Get() (*Classifier, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clf, s.clf != nil
}

// Ready reports whether the classifier capability is loaded.
func (s *Store) Ready() bool {
	_, ok := s.Get()
	return ok
}

// Stats returns store state for the health endpoint.
func (s *Store) Stats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"model_loaded": s.clf != nil,
		"path":         s.path,
	}
	if s.clf != nil {
		stats["version"] = s.clf.Version()
		stats["folds"] = len(s.clf.Folds())
		stats["loaded_at"] = s.loadedAt.Format(time.RFC3339)
	}
	return stats
}

// Shutdown clears the store during process teardown.
func (s *Store) Shutdown() {
	s.mu.Lock()
	s.clf = nil
	s.mu.Unlock()
}
