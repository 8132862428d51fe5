// Package store provides the in-memory scene store.
package store

import (
	"sort"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/mkaji/scenebox/internal/domain/scene"
)

// ErrSceneNotFound is returned when a requested scene name is not loaded.
var ErrSceneNotFound = errors.New("scene not found")

// Store holds the loaded scene snapshots keyed by name with thread-safe
// access. It is populated once at startup and read-only afterwards.
type Store struct {
	mu     sync.RWMutex
	scenes map[string]*scene.Scene
}

// New creates an empty scene store.
func New() *Store {
	return &Store{
		scenes: make(map[string]*scene.Scene),
	}
}

// Populate replaces the store contents with the given scenes.
func (s *Store) Populate(scenes map[string]*scene.Scene) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.scenes = make(map[string]*scene.Scene, len(scenes))
	for name, sc := range scenes {
		s.scenes[name] = sc
	}
}

// Get retrieves a scene by name.
func (s *Store) Get(name string) (*scene.Scene, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sc, ok := s.scenes[name]
	if !ok {
		return nil, ErrSceneNotFound
	}
	return sc, nil
}

// Has reports whether a scene with the given name is loaded.
func (s *Store) Has(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.scenes[name]
	return ok
}

// Names returns all loaded scene names in sorted order.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.scenes))
	for name := range s.scenes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns all loaded scenes in name order.
func (s *Store) All() []*scene.Scene {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.scenes))
	for name := range s.scenes {
		names = append(names, name)
	}
	sort.Strings(names)

	result := make([]*scene.Scene, 0, len(names))
	for _, name := range names {
		result = append(result, s.scenes[name])
	}
	return result
}

// Count returns the number of loaded scenes.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.scenes)
}
