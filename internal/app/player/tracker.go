package player

import (
	"sync"

	"github.com/mkaji/scenebox/internal/domain/scene"
)

// RegionTracker remembers the region occupied by the currently placed
// scene. Whatever it holds is exactly what a later unload will clear.
type RegionTracker struct {
	mu   sync.RWMutex
	live *scene.Region
}

// Live returns the tracked region, or false when nothing is placed.
func (t *RegionTracker) Live() (scene.Region, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.live == nil {
		return scene.Region{}, false
	}
	return *t.live, true
}

// Set records the region occupied by a newly placed scene.
func (t *RegionTracker) Set(region scene.Region) {
	t.mu.Lock()
	defer t.mu.Unlock()

	r := region
	t.live = &r
}

// Clear forgets the tracked region.
func (t *RegionTracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.live = nil
}
