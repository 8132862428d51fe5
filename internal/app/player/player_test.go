package player

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkaji/scenebox/internal/app/store"
	"github.com/mkaji/scenebox/internal/app/world"
	"github.com/mkaji/scenebox/internal/domain/scene"
)

// fakeEnv records placement and clear commands. When blockCh is set,
// PlaceContent records the call and then waits until the channel closes.
type fakeEnv struct {
	mu         sync.Mutex
	placeCalls []string
	clearCalls []scene.Region
	placeErr   error
	blockCh    chan struct{}
}

func (f *fakeEnv) PlaceContent(ctx context.Context, sc *scene.Scene, opts world.PlaceOptions) error {
	f.mu.Lock()
	f.placeCalls = append(f.placeCalls, sc.Name)
	block := f.blockCh
	err := f.placeErr
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	return err
}

func (f *fakeEnv) ClearRegion(ctx context.Context, region scene.Region) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clearCalls = append(f.clearCalls, region)
	return nil
}

func (f *fakeEnv) placed() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.placeCalls...)
}

func (f *fakeEnv) cleared() []scene.Region {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]scene.Region(nil), f.clearCalls...)
}

func testStore(names ...string) *store.Store {
	scenes := make(map[string]*scene.Scene, len(names))
	for i, n := range names {
		scenes[n] = &scene.Scene{
			Name:  n,
			Items: 1,
			Bounds: scene.Region{
				Center: scene.Vec3{X: float64(i) * 10},
				Extent: scene.Vec3{X: 2, Y: 2, Z: 2},
			},
		}
	}
	s := store.New()
	s.Populate(scenes)
	return s
}

func waitForIdle(t *testing.T, p *Player) {
	t.Helper()
	assert.Eventually(t, func() bool { return !p.Loading() },
		2*time.Second, 10*time.Millisecond, "placement did not finish")
}

func TestPlayer_Load(t *testing.T) {
	env := &fakeEnv{}
	p := New(testStore("plaza"), env)

	require.NoError(t, p.Load("plaza"))
	waitForIdle(t, p)

	assert.Equal(t, []string{"plaza"}, env.placed())
	assert.Equal(t, "plaza", p.CurrentScene())

	region, ok := p.LiveRegion()
	require.True(t, ok)
	assert.Equal(t, scene.Vec3{X: 2, Y: 2, Z: 2}, region.Extent)
}

func TestPlayer_Load_UnknownScene(t *testing.T) {
	env := &fakeEnv{}
	p := New(testStore("plaza"), env)

	err := p.Load("atlantis")
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrSceneNotFound))
	assert.Empty(t, env.placed())
	assert.False(t, p.Loading())
}

func TestPlayer_Load_DropsWhileInFlight(t *testing.T) {
	env := &fakeEnv{blockCh: make(chan struct{})}
	p := New(testStore("plaza", "garden"), env)

	require.NoError(t, p.Load("plaza"))
	assert.Eventually(t, func() bool { return len(env.placed()) == 1 },
		2*time.Second, 10*time.Millisecond)

	// Second request arrives while the first placement is still running.
	// It is dropped, not queued.
	require.NoError(t, p.Load("garden"))

	close(env.blockCh)
	waitForIdle(t, p)

	assert.Equal(t, []string{"plaza"}, env.placed())
	assert.Equal(t, "plaza", p.CurrentScene())
}

func TestPlayer_Load_ReplacesCurrent(t *testing.T) {
	env := &fakeEnv{}
	p := New(testStore("plaza", "garden"), env)

	require.NoError(t, p.Load("plaza"))
	waitForIdle(t, p)
	plazaRegion, ok := p.LiveRegion()
	require.True(t, ok)

	require.NoError(t, p.Load("garden"))
	waitForIdle(t, p)

	// The old scene's region was cleared before the new placement.
	require.Len(t, env.cleared(), 1)
	assert.Equal(t, plazaRegion, env.cleared()[0])
	assert.Equal(t, []string{"plaza", "garden"}, env.placed())
	assert.Equal(t, "garden", p.CurrentScene())
}

func TestPlayer_Load_PlacementFailure(t *testing.T) {
	env := &fakeEnv{placeErr: errors.New("agent unreachable")}
	p := New(testStore("plaza"), env)

	require.NoError(t, p.Load("plaza"))
	waitForIdle(t, p)

	// Nothing is tracked, so there is nothing to unload later.
	_, ok := p.LiveRegion()
	assert.False(t, ok)
	assert.Empty(t, p.CurrentScene())

	p.Unload()
	assert.Empty(t, env.cleared())

	// The guard was released; a later load goes through.
	env.mu.Lock()
	env.placeErr = nil
	env.mu.Unlock()

	require.NoError(t, p.Load("plaza"))
	waitForIdle(t, p)
	assert.Equal(t, "plaza", p.CurrentScene())
}

func TestPlayer_Unload_NoopWhenEmpty(t *testing.T) {
	env := &fakeEnv{}
	p := New(testStore("plaza"), env)

	p.Unload()
	p.Unload()

	assert.Empty(t, env.cleared())
}

func TestPlayer_Unload(t *testing.T) {
	env := &fakeEnv{}
	p := New(testStore("plaza"), env)

	require.NoError(t, p.Load("plaza"))
	waitForIdle(t, p)
	region, ok := p.LiveRegion()
	require.True(t, ok)

	p.Unload()

	require.Len(t, env.cleared(), 1)
	assert.Equal(t, region, env.cleared()[0])
	assert.Empty(t, p.CurrentScene())
	_, ok = p.LiveRegion()
	assert.False(t, ok)

	// Second unload has nothing left to clear.
	p.Unload()
	assert.Len(t, env.cleared(), 1)
}

func TestPlayer_Events(t *testing.T) {
	env := &fakeEnv{}
	p := New(testStore("plaza"), env)

	require.NoError(t, p.Load("plaza"))
	waitForIdle(t, p)
	p.Unload()

	var got []EventType
	for len(got) < 2 {
		select {
		case e := <-p.Events():
			got = append(got, e.Type)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for events, got %v", got)
		}
	}

	assert.Equal(t, []EventType{EventSceneLoaded, EventSceneUnloaded}, got)
}
