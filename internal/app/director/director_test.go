package director

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkaji/scenebox/internal/app/override"
	"github.com/mkaji/scenebox/internal/app/rotation"
	"github.com/mkaji/scenebox/internal/app/store"
	"github.com/mkaji/scenebox/internal/infra/config"
	"github.com/mkaji/scenebox/internal/infra/scenefile"
)

func writeSceneFile(t *testing.T, dir, name string) {
	t.Helper()

	data := []byte{'S', 'B', 'X', '1', 1, 0}
	data = binary.BigEndian.AppendUint16(data, 1)
	for _, f := range []float32{0, 0, 0, 2, 2, 2} { // position, then size
		data = binary.BigEndian.AppendUint32(data, math.Float32bits(f))
	}

	require.NoError(t, os.WriteFile(filepath.Join(dir, name+scenefile.Ext), data, 0o644))
}

func testConfig(dir string, autoplay ...string) *config.Config {
	return &config.Config{
		Scenes: config.ScenesConfig{
			Directory:    dir,
			Autoplay:     autoplay,
			IntervalSecs: 60,
		},
		World: config.WorldConfig{
			Controller: config.ControllerConfig{Type: "sim"},
		},
		Notify: config.NotifyConfig{SendTimeoutMs: 500},
	}
}

func TestNew_LoadsScenesAndBuildsPlaylist(t *testing.T) {
	dir := t.TempDir()
	writeSceneFile(t, dir, "plaza")
	writeSceneFile(t, dir, "garden")

	d, err := New(testConfig(dir, "plaza", "garden", "ghost"))
	require.NoError(t, err)
	defer d.Stop()

	st := d.Status()
	assert.Equal(t, 2, st.SceneCount)
	assert.Equal(t, []string{"plaza", "garden"}, st.Playlist, "unknown names are dropped")
	assert.Equal(t, rotation.StateStopped, st.RotationState)
}

func TestNew_MissingSceneDirectory(t *testing.T) {
	d, err := New(testConfig("/no/such/directory", "plaza"))
	require.NoError(t, err, "a broken scene directory must not fail startup")
	defer d.Stop()

	d.Start()

	st := d.Status()
	assert.Equal(t, 0, st.SceneCount)
	assert.Empty(t, st.Playlist)
	assert.Equal(t, rotation.StateStopped, st.RotationState, "nothing to rotate")
}

func TestNew_UnknownControllerType(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.World.Controller.Type = "holodeck"

	_, err := New(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported controller type")
}

func TestDirector_StartStop(t *testing.T) {
	dir := t.TempDir()
	writeSceneFile(t, dir, "plaza")
	writeSceneFile(t, dir, "garden")

	d, err := New(testConfig(dir, "plaza", "garden"))
	require.NoError(t, err)

	d.Start()

	assert.Equal(t, rotation.StateRunning, d.Status().RotationState)
	assert.Eventually(t, func() bool { return d.Status().CurrentScene == "plaza" },
		2*time.Second, 25*time.Millisecond, "first rotation fire did not place a scene")

	d.Stop()

	select {
	case <-d.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("director did not report done after stop")
	}

	st := d.Status()
	assert.Equal(t, rotation.StateStopped, st.RotationState)
	assert.Empty(t, st.CurrentScene, "stop must clear the live scene")

	d.Stop() // second stop is a no-op
}

func TestDirector_Override(t *testing.T) {
	dir := t.TempDir()
	writeSceneFile(t, dir, "plaza")
	writeSceneFile(t, dir, "special")

	d, err := New(testConfig(dir, "plaza"))
	require.NoError(t, err)
	defer d.Stop()

	d.Start()
	assert.Eventually(t, func() bool { return d.Status().CurrentScene == "plaza" },
		2*time.Second, 25*time.Millisecond)

	err = d.Override("ghost", 300*time.Millisecond)
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrSceneNotFound))

	require.NoError(t, d.Override("special", 300*time.Millisecond))

	st := d.Status()
	assert.True(t, st.OverrideActive)
	assert.Equal(t, "special", st.OverrideScene)
	assert.Equal(t, rotation.StateStopped, st.RotationState, "override holds the rotation")

	err = d.Override("special", 300*time.Millisecond)
	assert.True(t, errors.Is(err, override.ErrOverrideActive))

	// The window closes and rotation picks up again on its own.
	assert.Eventually(t, func() bool {
		st := d.Status()
		return !st.OverrideActive && st.RotationState == rotation.StateRunning
	}, 3*time.Second, 25*time.Millisecond, "rotation was not handed back after the override")
}

func TestDirector_PauseResumeUnload(t *testing.T) {
	dir := t.TempDir()
	writeSceneFile(t, dir, "plaza")

	d, err := New(testConfig(dir, "plaza"))
	require.NoError(t, err)
	defer d.Stop()

	d.Start()
	assert.Eventually(t, func() bool { return d.Status().CurrentScene == "plaza" },
		2*time.Second, 25*time.Millisecond)

	d.PauseRotation()
	assert.Equal(t, rotation.StateStopped, d.Status().RotationState)

	d.UnloadScene()
	assert.Empty(t, d.Status().CurrentScene)

	d.ResumeRotation(0)
	assert.Equal(t, rotation.StateRunning, d.Status().RotationState)
	assert.Eventually(t, func() bool { return d.Status().CurrentScene == "plaza" },
		2*time.Second, 25*time.Millisecond, "resume did not fire immediately")
}
