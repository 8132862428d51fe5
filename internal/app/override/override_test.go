package override

import (
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkaji/scenebox/internal/app/rotation"
	"github.com/mkaji/scenebox/internal/domain/playlist"
)

type fakeSched struct {
	mu          sync.Mutex
	interval    time.Duration
	lastFiredAt time.Time
	pauses      int
	resumes     []time.Duration
}

func (f *fakeSched) Pause() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pauses++
}

func (f *fakeSched) Resume(afterDelay time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resumes = append(f.resumes, afterDelay)
}

func (f *fakeSched) Interval() time.Duration { return f.interval }

func (f *fakeSched) LastFiredAt() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastFiredAt
}

func (f *fakeSched) pauseCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pauses
}

func (f *fakeSched) resumeArgs() []time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]time.Duration(nil), f.resumes...)
}

type recordingLoader struct {
	mu    sync.Mutex
	names []string
	times []time.Time
	err   error
}

func (l *recordingLoader) Load(name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.names = append(l.names, name)
	l.times = append(l.times, time.Now())
	return l.err
}

func (l *recordingLoader) loaded() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.names...)
}

func (l *recordingLoader) loadTimes() []time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]time.Time(nil), l.times...)
}

func TestPlayer_Play(t *testing.T) {
	sched := &fakeSched{interval: time.Minute, lastFiredAt: time.Now()}
	loader := &recordingLoader{}
	p := New(sched, loader)
	defer p.Close()

	require.NoError(t, p.Play("special", 200*time.Millisecond))

	assert.True(t, p.Active())
	assert.Equal(t, "special", p.Scene())
	assert.Equal(t, 1, sched.pauseCount())
	assert.Equal(t, []string{"special"}, loader.loaded())

	// The window closes on its own and hands control back.
	assert.Eventually(t, func() bool { return !p.Active() },
		2*time.Second, 25*time.Millisecond, "override window never closed")
	assert.Len(t, sched.resumeArgs(), 1)
	assert.Empty(t, p.Scene())
}

func TestPlayer_Play_ResumeWithRemaining(t *testing.T) {
	// Rotation fired 15s ago on a 60s interval; after the override the
	// next fire is due in roughly 45s.
	sched := &fakeSched{
		interval:    60 * time.Second,
		lastFiredAt: time.Now().Add(-15 * time.Second),
	}
	loader := &recordingLoader{}
	p := New(sched, loader)
	defer p.Close()

	require.NoError(t, p.Play("special", 200*time.Millisecond))

	assert.Eventually(t, func() bool { return len(sched.resumeArgs()) == 1 },
		2*time.Second, 25*time.Millisecond, "rotation was never resumed")

	remaining := sched.resumeArgs()[0]
	assert.Greater(t, remaining, 43*time.Second)
	assert.Less(t, remaining, 45*time.Second)
}

func TestPlayer_Play_IntervalAlreadyElapsed(t *testing.T) {
	// The held interval ran out during the override window; the resume
	// delay goes non-positive and rotation fires immediately.
	sched := &fakeSched{
		interval:    60 * time.Second,
		lastFiredAt: time.Now().Add(-70 * time.Second),
	}
	loader := &recordingLoader{}
	p := New(sched, loader)
	defer p.Close()

	require.NoError(t, p.Play("special", 200*time.Millisecond))

	assert.Eventually(t, func() bool { return len(sched.resumeArgs()) == 1 },
		2*time.Second, 25*time.Millisecond)
	assert.LessOrEqual(t, sched.resumeArgs()[0], time.Duration(0))
}

func TestPlayer_Play_DropsWhileActive(t *testing.T) {
	sched := &fakeSched{interval: time.Minute, lastFiredAt: time.Now()}
	loader := &recordingLoader{}
	p := New(sched, loader)
	defer p.Close()

	require.NoError(t, p.Play("first", 300*time.Millisecond))

	err := p.Play("second", 300*time.Millisecond)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOverrideActive))

	// The open window is untouched: no extra pause, no extra load, and it
	// still closes on the original schedule.
	assert.Equal(t, 1, sched.pauseCount())
	assert.Equal(t, []string{"first"}, loader.loaded())

	assert.Eventually(t, func() bool { return !p.Active() },
		2*time.Second, 25*time.Millisecond)
	assert.Len(t, sched.resumeArgs(), 1)
}

func TestPlayer_Play_LoadFailureKeepsWindow(t *testing.T) {
	sched := &fakeSched{interval: time.Minute, lastFiredAt: time.Now()}
	loader := &recordingLoader{err: errors.New("placement failed")}
	p := New(sched, loader)
	defer p.Close()

	require.NoError(t, p.Play("special", 200*time.Millisecond))
	assert.True(t, p.Active(), "load failure must not cancel the window")

	assert.Eventually(t, func() bool { return len(sched.resumeArgs()) == 1 },
		2*time.Second, 25*time.Millisecond, "window did not run to its end")
}

func TestPlayer_Close(t *testing.T) {
	sched := &fakeSched{interval: time.Minute, lastFiredAt: time.Now()}
	loader := &recordingLoader{}
	p := New(sched, loader)

	require.NoError(t, p.Play("special", 10*time.Second))
	p.Close()

	assert.False(t, p.Active())
	assert.Never(t, func() bool { return len(sched.resumeArgs()) > 0 },
		500*time.Millisecond, 50*time.Millisecond, "cancelled window must not resume rotation")
}

func TestPlayer_Events(t *testing.T) {
	sched := &fakeSched{interval: time.Minute, lastFiredAt: time.Now()}
	loader := &recordingLoader{}
	p := New(sched, loader)
	defer p.Close()

	require.NoError(t, p.Play("special", 200*time.Millisecond))

	select {
	case e := <-p.Events():
		assert.Equal(t, EventStarted, e.Type)
		assert.Equal(t, "special", e.Scene)
		assert.Equal(t, 200*time.Millisecond, e.Duration)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for started event")
	}

	select {
	case e := <-p.Events():
		assert.Equal(t, EventFinished, e.Type)
		assert.Equal(t, "special", e.Scene)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for finished event")
	}
}

func TestPlayer_PreservesRotationCadence(t *testing.T) {
	// End to end against the real scheduler: an override in the middle of
	// an interval must not shift when the next rotation fire happens.
	loader := &recordingLoader{}
	sched := rotation.New(playlist.Playlist{Names: []string{"a", "b"}}, 700*time.Millisecond, loader)
	defer sched.Pause()

	p := New(sched, loader)
	defer p.Close()

	start := time.Now()
	sched.Resume(0) // fires "a" immediately

	require.NoError(t, p.Play("special", 200*time.Millisecond))

	// Loads: "a" from rotation, "special" from the override, then "b"
	// once rotation gets the interval remainder back.
	assert.Eventually(t, func() bool { return len(loader.loaded()) >= 3 },
		3*time.Second, 25*time.Millisecond, "rotation never resumed after override")

	names := loader.loaded()
	assert.Equal(t, []string{"a", "special", "b"}, names[:3])

	// "b" lands one full interval after "a", override or not. Timer
	// resolution adds some slack on top of the 700ms.
	gap := loader.loadTimes()[2].Sub(start)
	assert.Greater(t, gap, 600*time.Millisecond)
	assert.Less(t, gap, 1300*time.Millisecond)
}
