package executor

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bshell-sh/bshell/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRuntime is a scriptable Runtime for tests. Spawn queues the new
// handle as the next completion unless completions were preset, so
// sequential waits resolve immediately by default.
type fakeRuntime struct {
	nextHandle  Handle
	spawned     [][]string
	events      []string
	completions []Handle
	sleeps      []time.Duration
	spawnErrs   map[string]error
}

func newFakeRuntime() *fakeRuntime {
	return &fakeRuntime{
		spawnErrs: map[string]error{},
	}
}

func (r *fakeRuntime) Spawn(argv []string) (Handle, error) {
	if err, ok := r.spawnErrs[argv[0]]; ok {
		return 0, err
	}
	r.nextHandle++
	r.spawned = append(r.spawned, argv)
	r.completions = append(r.completions, r.nextHandle)
	r.events = append(r.events, fmt.Sprintf("spawn %s", argv[0]))
	return r.nextHandle, nil
}

func (r *fakeRuntime) JoinAny() (Handle, error) {
	if len(r.completions) == 0 {
		return 0, ErrNoChildren
	}
	handle := r.completions[0]
	r.completions = r.completions[1:]
	r.events = append(r.events, fmt.Sprintf("join %d", handle))
	return handle, nil
}

func (r *fakeRuntime) Sleep(d time.Duration) {
	r.sleeps = append(r.sleeps, d)
}

func TestSynchronizerDiscard(t *testing.T) {
	t.Run("returns when the target completes", func(t *testing.T) {
		rt := newFakeRuntime()
		rt.completions = []Handle{3}
		s := NewSynchronizer(rt, config.JoinPolicyDiscard, 10*time.Millisecond, nil)

		require.NoError(t, s.WaitFor(3))
		assert.Empty(t, rt.sleeps)
	})

	t.Run("discards unrelated completions and pauses between retries", func(t *testing.T) {
		rt := newFakeRuntime()
		rt.completions = []Handle{7, 9, 3}
		s := NewSynchronizer(rt, config.JoinPolicyDiscard, 10*time.Millisecond, nil)

		require.NoError(t, s.WaitFor(3))
		assert.Equal(t, []time.Duration{10 * time.Millisecond, 10 * time.Millisecond}, rt.sleeps)
	})

	t.Run("a discarded completion is lost forever", func(t *testing.T) {
		rt := newFakeRuntime()
		rt.completions = []Handle{7, 3}
		s := NewSynchronizer(rt, config.JoinPolicyDiscard, 10*time.Millisecond, nil)

		require.NoError(t, s.WaitFor(3))

		// Unit 7 did finish, but its completion was consumed and dropped
		// during the wait for 3; waiting for it now can never succeed.
		err := s.WaitFor(7)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNoChildren)
	})

	t.Run("propagates join failures", func(t *testing.T) {
		rt := newFakeRuntime()
		s := NewSynchronizer(rt, config.JoinPolicyDiscard, 10*time.Millisecond, nil)

		err := s.WaitFor(1)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNoChildren)
	})
}

func TestSynchronizerRegistry(t *testing.T) {
	t.Run("caches unrelated completions instead of dropping them", func(t *testing.T) {
		rt := newFakeRuntime()
		rt.completions = []Handle{7, 3}
		s := NewSynchronizer(rt, config.JoinPolicyRegistry, 10*time.Millisecond, nil)

		require.NoError(t, s.WaitFor(3))

		// Unit 7's completion was cached; this wait resolves without
		// touching the runtime again.
		joinsBefore := len(rt.events)
		require.NoError(t, s.WaitFor(7))
		assert.Len(t, rt.events, joinsBefore)
	})

	t.Run("does not sleep between joins", func(t *testing.T) {
		rt := newFakeRuntime()
		rt.completions = []Handle{5, 6, 2}
		s := NewSynchronizer(rt, config.JoinPolicyRegistry, 10*time.Millisecond, nil)

		require.NoError(t, s.WaitFor(2))
		assert.Empty(t, rt.sleeps)
	})

	t.Run("cached completion is consumed once", func(t *testing.T) {
		rt := newFakeRuntime()
		rt.completions = []Handle{7, 3}
		s := NewSynchronizer(rt, config.JoinPolicyRegistry, 10*time.Millisecond, nil)

		require.NoError(t, s.WaitFor(3))
		require.NoError(t, s.WaitFor(7))

		err := s.WaitFor(7)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNoChildren)
	})
}

func TestSynchronizerWrapsTargetInError(t *testing.T) {
	rt := newFakeRuntime()
	s := NewSynchronizer(rt, config.JoinPolicyDiscard, time.Millisecond, nil)

	err := s.WaitFor(42)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "42")
	assert.True(t, errors.Is(err, ErrNoChildren))
}
