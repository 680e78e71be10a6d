package reactive_test

import (
	"testing"

	"github.com/reverie-systems/reverb/reactive"
	"github.com/stretchr/testify/assert"
)

// should keep every edge as a symmetric pair through arbitrary operation sequences
func TestSymmetricEdges(t *testing.T) {
	rt := reactive.NewRuntime()
	a := reactive.NewSignal(rt, 1)
	b := reactive.NewSignal(rt, 2)
	flag := reactive.NewSignal(rt, true)

	m := reactive.NewMemo(rt, func() (int, error) {
		if flag.Get() {
			return a.Get(), nil
		}
		return b.Get(), nil
	})
	e := reactive.NewEffect(rt, func() error {
		m.Get()
		return nil
	})

	check := func() {
		t.Helper()
		for _, id := range []reactive.NodeID{a.ID(), b.ID(), flag.ID(), m.ID(), e.ID()} {
			for _, sub := range rt.Subscribers(id) {
				assert.Contains(t, rt.Dependencies(sub), id)
			}
			for _, dep := range rt.Dependencies(id) {
				assert.Contains(t, rt.Subscribers(dep), id)
			}
		}
	}

	check()
	flag.Set(false)
	m.Get()
	check()
	b.Set(3)
	check()
	m.Dispose()
	check()
	e.Dispose()
	check()
	assert.Empty(t, rt.Subscribers(a.ID()))
	assert.Empty(t, rt.Subscribers(b.ID()))
	assert.Empty(t, rt.Subscribers(flag.ID()))
}

// should defer all re-runs to an explicit Flush in manual mode
func TestManualFlush(t *testing.T) {
	rt := reactive.NewRuntime(reactive.WithManualFlush())
	s := reactive.NewSignal(rt, 0)

	runs := 0
	reactive.NewEffect(rt, func() error {
		s.Get()
		runs++
		return nil
	})
	assert.Equal(t, 1, runs)

	s.Set(1)
	s.Set(2)
	assert.Equal(t, 1, runs)
	assert.Equal(t, 1, rt.PendingCount())

	rt.Flush()
	assert.Equal(t, 2, runs)
	assert.Equal(t, 0, rt.PendingCount())

	// The armed flag was cleared; a new write schedules a new flush.
	s.Set(3)
	assert.Equal(t, 1, rt.PendingCount())
	rt.Flush()
	assert.Equal(t, 3, runs)
}

// should leave memos dirty but unrecomputed in manual mode until read
func TestManualFlushMemoLaziness(t *testing.T) {
	rt := reactive.NewRuntime(reactive.WithManualFlush())
	s := reactive.NewSignal(rt, 1)

	computes := 0
	m := reactive.NewMemo(rt, func() (int, error) {
		computes++
		return s.Get() * 2, nil
	})
	assert.Equal(t, 1, computes)

	// Dirtiness propagates at write time, independent of flush timing.
	s.Set(5)
	assert.Equal(t, 1, computes)
	assert.Equal(t, 10, m.Get())
	assert.Equal(t, 2, computes)
}

// should nest PauseTracking/ResumeTracking pairs
func TestPauseTrackingNests(t *testing.T) {
	rt := reactive.NewRuntime()
	a := reactive.NewSignal(rt, 1)
	b := reactive.NewSignal(rt, 2)

	runs := 0
	reactive.NewEffect(rt, func() error {
		a.Get()
		rt.PauseTracking()
		rt.PauseTracking()
		b.Get()
		rt.ResumeTracking()
		b.Get() // still paused
		rt.ResumeTracking()
		runs++
		return nil
	})

	b.Set(3)
	assert.Equal(t, 1, runs)
	a.Set(2)
	assert.Equal(t, 2, runs)

	assert.Panics(t, func() { rt.ResumeTracking() })
}

// should reject unbalanced batch calls
func TestUnbalancedEndBatchPanics(t *testing.T) {
	rt := reactive.NewRuntime()
	assert.Panics(t, func() { rt.EndBatch() })
}

// should give each runtime an isolated graph and queue
func TestRuntimesAreIsolated(t *testing.T) {
	rt1 := reactive.NewRuntime()
	rt2 := reactive.NewRuntime()

	s1 := reactive.NewSignal(rt1, 1)
	s2 := reactive.NewSignal(rt2, 1)

	runs1, runs2 := 0, 0
	reactive.NewEffect(rt1, func() error {
		s1.Get()
		runs1++
		return nil
	})
	reactive.NewEffect(rt2, func() error {
		s2.Get()
		runs2++
		return nil
	})

	s1.Set(2)
	assert.Equal(t, 2, runs1)
	assert.Equal(t, 1, runs2)

	// IDs stay globally unique across runtimes.
	assert.NotEqual(t, s1.ID(), s2.ID())
}

// should allocate strictly increasing node ids
func TestNodeIDsMonotonic(t *testing.T) {
	rt := reactive.NewRuntime()
	a := reactive.NewSignal(rt, 0)
	b := reactive.NewSignal(rt, 0)
	c := reactive.NewSignal(rt, 0)
	assert.Less(t, a.ID(), b.ID())
	assert.Less(t, b.ID(), c.ID())
}
