package reactive_test

import (
	"testing"

	"github.com/reverie-systems/reverb/reactive"
	"github.com/stretchr/testify/assert"
)

// should hold and update a plain value
func TestSignalReadWrite(t *testing.T) {
	rt := reactive.NewRuntime()
	s := reactive.NewSignal(rt, 1)

	assert.Equal(t, 1, s.Get())
	s.Set(2)
	assert.Equal(t, 2, s.Get())
	s.Update(func(v int) int { return v * 10 })
	assert.Equal(t, 20, s.Get())
}

// should notify subscribers even when the written value is equal
func TestSetEqualValueStillNotifies(t *testing.T) {
	rt := reactive.NewRuntime()
	s := reactive.NewSignal(rt, 7)

	runs := 0
	reactive.NewEffect(rt, func() error {
		s.Get()
		runs++
		return nil
	})
	assert.Equal(t, 1, runs)

	s.Set(7)
	assert.Equal(t, 2, runs)
	s.Set(7)
	assert.Equal(t, 3, runs)
}

// should not create edges for untracked reads
func TestPeekCreatesNoEdge(t *testing.T) {
	rt := reactive.NewRuntime()
	a := reactive.NewSignal(rt, 1)
	b := reactive.NewSignal(rt, 2)

	runs := 0
	e := reactive.NewEffect(rt, func() error {
		a.Get()
		b.Peek()
		runs++
		return nil
	})
	assert.Equal(t, 1, runs)
	assert.Empty(t, rt.Subscribers(b.ID()))
	assert.Equal(t, []reactive.NodeID{a.ID()}, rt.Dependencies(e.ID()))

	b.Set(3)
	assert.Equal(t, 1, runs)
	a.Set(2)
	assert.Equal(t, 2, runs)
}

// should not create edges inside an Untrack section
func TestUntrackSuppressesTracking(t *testing.T) {
	rt := reactive.NewRuntime()
	a := reactive.NewSignal(rt, 1)
	b := reactive.NewSignal(rt, 2)

	runs := 0
	reactive.NewEffect(rt, func() error {
		a.Get()
		rt.Untrack(func() {
			b.Get()
		})
		runs++
		return nil
	})
	assert.Equal(t, 1, runs)

	b.Set(3)
	assert.Equal(t, 1, runs)
	a.Set(2)
	assert.Equal(t, 2, runs)
}

// should collapse repeated reads of one signal into a single edge
func TestRepeatedReadsSingleEdge(t *testing.T) {
	rt := reactive.NewRuntime()
	s := reactive.NewSignal(rt, 1)

	e := reactive.NewEffect(rt, func() error {
		s.Get()
		s.Get()
		s.Get()
		return nil
	})

	assert.Equal(t, []reactive.NodeID{e.ID()}, rt.Subscribers(s.ID()))
	assert.Equal(t, []reactive.NodeID{s.ID()}, rt.Dependencies(e.ID()))
}

// should panic on any use after disposal
func TestSignalUseAfterDisposePanics(t *testing.T) {
	rt := reactive.NewRuntime()
	s := reactive.NewSignal(rt, 1)

	s.Dispose()
	s.Dispose() // idempotent

	assert.Panics(t, func() { s.Get() })
	assert.Panics(t, func() { s.Set(2) })
	assert.Panics(t, func() { s.Peek() })
	assert.Panics(t, func() { s.Update(func(v int) int { return v }) })
}

// should remove every edge when a signal is disposed
func TestSignalDisposeRemovesEdges(t *testing.T) {
	rt := reactive.NewRuntime()
	s := reactive.NewSignal(rt, 1)

	e1 := reactive.NewEffect(rt, func() error { s.Get(); return nil })
	e2 := reactive.NewEffect(rt, func() error { s.Get(); return nil })
	assert.Len(t, rt.Subscribers(s.ID()), 2)

	s.Dispose()
	assert.Empty(t, rt.Subscribers(s.ID()))
	assert.Empty(t, rt.Dependencies(e1.ID()))
	assert.Empty(t, rt.Dependencies(e2.ID()))
}
