package reactive

// Signal is a mutable reactive cell. Reading it through Get while any
// computation executes subscribes that computation; writing it
// schedules every subscriber for the next flush.
type Signal[T any] struct {
	rt       *Runtime
	id       NodeID
	value    T
	disposed bool
}

// NewSignal creates a signal holding initial. No graph entry exists
// until the first tracked read.
func NewSignal[T any](rt *Runtime, initial T) *Signal[T] {
	s := &Signal[T]{rt: rt, id: newNodeID(), value: initial}
	rt.adopt(s)
	return s
}

// ID returns the signal's node identity.
func (s *Signal[T]) ID() NodeID { return s.id }

// Get returns the current value, attributing the read to the active
// observer if one is executing.
func (s *Signal[T]) Get() T {
	s.mustLive("Get")
	s.rt.trackDependency(s.id)
	return s.value
}

// Peek returns the current value without subscribing. The explicit
// escape hatch for reading inside a computation that should not react
// to this signal.
func (s *Signal[T]) Peek() T {
	s.mustLive("Peek")
	return s.value
}

// Set stores a new value and notifies every subscriber. Notification is
// unconditional: writing a value equal to the current one still
// schedules subscribers. No value-equality short circuit exists, so
// re-run counts stay predictable for the embedder.
//
// Outside a batch the write triggers a synchronous flush once
// notification finishes (unless the runtime is in manual-flush mode);
// inside a batch the flush waits for the outermost EndBatch.
func (s *Signal[T]) Set(v T) {
	s.mustLive("Set")
	s.value = v
	s.rt.notifyChange(s.id)
	s.rt.maybeFlush()
}

// Update sets the value computed from the current one. The read of the
// current value is untracked.
func (s *Signal[T]) Update(fn func(T) T) {
	s.mustLive("Update")
	s.Set(fn(s.value))
}

// Dispose removes the signal and all of its edges from the runtime.
// Idempotent. Any Get/Set after disposal panics.
func (s *Signal[T]) Dispose() {
	if s.disposed {
		return
	}
	s.disposed = true
	s.rt.removeNode(s.id)
}

func (s *Signal[T]) mustLive(op string) {
	if s.disposed {
		panic("reactive: " + op + " on disposed Signal")
	}
}
