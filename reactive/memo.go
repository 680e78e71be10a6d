package reactive

// Memo is a lazy cached computation. Towards its own subscribers it
// behaves like a signal; while computing it behaves like an observer,
// tracking its own dependencies fresh on every recomputation.
//
// A dependency change only marks the memo dirty (and contagiously
// dirties everything reading it); the recomputation itself is deferred
// until the next Get or Peek. A dirty memo nobody reads never
// recomputes.
type Memo[T any] struct {
	rt       *Runtime
	id       NodeID
	body     func() (T, error)
	value    T
	dirty    bool
	disposed bool
}

// NewMemo creates the memo and computes its value once, eagerly, using
// the same observer protocol as an effect run.
func NewMemo[T any](rt *Runtime, body func() (T, error)) *Memo[T] {
	m := &Memo[T]{rt: rt, id: newNodeID(), body: body, dirty: true}
	rt.register(m.id, m)
	rt.adopt(m)
	m.recompute()
	return m
}

// ID returns the memo's node identity.
func (m *Memo[T]) ID() NodeID { return m.id }

// Get returns the memo's value, recomputing first if a dependency
// changed since the last computation. The edge from the memo to the
// calling observer is registered before the value resolves, so the
// caller subscribes even when the cached value is returned.
func (m *Memo[T]) Get() T {
	m.mustLive("Get")
	m.rt.trackDependency(m.id)
	if m.dirty {
		m.recompute()
	}
	return m.value
}

// Peek is Get without the subscription: same dirty-check and
// recomputation, no edge to the calling observer.
func (m *Memo[T]) Peek() T {
	m.mustLive("Peek")
	if m.dirty {
		m.recompute()
	}
	return m.value
}

// Dispose removes the memo and all of its edges. Idempotent.
func (m *Memo[T]) Dispose() {
	if m.disposed {
		return
	}
	m.disposed = true
	m.rt.removeNode(m.id)
}

// recompute re-runs the body as an observer, clearing and
// re-establishing the memo's own dependency edges. On error the memo
// stays dirty and keeps its cached value; the error goes to the
// runtime's handler.
func (m *Memo[T]) recompute() {
	m.rt.clearDependencies(m.id)
	var next T
	err := m.rt.withObserver(m.id, kindMemo, func() error {
		v, err := m.body()
		if err != nil {
			return err
		}
		next = v
		return nil
	})
	if err != nil {
		m.rt.raise(err)
		return
	}
	m.value = next
	m.dirty = false
}

// notified implements computation: the dirty transition. Becoming dirty
// immediately notifies the memo's own subscribers, exactly like a
// signal write, even though no new value exists yet. Already-dirty
// memos stay silent; everything downstream is dirty already.
func (m *Memo[T]) notified() {
	if m.dirty {
		return
	}
	m.dirty = true
	m.rt.notifyChange(m.id)
}

// resume implements computation. The flush never recomputes a memo;
// dirtiness was already set and propagated when the memo was scheduled,
// so a drained memo entry has nothing left to do.
func (m *Memo[T]) resume() {}

func (m *Memo[T]) tier() Tier { return TierSync }

func (m *Memo[T]) mustLive(op string) {
	if m.disposed {
		panic("reactive: " + op + " on disposed Memo")
	}
}
