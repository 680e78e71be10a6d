package reactive

// Tier decides when an effect runs relative to other effects within one
// flush. It is opaque to dependency tracking.
type Tier uint8

const (
	// TierSync effects run first during a flush, in queue order.
	// Layout-style work belongs here.
	TierSync Tier = iota
	// TierDeferred effects run after every pending sync-tier effect,
	// in queue order.
	TierDeferred
)

// EffectOption configures an Effect at construction.
type EffectOption func(*Effect)

// WithTier assigns the effect's timing tier.
func WithTier(t Tier) EffectOption {
	return func(e *Effect) { e.timing = t }
}

// Effect is an eager reactive computation run for its side effects. The
// body executes once at construction and again, during a flush,
// whenever any signal or memo it read during its previous run changes.
// Dependencies are re-tracked from scratch on every run.
//
// The effect handle's owner decides its lifetime: nothing disposes an
// effect automatically, and a forgotten live effect keeps re-running.
type Effect struct {
	rt       *Runtime
	id       NodeID
	body     func() error
	cleanups []func()
	timing   Tier
	disposed bool
}

// NewEffect creates the effect and runs its body immediately and
// synchronously, establishing the first dependency set.
func NewEffect(rt *Runtime, body func() error, opts ...EffectOption) *Effect {
	e := &Effect{rt: rt, id: newNodeID(), body: body}
	for _, opt := range opts {
		opt(e)
	}
	rt.register(e.id, e)
	rt.adopt(e)
	e.execute()
	return e
}

// ID returns the effect's node identity.
func (e *Effect) ID() NodeID { return e.id }

// OnCleanup registers fn to run before the effect's next re-run and on
// disposal. Cleanups run in registration order, once each.
func (e *Effect) OnCleanup(fn func()) {
	if e.disposed {
		panic("reactive: OnCleanup on disposed Effect")
	}
	e.cleanups = append(e.cleanups, fn)
}

// Dispose tears the effect down: cleanups run, every edge is removed,
// any pending queue entry is dropped, and the body never runs again.
// Idempotent.
func (e *Effect) Dispose() {
	if e.disposed {
		return
	}
	e.disposed = true
	e.runCleanups()
	e.rt.removeNode(e.id)
}

// execute is one run of the body. The order is mandatory: cleanups,
// then clearDependencies, then the tracked body, so the reads of this
// run repopulate exactly the current dependency set.
func (e *Effect) execute() {
	if e.disposed {
		return
	}
	e.runCleanups()
	e.rt.clearDependencies(e.id)
	if err := e.rt.withObserver(e.id, kindEffect, e.body); err != nil {
		e.rt.raise(err)
	}
}

func (e *Effect) runCleanups() {
	cleanups := e.cleanups
	e.cleanups = nil
	for _, fn := range cleanups {
		fn()
	}
}

// notified implements computation. Effects have no schedule-time work.
func (e *Effect) notified() {}

// resume implements computation: the flush re-runs the body.
func (e *Effect) resume() { e.execute() }

func (e *Effect) tier() Tier { return e.timing }
