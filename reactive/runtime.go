package reactive

import "fmt"

// computation is the runtime's view of a registered effect or memo.
// notified fires at schedule time, every time the node is scheduled;
// resume fires when the flush drains the node's entry.
type computation interface {
	notified()
	resume()
	tier() Tier
}

// Disposable is anything with reactive identity that can be torn down.
type Disposable interface {
	Dispose()
}

// Option configures a Runtime.
type Option func(*Runtime)

// OnError installs a handler for errors returned by effect and memo
// bodies. Without a handler such errors panic, on the grounds that an
// unobserved failure inside a reactive computation is a programming
// error.
func OnError(fn func(error)) Option {
	return func(r *Runtime) { r.onError = fn }
}

// WithManualFlush disables the automatic flush that normally runs when
// a write happens outside any batch. Embedders that own their own
// scheduling loop call Flush themselves after a batch of writes.
func WithManualFlush() Option {
	return func(r *Runtime) { r.manualFlush = true }
}

// Runtime is one reactive execution context: a dependency graph, an
// observer stack and a pending-update queue. Each logical owner (a
// goroutine, a session, a test) gets its own Runtime; a Runtime is
// single-owner and does no locking.
type Runtime struct {
	graph        *graph
	queue        *updateQueue
	computations map[NodeID]computation

	observers  []observerFrame
	pauseDepth int

	batchDepth int
	armed      bool
	flushing   bool

	manualFlush bool
	onError     func(error)

	scope *Scope
}

// NewRuntime creates an empty reactive context.
func NewRuntime(opts ...Option) *Runtime {
	r := &Runtime{
		graph:        newGraph(),
		queue:        newUpdateQueue(),
		computations: map[NodeID]computation{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// currentObserver returns the top of the observer stack, if any
// computation is executing.
func (r *Runtime) currentObserver() (observerFrame, bool) {
	if len(r.observers) == 0 {
		return observerFrame{}, false
	}
	return r.observers[len(r.observers)-1], true
}

// withObserver brackets fn between a push and a pop of the observer
// stack. The pop is deferred so the stack unwinds correctly even when
// fn panics; a corrupted stack would misattribute every later read.
func (r *Runtime) withObserver(id NodeID, kind observerKind, fn func() error) error {
	r.observers = append(r.observers, observerFrame{id: id, kind: kind})
	defer func() {
		if len(r.observers) == 0 {
			panic("reactive: observer stack underflow")
		}
		r.observers = r.observers[:len(r.observers)-1]
	}()
	return fn()
}

// trackDependency attributes a read of id to the currently executing
// observer, if there is one and tracking is not paused. Repeated reads
// are collapsed by the graph.
func (r *Runtime) trackDependency(id NodeID) {
	if r.pauseDepth > 0 {
		return
	}
	top, ok := r.currentObserver()
	if !ok || top.id == id {
		return
	}
	if _, live := r.computations[top.id]; !live {
		// The observer disposed itself mid-run; reads after that point
		// must not resurrect edges for a dead node.
		return
	}
	r.graph.addEdge(id, top.id)
}

// notifyChange schedules every current subscriber of id. It runs
// nothing itself; it only populates the pending queue.
func (r *Runtime) notifyChange(id NodeID) {
	for _, sub := range r.graph.subscribers(id) {
		r.scheduleUpdate(sub)
	}
}

// scheduleUpdate queues a node for the next flush. The first node
// scheduled since the last drain arms the flush. Scheduling a clean
// memo flips it dirty, which cascades notification to the memo's own
// subscribers before anything recomputes.
//
// notified fires on every schedule, not just the one that enqueued.
// A queued memo can be read mid-batch, recomputing and going clean
// while its entry is still pending; a later write in the same batch
// must still flip it dirty. Already-dirty memos ignore the repeat.
func (r *Runtime) scheduleUpdate(id NodeID) {
	c, ok := r.computations[id]
	if !ok {
		panic(fmt.Sprintf("reactive: node %d is subscribed but has no registered computation", id))
	}
	if r.queue.push(id) {
		r.armed = true
	}
	c.notified()
}

// clearDependencies forgets every node id read during its previous run.
func (r *Runtime) clearDependencies(id NodeID) {
	r.graph.clearDependencies(id)
}

// removeNode tears id out of the runtime: edges, graph entry, pending
// queue entry and computation registration.
func (r *Runtime) removeNode(id NodeID) {
	r.graph.removeNode(id)
	r.queue.remove(id)
	delete(r.computations, id)
}

func (r *Runtime) register(id NodeID, c computation) {
	if _, ok := r.computations[id]; ok {
		panic(fmt.Sprintf("reactive: node %d registered twice", id))
	}
	r.computations[id] = c
}

// Flush drains the pending-update queue. Entries run in insertion
// order, deduplicated, with no topological stabilization: a node
// reachable from a write through two paths still runs once per batch,
// but nothing guarantees its inputs stabilized first beyond plain queue
// order. Sync-tier effects run before deferred-tier effects. Nodes
// scheduled while flushing join the same drain.
func (r *Runtime) Flush() {
	if r.flushing {
		return
	}
	r.flushing = true
	defer func() {
		r.flushing = false
		r.armed = false
	}()

	var deferred []NodeID
	for {
		id, ok := r.queue.pop()
		if !ok {
			if len(deferred) == 0 {
				return
			}
			due := deferred
			deferred = nil
			for _, id := range due {
				// A deferred entry may have been disposed by an
				// earlier run in this drain.
				if c, ok := r.computations[id]; ok {
					c.resume()
				}
			}
			continue
		}
		c, ok := r.computations[id]
		if !ok {
			panic(fmt.Sprintf("reactive: queued node %d has no registered computation", id))
		}
		if c.tier() == TierDeferred {
			deferred = append(deferred, id)
			continue
		}
		c.resume()
	}
}

// maybeFlush runs the armed flush when no batch is open. With manual
// flush the embedder drains explicitly.
func (r *Runtime) maybeFlush() {
	if r.manualFlush || r.batchDepth > 0 || r.flushing || !r.armed {
		return
	}
	r.Flush()
}

// StartBatch opens a batch: writes collapse into one flush that fires
// when the outermost batch ends.
func (r *Runtime) StartBatch() {
	r.batchDepth++
}

// EndBatch closes the innermost batch, flushing if it was the last one.
func (r *Runtime) EndBatch() {
	if r.batchDepth == 0 {
		panic("reactive: EndBatch without matching StartBatch")
	}
	r.batchDepth--
	if r.batchDepth == 0 {
		r.maybeFlush()
	}
}

// Batch runs fn inside a batch. Batches nest.
func (r *Runtime) Batch(fn func()) {
	r.StartBatch()
	defer r.EndBatch()
	fn()
}

// PauseTracking suppresses dependency attribution until the matching
// ResumeTracking. Pairs nest.
func (r *Runtime) PauseTracking() {
	r.pauseDepth++
}

// ResumeTracking undoes one PauseTracking.
func (r *Runtime) ResumeTracking() {
	if r.pauseDepth == 0 {
		panic("reactive: ResumeTracking without matching PauseTracking")
	}
	r.pauseDepth--
}

// Untrack runs fn with dependency tracking paused. Reads inside fn
// create no edges.
func (r *Runtime) Untrack(fn func()) {
	r.PauseTracking()
	defer r.ResumeTracking()
	fn()
}

// Subscribers reports the current subscriber set of a node, in
// insertion order. Intended for debugging and tests.
func (r *Runtime) Subscribers(id NodeID) []NodeID {
	return r.graph.subscribers(id)
}

// Dependencies reports the current dependency set of a node, in
// insertion order. Intended for debugging and tests.
func (r *Runtime) Dependencies(id NodeID) []NodeID {
	return r.graph.dependencies(id)
}

// PendingCount reports how many nodes await the next flush.
func (r *Runtime) PendingCount() int {
	return len(r.queue.order)
}

// raise routes a computation error to the OnError handler, or panics
// when none is installed.
func (r *Runtime) raise(err error) {
	if r.onError != nil {
		r.onError(err)
		return
	}
	panic(fmt.Sprintf("reactive: unhandled computation error: %v", err))
}

// adopt registers a freshly created node with the innermost open scope,
// if any.
func (r *Runtime) adopt(d Disposable) {
	if r.scope != nil {
		r.scope.adopt(d)
	}
}
