package reactive

import "sync/atomic"

// NodeID identifies one reactive node (signal, effect or memo) for the
// node's entire lifetime. IDs are process-wide unique, monotonically
// increasing and never reused, so a stale handle can never alias a
// newer node.
type NodeID uint64

var idCounter uint64

func newNodeID() NodeID {
	return NodeID(atomic.AddUint64(&idCounter, 1))
}

// observerKind tags an observer stack frame with the flavour of
// computation that pushed it.
type observerKind uint8

const (
	kindEffect observerKind = iota + 1
	kindMemo
)

// observerFrame is one entry on the runtime's observer stack: a
// computation that is currently executing and should have its reads
// attributed as dependencies.
type observerFrame struct {
	id   NodeID
	kind observerKind
}
