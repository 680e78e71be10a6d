package reactive

// Scope groups reactive nodes for collective disposal. Nodes created
// inside Run register with the scope; Dispose tears them all down in
// reverse creation order. Scopes nest: a scope created inside another
// scope's Run is disposed with its parent.
//
// Scopes are a convenience for embedders that mount and unmount
// subtrees of reactive state; nothing requires their use.
type Scope struct {
	rt       *Runtime
	children []Disposable
	disposed bool
}

// NewScope creates a scope on the runtime. If another scope is
// currently open, the new scope becomes its child.
func NewScope(rt *Runtime) *Scope {
	s := &Scope{rt: rt}
	rt.adopt(s)
	return s
}

// Run executes fn with this scope open: every signal, effect, memo or
// scope created inside registers here.
func (s *Scope) Run(fn func()) {
	if s.disposed {
		panic("reactive: Run on disposed Scope")
	}
	prev := s.rt.scope
	s.rt.scope = s
	defer func() { s.rt.scope = prev }()
	fn()
}

// Dispose disposes every registered node, newest first. Idempotent.
func (s *Scope) Dispose() {
	if s.disposed {
		return
	}
	s.disposed = true
	for i := len(s.children) - 1; i >= 0; i-- {
		s.children[i].Dispose()
	}
	s.children = nil
}

func (s *Scope) adopt(d Disposable) {
	s.children = append(s.children, d)
}
