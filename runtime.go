package automata

import "sync"

type (
	// Update performs one step of work for a node: it must not block longer than the tick deadline carried by tc,
	// returning Running if more work is needed. Its children parameter is whatever children were wired in at
	// construction time (composites tick some/all of them; decorators tick children[0]; actions ignore it).
	Update func(children []Node, tc *TickContext) (Status, error)

	// Runtime is the lifecycle shared by every node kind (action, decorator, composite): on_init/update/on_terminate,
	// plus reset and abort, implementing the capability set of the node runtime contract. Node kinds compose a
	// Runtime (has-a) rather than each reimplementing lifecycle bookkeeping.
	Runtime struct {
		mu          sync.Mutex
		status      Status
		update      Update
		onInit      func() error
		onTerminate func(final Status)
		onReset     func()
		onAbort     func()
	}

	// RuntimeOption configures optional lifecycle hooks on a Runtime.
	RuntimeOption func(*Runtime)
)

// WithOnInit sets the hook called exactly once per Fresh -> non-Fresh transition.
func WithOnInit(f func() error) RuntimeOption { return func(r *Runtime) { r.onInit = f } }

// WithOnTerminate sets the hook called exactly once per non-terminal -> terminal transition.
func WithOnTerminate(f func(final Status)) RuntimeOption { return func(r *Runtime) { r.onTerminate = f } }

// WithOnReset sets the hook called when the node is explicitly reset to Fresh (in addition to the status reset
// itself, which Runtime always performs).
func WithOnReset(f func()) RuntimeOption { return func(r *Runtime) { r.onReset = f } }

// WithOnAbort sets the hook used to recursively abort this node's children; Runtime.Abort calls it after marking
// the receiver Aborted and firing on_terminate.
func WithOnAbort(f func()) RuntimeOption { return func(r *Runtime) { r.onAbort = f } }

// NewRuntime constructs a Runtime around update, with the given lifecycle hooks.
func NewRuntime(update Update, opts ...RuntimeOption) *Runtime {
	r := &Runtime{status: Fresh, update: update}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Status returns the node's current status.
func (r *Runtime) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Tick implements the node runtime contract's update capability: on_init fires on the first Fresh -> non-Fresh
// transition (idempotent on subsequent Running re-entry), update performs one step, and on_terminate fires exactly
// once when the resulting status is terminal. A node already in a terminal status is not re-ticked; its cached
// status is returned (the caller is expected to Reset before re-entry, per the node runtime contract's
// precondition that Tick only be called on a Fresh or Running node).
func (r *Runtime) Tick(children []Node, tc *TickContext) (Status, error) {
	r.mu.Lock()
	prev := r.status
	if prev.IsTerminal() {
		r.mu.Unlock()
		return prev, nil
	}
	if prev == Fresh && r.onInit != nil {
		if err := r.onInit(); err != nil {
			r.status = Failure
			onTerminate := r.onTerminate
			r.mu.Unlock()
			if onTerminate != nil {
				onTerminate(Failure)
			}
			return Failure, err
		}
	}
	r.mu.Unlock()

	status, err := r.update(children, tc)
	status = status.Status()

	r.mu.Lock()
	r.status = status
	onTerminate := r.onTerminate
	r.mu.Unlock()

	if status.IsTerminal() && onTerminate != nil {
		onTerminate(status)
	}
	return status, err
}

// Reset returns the node to Fresh, discarding transient state; children are not transitively reset (callers that
// need that, e.g. Repeater, reset the specific child explicitly).
func (r *Runtime) Reset() {
	r.mu.Lock()
	r.status = Fresh
	onReset := r.onReset
	r.mu.Unlock()
	if onReset != nil {
		onReset()
	}
}

// Abort transitions the node to Aborted, firing on_terminate exactly once if it wasn't already terminal, then
// recursively aborting children via onAbort. It is idempotent: aborting an already-terminal node only (re-)aborts
// children.
func (r *Runtime) Abort() (Status, error) {
	r.mu.Lock()
	prev := r.status
	r.status = Aborted
	onTerminate := r.onTerminate
	onAbort := r.onAbort
	r.mu.Unlock()
	if !prev.IsTerminal() && onTerminate != nil {
		onTerminate(Aborted)
	}
	if onAbort != nil {
		onAbort()
	}
	return Aborted, nil
}

type (
	vkAbort struct{}
	vkReset struct{}
)

// Node builds the automata.Node exposed to the rest of the tree: a Tick closure bound to this Runtime and tc, plus
// Abort/Reset accessors attached via the Value mechanism (see Abort and Reset below) so composites and decorators
// can operate on opaque child Nodes without type-asserting their concrete kind.
func (r *Runtime) Node(children []Node, tc *TickContext) Node {
	n := New(func(c []Node) (Status, error) { return r.Tick(c, tc) }, children...)
	n = n.WithValue(vkAbort{}, func() (Status, error) { return r.Abort() })
	n = n.WithValue(vkReset{}, func() { r.Reset() })
	return n
}

// Abort aborts n, via the Abort accessor attached by Runtime.Node, recursing through the tree because every
// decorator/composite's onAbort hook aborts its own children in turn. Aborting a nil or bare Node (one not backed
// by a Runtime) is a no-op that reports Aborted.
func Abort(n Node) (Status, error) {
	if n == nil {
		return Aborted, nil
	}
	if fn, ok := n.Value(vkAbort{}).(func() (Status, error)); ok && fn != nil {
		return fn()
	}
	return Aborted, nil
}

// Reset returns n to Fresh via the Reset accessor attached by Runtime.Node. Resetting a nil or bare Node is a no-op.
func Reset(n Node) {
	if n == nil {
		return
	}
	if fn, ok := n.Value(vkReset{}).(func()); ok && fn != nil {
		fn()
	}
}

func abortAll(children []Node) {
	for _, c := range children {
		Abort(c)
	}
}
