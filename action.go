package automata

// ActionHandler is the contract a host supplies to do domain work at a leaf. Actions are the only place domain
// side effects occur, and must never call back into the tree: Tick receives only its own state and the tick
// context, never a Node.
type ActionHandler interface {
	// Init is called once, analogous to Runtime's on_init, to produce the handler's initial state from its
	// configured parameters.
	Init(parameters map[string]any) (state any, err error)
	// Tick performs one step of work, returning updated state and the resulting status.
	Tick(state any, ctx *TickContext) (newState any, status Status, err error)
	// Terminate is called once when the action reaches a terminal status, to release resources.
	Terminate(state any, final Status) error
}

// ActionFunc adapts plain functions to the ActionHandler interface, for handlers with no meaningful Init/Terminate
// step.
type ActionFunc func(ctx *TickContext) (Status, error)

// Init implements ActionHandler, returning nil state.
func (ActionFunc) Init(map[string]any) (any, error) { return nil, nil }

// Tick implements ActionHandler by invoking the receiver.
func (f ActionFunc) Tick(_ any, ctx *TickContext) (any, Status, error) {
	status, err := f(ctx)
	return nil, status, err
}

// Terminate implements ActionHandler as a no-op.
func (ActionFunc) Terminate(any, Status) error { return nil }

// Action constructs a leaf Node that drives handler through the node runtime contract: on_init derives handler
// state from parameters, update ticks the handler exactly once per call, and on_terminate releases handler
// resources. A HandlerError (a non-nil error from Tick) terminates the action with Failure, per the error
// taxonomy: recoverable handler failures are converted to a Status before crossing the tick boundary.
func Action(handler ActionHandler, parameters map[string]any, tc *TickContext) Node {
	if handler == nil {
		return nil
	}
	var state any
	update := func([]Node, *TickContext) (Status, error) {
		newState, status, err := handler.Tick(state, tc)
		state = newState
		if err != nil {
			return Failure, err
		}
		return status, nil
	}
	rt := NewRuntime(
		update,
		WithOnInit(func() error {
			s, err := handler.Init(parameters)
			state = s
			return err
		}),
		WithOnTerminate(func(final Status) {
			_ = handler.Terminate(state, final)
		}),
		WithOnReset(func() { state = nil }),
	)
	return rt.Node(nil, tc)
}
