package automata

import "context"

// ContextActionFunc adapts a function taking a standard context.Context to ActionHandler, for handlers that call
// context-aware APIs (an HTTP client, a database driver). The context is derived from the tick's deadline via
// Context.WithDeadline (see context.go), and canceled on Terminate, so a handler blocked on it observes cancelation
// as soon as the action becomes terminal (Success, Failure, or Aborted), without needing its own timeout logic.
type ContextActionFunc func(ctx context.Context, tc *TickContext) (Status, error)

// Init implements ActionHandler, allocating the per-action Context.
func (ContextActionFunc) Init(map[string]any) (any, error) { return new(Context), nil }

// Tick implements ActionHandler: it (re)initializes the action's Context against tc's deadline, then invokes the
// receiver with the resulting context.Context.
func (f ContextActionFunc) Tick(state any, tc *TickContext) (any, Status, error) {
	c, _ := state.(*Context)
	if c == nil {
		c = new(Context)
	}
	if tc != nil && !tc.Deadline.IsZero() {
		c.WithDeadline(context.Background(), tc.Deadline)
	} else {
		c.WithCancel(context.Background())
	}
	if _, err := c.Init(nil); err != nil {
		return c, Failure, err
	}
	status, err := f(c.ctx, tc)
	return c, status, err
}

// Terminate implements ActionHandler, canceling the action's Context.
func (ContextActionFunc) Terminate(state any, _ Status) error {
	if c, ok := state.(*Context); ok {
		_, _ = c.Cancel(nil)
	}
	return nil
}
