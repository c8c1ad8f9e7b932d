package automata

import "fmt"

// SequenceTick is a tick implementation that succeeds only if every child succeeds, ticking children left to right
// and returning the first non-Success status it encounters (Aborted is treated as Failure for status-combination
// purposes): Failure/Aborted fails the sequence, Running keeps it running without memory (the next tick restarts
// from index 0). Remaining children are not ticked once one fails. An empty child list succeeds.
func SequenceTick(children []Node) (Status, error) {
	for i, c := range children {
		status, err := c.Tick()
		if err != nil {
			return Failure, fmt.Errorf("automata.Sequence: child %d: %w", i, err)
		}
		switch status.Status() {
		case Running:
			return Running, nil
		case Failure, Aborted:
			return Failure, nil
		}
	}
	return Success, nil
}

// SelectorTick is the dual of SequenceTick: it fails only if every child fails, short-circuiting on the first
// child that succeeds (Aborted is treated as Failure). An empty child list fails.
func SelectorTick(children []Node) (Status, error) {
	for i, c := range children {
		status, err := c.Tick()
		if err != nil {
			return Failure, fmt.Errorf("automata.Selector: child %d: %w", i, err)
		}
		switch status.Status() {
		case Running:
			return Running, nil
		case Success:
			return Success, nil
		}
	}
	return Failure, nil
}

// Sequence constructs a composite Node implementing SequenceTick, aborting any still-running children on
// termination (abort(root) or external Abort).
func Sequence(children []Node, tc *TickContext) Node {
	update := func(children []Node, _ *TickContext) (Status, error) { return SequenceTick(children) }
	rt := NewRuntime(update, WithOnAbort(func() { abortAll(children) }))
	return rt.Node(children, tc)
}

// Selector constructs a composite Node implementing SelectorTick, aborting any still-running children on
// termination.
func Selector(children []Node, tc *TickContext) Node {
	update := func(children []Node, _ *TickContext) (Status, error) { return SelectorTick(children) }
	rt := NewRuntime(update, WithOnAbort(func() { abortAll(children) }))
	return rt.Node(children, tc)
}
