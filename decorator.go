package automata

import (
	"reflect"
	"time"

	"github.com/corvidworks/automata/blackboard"
)

// InverterNode wraps child, mapping Success<->Failure and leaving Running/Aborted unchanged, per the Status
// algebra's Invert operation. On terminate it aborts the child.
func InverterNode(child Node, tc *TickContext) Node {
	update := func([]Node, *TickContext) (Status, error) {
		status, err := child.Tick()
		if err != nil {
			return Failure, err
		}
		return status.Invert(), nil
	}
	rt := NewRuntime(update, WithOnAbort(func() { Abort(child) }))
	return rt.Node([]Node{child}, tc)
}

// Repeater wraps child and ticks it repeatedly.
//
// If untilFail is false, count bounds the number of child Success results consumed before the Repeater itself
// reports Success; count <= 0 means unbounded (count ∈ ℕ⁺ ∪ {∞}). A child Failure propagates immediately.
//
// If untilFail is true, count is ignored: a child Success resets the child and keeps looping (Running); a child
// Failure reports Success (the loop's exit condition).
//
// A child Aborted is treated as Failure for loop-termination purposes in both modes (the source left this case
// unspecified; this is the explicit, documented choice per spec's Open Questions).
func Repeater(child Node, count int, untilFail bool, tc *TickContext) Node {
	var iteration int
	update := func([]Node, *TickContext) (Status, error) {
		status, err := child.Tick()
		loopTerminated := status == Failure || status == Aborted
		switch {
		case untilFail && loopTerminated:
			iteration = 0
			return Success, nil
		case untilFail && status == Success:
			Reset(child)
			return Running, nil
		case untilFail:
			return Running, err
		case loopTerminated:
			iteration = 0
			return Failure, err
		case status == Success:
			iteration++
			if count > 0 && iteration >= count {
				iteration = 0
				return Success, nil
			}
			Reset(child)
			return Running, nil
		default:
			return Running, err
		}
	}
	rt := NewRuntime(
		update,
		WithOnReset(func() { iteration = 0; Reset(child) }),
		WithOnAbort(func() { Abort(child) }),
	)
	return rt.Node([]Node{child}, tc)
}

// Timeout wraps child with a deadline: if it has not reached a terminal status within duration of the Timeout's
// own on_init, the child is aborted and Timeout reports Failure; otherwise Timeout propagates the child's status.
func Timeout(child Node, duration time.Duration, tc *TickContext) Node {
	var start time.Time
	update := func([]Node, *TickContext) (Status, error) {
		if time.Since(start) > duration {
			Abort(child)
			return Failure, nil
		}
		return child.Tick()
	}
	rt := NewRuntime(
		update,
		WithOnInit(func() error { start = time.Now(); return nil }),
		WithOnTerminate(func(Status) { start = time.Time{} }),
		WithOnAbort(func() { Abort(child) }),
	)
	return rt.Node([]Node{child}, tc)
}

// Conditional wraps child with a blackboard guard: the child is only ticked if (value == expected) XOR invert,
// where value is the current value of key on tc's blackboard. When it is not ticked, Conditional reports Failure
// without side effects. The zero Key (an unset key) makes Conditional a pass-through, always ticking the child.
func Conditional(child Node, key blackboard.Key, expected any, invert bool, tc *TickContext) Node {
	update := func(_ []Node, tc *TickContext) (Status, error) {
		if key == (blackboard.Key{}) {
			return child.Tick()
		}
		var value any
		var present bool
		if tc != nil && tc.Blackboard != nil {
			value, present = tc.Blackboard.Get(key)
		}
		matches := present && reflect.DeepEqual(value, expected)
		if matches != invert {
			return child.Tick()
		}
		return Failure, nil
	}
	rt := NewRuntime(update, WithOnAbort(func() { Abort(child) }))
	return rt.Node([]Node{child}, tc)
}
