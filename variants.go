package automata

import (
	"math/rand"
	"time"
)

// NotNode wraps child with strict binary inversion (Success<->Failure, Running passes through, but unlike
// InverterNode, Aborted also collapses to Failure rather than being preserved). Built on Not; prefer InverterNode
// for the spec's Status algebra's Invert operation, and reach for NotNode only where that collapsing behavior (a
// guard condition that must resolve to pass/fail, never "the guard itself was aborted") is actually wanted.
func NotNode(child Node, tc *TickContext) Node {
	tick := Not(func([]Node) (Status, error) { return child.Tick() })
	update := func([]Node, *TickContext) (Status, error) { return tick(nil) }
	rt := NewRuntime(update, WithOnAbort(func() { Abort(child) }))
	return rt.Node([]Node{child}, tc)
}

// RandomSelector behaves like Selector, but shuffles children before each tick (via Shuffle), so the first
// candidate attempted varies tick to tick. source may be nil to use the global math/rand source.
func RandomSelector(children []Node, source rand.Source, tc *TickContext) Node {
	tick := Shuffle(func(children []Node) (Status, error) { return SelectorTick(children) }, source)
	update := func(children []Node, _ *TickContext) (Status, error) { return tick(children) }
	rt := NewRuntime(update, WithOnAbort(func() { abortAll(children) }))
	return rt.Node(children, tc)
}

// MemorizedSequence is an alternative to SequenceWithMemory built directly on the teacher library's Memorize
// primitive: where SequenceWithMemory tracks an explicit last-running index and execution history (matching the
// spec's stated data model exactly), MemorizedSequence achieves the same left-to-right, resume-from-running
// behavior via closure-based per-child memoization, at the cost of not exposing an inspectable MemoryRecord. Prefer
// SequenceWithMemory when the spec's memory model itself must be observable (e.g. for a supervisor diagnostic);
// prefer MemorizedSequence for a simpler composite with identical externally-visible tick behavior.
func MemorizedSequence(children []Node, tc *TickContext) Node {
	tick := Memorize(func(children []Node) (Status, error) { return SequenceTick(children) })
	update := func(children []Node, _ *TickContext) (Status, error) { return tick(children) }
	rt := NewRuntime(update, WithOnAbort(func() { abortAll(children) }))
	return rt.Node(children, tc)
}

// MemorizedSelector is Selector's counterpart to MemorizedSequence.
func MemorizedSelector(children []Node, tc *TickContext) Node {
	tick := Memorize(func(children []Node) (Status, error) { return SelectorTick(children) })
	update := func(children []Node, _ *TickContext) (Status, error) { return tick(children) }
	rt := NewRuntime(update, WithOnAbort(func() { abortAll(children) }))
	return rt.Node(children, tc)
}

// RateLimiter wraps child, refusing to tick it (reporting Failure without side effects) more than once per
// interval, built on RateLimit.
func RateLimiter(child Node, interval time.Duration, tc *TickContext) Node {
	gate := RateLimit(interval)
	update := func([]Node, *TickContext) (Status, error) {
		status, err := gate(nil)
		if err != nil || status != Success {
			return Failure, err
		}
		return child.Tick()
	}
	rt := NewRuntime(update, WithOnAbort(func() { Abort(child) }))
	return rt.Node([]Node{child}, tc)
}

// SwitchNode constructs a composite Node implementing Switch's condition/statement pairing.
func SwitchNode(children []Node, tc *TickContext) Node {
	update := func(children []Node, _ *TickContext) (Status, error) { return Switch(children) }
	rt := NewRuntime(update, WithOnAbort(func() { abortAll(children) }))
	return rt.Node(children, tc)
}

// AllNode constructs a composite Node implementing All: a Failure or Aborted child does not stop the remaining
// children from being ticked (a Running child does), and it succeeds only once every child has returned Success.
func AllNode(children []Node, tc *TickContext) Node {
	update := func(children []Node, _ *TickContext) (Status, error) { return All(children) }
	rt := NewRuntime(update, WithOnAbort(func() { abortAll(children) }))
	return rt.Node(children, tc)
}

// AnyNode constructs a composite Node implementing SequenceTick with Any's override: children are ticked as by
// Sequence, which stops at the first child that does not succeed, and a result that is neither Running nor an error
// is reported as Success if a child succeeded in this pass or in an earlier pass that ended Running (instead of
// requiring all). Children after a failing one are not
// ticked, so their success does not count.
func AnyNode(children []Node, tc *TickContext) Node {
	tick := Any(func(children []Node) (Status, error) { return SequenceTick(children) })
	update := func(children []Node, _ *TickContext) (Status, error) { return tick(children) }
	rt := NewRuntime(update, WithOnAbort(func() { abortAll(children) }))
	return rt.Node(children, tc)
}

// SyncParallel is Parallel over children wrapped with Sync, so that a child already Running at the start of a tick
// gets exclusive use of that tick slot: siblings that aren't already running are skipped (report the status they
// last returned through Sync, without being ticked) until it settles. Useful for thresholds where the handler work behind two children is not safe to
// run concurrently (e.g. both touch the same external resource) but must still be composed via the Parallel policy.
func SyncParallel(children []Node, successThreshold, failureThreshold int, tc *TickContext) Node {
	return Parallel(Sync(children), successThreshold, failureThreshold, tc)
}

// AsyncAction wraps child so that its Tick runs in the background: once started, subsequent ticks return Running
// immediately without blocking on it, until it completes, at which point its terminal status and error are
// propagated exactly once. Built on Async; useful for an action whose handler may run longer than the tick
// deadline without stalling the scheduler.
func AsyncAction(child Node, tc *TickContext) Node {
	tick := Async(func([]Node) (Status, error) { return child.Tick() })
	update := func([]Node, *TickContext) (Status, error) { return tick(nil) }
	rt := NewRuntime(update, WithOnAbort(func() { Abort(child) }))
	return rt.Node([]Node{child}, tc)
}

// BackgroundSpawner ticks a factory-produced instance on every call where none of the previously spawned instances
// are available to continue (Background's oldest-first draining), backgrounding each once it reports Running so a
// new one can be spawned and ticked in the same call; useful for fire-and-forget fan-out where each firing is
// independent and unbounded in count (the caller is responsible for bounding factory's call rate, e.g. via
// RateLimiter upstream).
func BackgroundSpawner(factory func() Node, tc *TickContext) Node {
	tick := Background(func() Tick {
		child := factory()
		return func([]Node) (Status, error) { return child.Tick() }
	})
	update := func([]Node, *TickContext) (Status, error) { return tick(nil) }
	rt := NewRuntime(update)
	return rt.Node(nil, tc)
}
