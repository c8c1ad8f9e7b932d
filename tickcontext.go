package automata

import (
	"time"

	"github.com/corvidworks/automata/blackboard"
	"github.com/opentracing/opentracing-go"
)

// TickContext is the per-tick, transient context threaded through one tick's call chain: a monotonic tick counter,
// a deadline for the call-chain, and the blackboard handle. It is not persisted between ticks.
//
// A TickContext is constructed once per agent and mutated in place at the start of each root tick (see the agent
// package's scheduler), mirroring the Context.Init/Context.Tick pattern this package already uses for
// cancellation (see context.go): node ticks close over the same *TickContext pointer wired in at tree-construction
// time, and read its current fields at call time.
type TickContext struct {
	AgentID    string
	TickCount  uint64
	Deadline   time.Time
	Blackboard *blackboard.Board
	Span       opentracing.Span
}

// Remaining returns the time left before the tick deadline, or zero if it has already passed or none was set.
func (c *TickContext) Remaining() time.Duration {
	if c == nil || c.Deadline.IsZero() {
		return 0
	}
	if d := time.Until(c.Deadline); d > 0 {
		return d
	}
	return 0
}

// Expired reports whether the tick deadline has passed.
func (c *TickContext) Expired() bool {
	return c != nil && !c.Deadline.IsZero() && !time.Now().Before(c.Deadline)
}

// Advance prepares the receiver for the next root tick, setting the counter, deadline and trace span; called by
// the scheduler (see the agent package) once per period, before ticking the root node.
func (c *TickContext) Advance(tickCount uint64, deadline time.Time, span opentracing.Span) {
	c.TickCount = tickCount
	c.Deadline = deadline
	c.Span = span
}
