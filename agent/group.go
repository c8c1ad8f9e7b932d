package agent

import (
	"context"
	"time"

	"github.com/corvidworks/automata"
)

// Group aggregates several Agents' Tickers behind one automata.Manager (the teacher library's ticker-aggregation
// primitive, see manager.go), so that Done closes only once every member has stopped, Err reports a combined error
// if any member failed, and a failure in one member triggers a graceful stop of the whole group: useful for a
// deployment unit made of several cooperating agents (e.g. one per external system it watches) that should live and
// die together.
type Group struct {
	manager automata.Manager
	agents  []*Agent
}

// NewGroup constructs an empty Group.
func NewGroup() *Group {
	return &Group{manager: automata.NewManager()}
}

// Start starts agent's scheduler under ctx and registers it with the group. Returns automata.ErrManagerStopped (via
// errors.Is) if the group has already begun stopping.
func (g *Group) Start(ctx context.Context, a *Agent) error {
	a.Start(ctx)
	if err := g.manager.Add(a.ticker); err != nil {
		return err
	}
	g.agents = append(g.agents, a)
	return nil
}

// Done closes once every member agent has stopped.
func (g *Group) Done() <-chan struct{} { return g.manager.Done() }

// Err returns the combined error of every member that failed, or nil.
func (g *Group) Err() error { return g.manager.Err() }

// Stop stops every member agent (depth-first per agent, via Agent.Stop) and the group's manager.
func (g *Group) Stop(grace time.Duration) {
	g.manager.Stop()
	for i := len(g.agents) - 1; i >= 0; i-- {
		g.agents[i].Stop(grace)
	}
}
