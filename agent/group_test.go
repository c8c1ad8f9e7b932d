package agent_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidworks/automata"
	"github.com/corvidworks/automata/agent"
)

func newTestAgent(t *testing.T, id string, root automata.Node) *agent.Agent {
	t.Helper()
	tc := &automata.TickContext{}
	return agent.New(agent.Config{ID: id, Period: 10 * time.Millisecond}, root, tc)
}

func TestGroup_cancelingSharedContextStopsAllMembers(t *testing.T) {
	root1 := automata.New(func([]automata.Node) (automata.Status, error) {
		return automata.Success, nil
	})
	root2 := automata.New(func([]automata.Node) (automata.Status, error) {
		return automata.Success, nil
	})

	g := agent.NewGroup()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a1 := newTestAgent(t, "g1", root1)
	a2 := newTestAgent(t, "g2", root2)

	require.NoError(t, g.Start(ctx, a1))
	require.NoError(t, g.Start(ctx, a2))

	// cancel the shared context: both agents' underlying tickers should stop, and the group's Done should close.
	cancel()

	select {
	case <-g.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("expected the group to finish once its shared context was canceled")
	}
}

func TestGroup_StopHaltsAllMembers(t *testing.T) {
	root1 := automata.New(func([]automata.Node) (automata.Status, error) { return automata.Success, nil })
	root2 := automata.New(func([]automata.Node) (automata.Status, error) { return automata.Success, nil })

	g := agent.NewGroup()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a1 := newTestAgent(t, "s1", root1)
	a2 := newTestAgent(t, "s2", root2)
	require.NoError(t, g.Start(ctx, a1))
	require.NoError(t, g.Start(ctx, a2))

	g.Stop(time.Second)

	select {
	case <-g.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("expected Done to close after Stop")
	}
	assert.Nil(t, g.Err())
}
