package blackboard_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidworks/automata/blackboard"
)

func TestBoard_PutGet(t *testing.T) {
	board := blackboard.New("agent-1", nil)
	key := blackboard.Key{Segment: "perception", Name: "target"}

	_, ok := board.Get(key)
	assert.False(t, ok, "expected a miss before any Put")

	require.NoError(t, board.Put(key, "enemy-1"))
	value, ok := board.Get(key)
	require.True(t, ok)
	assert.Equal(t, "enemy-1", value)

	// last-writer-wins
	require.NoError(t, board.Put(key, "enemy-2"))
	value, ok = board.Get(key)
	require.True(t, ok)
	assert.Equal(t, "enemy-2", value)
}

func TestBoard_Remove(t *testing.T) {
	board := blackboard.New("agent-1", nil)
	key := blackboard.Key{Segment: "s", Name: "k"}
	require.NoError(t, board.Put(key, 1))
	board.Remove(key)
	_, ok := board.Get(key)
	assert.False(t, ok, "expected a miss after Remove")
}

func TestBoard_Subscribe_KeyPattern(t *testing.T) {
	board := blackboard.New("agent-1", nil)
	key := blackboard.Key{Segment: "s", Name: "k"}
	other := blackboard.Key{Segment: "s", Name: "other"}

	ch, unsubscribe := board.Subscribe(blackboard.KeyPattern(key))
	defer unsubscribe()

	require.NoError(t, board.Put(other, "ignored"))
	require.NoError(t, board.Put(key, "value"))

	select {
	case change := <-ch:
		assert.Equal(t, key, change.Key)
		assert.Equal(t, blackboard.Put, change.Op)
		assert.Equal(t, "value", change.New)
		assert.Equal(t, "agent-1", change.Origin)
	case <-time.After(time.Second):
		t.Fatal("expected a Change to be delivered")
	}

	select {
	case change, ok := <-ch:
		if ok {
			t.Fatalf("expected no further changes to match the key pattern, got %+v", change)
		}
	default:
	}
}

func TestBoard_Subscribe_SegmentAndAllPatterns(t *testing.T) {
	board := blackboard.New("agent-1", nil)

	segCh, unsubSeg := board.Subscribe(blackboard.SegmentPattern("seg"))
	defer unsubSeg()
	allCh, unsubAll := board.Subscribe(blackboard.AllPattern())
	defer unsubAll()

	require.NoError(t, board.Put(blackboard.Key{Segment: "seg", Name: "a"}, 1))
	require.NoError(t, board.Put(blackboard.Key{Segment: "other", Name: "b"}, 2))

	select {
	case c := <-segCh:
		assert.Equal(t, "seg", c.Key.Segment)
	case <-time.After(time.Second):
		t.Fatal("expected the segment subscriber to observe the segment's own change")
	}

	received := 0
	for i := 0; i < 2; i++ {
		select {
		case <-allCh:
			received++
		case <-time.After(time.Second):
			t.Fatalf("expected the all-pattern subscriber to see both changes, got %d", received)
		}
	}
	assert.Equal(t, 2, received)
}

func TestBoard_Unsubscribe_closesChannel(t *testing.T) {
	board := blackboard.New("agent-1", nil)
	ch, unsubscribe := board.Subscribe(blackboard.AllPattern())
	unsubscribe()
	require.NoError(t, board.Put(blackboard.Key{Segment: "s", Name: "k"}, 1))

	_, ok := <-ch
	assert.False(t, ok, "expected the channel to be closed after unsubscribe")
}
