package automata

import (
	"testing"
	"time"

	"github.com/corvidworks/automata/blackboard"
)

func TestInverterNode(t *testing.T) {
	testCases := []struct {
		child  Status
		expect Status
	}{
		{child: Success, expect: Failure},
		{child: Failure, expect: Success},
		{child: Running, expect: Running},
		{child: Aborted, expect: Aborted},
	}
	for _, tc := range testCases {
		child := scriptedNode([]Status{tc.child}, nil)
		node := InverterNode(child, nil)
		status, err := node.Tick()
		if err != nil {
			t.Fatalf("child=%s: unexpected error %v", tc.child, err)
		}
		if status != tc.expect {
			t.Errorf("child=%s: expected %s got %s", tc.child, tc.expect, status)
		}
	}
}

func TestRepeater_countedMode(t *testing.T) {
	child := scriptedNode([]Status{Success}, nil)
	node := Repeater(child, 3, false, nil)

	for i := 0; i < 2; i++ {
		status, err := node.Tick()
		if err != nil {
			t.Fatalf("tick %d: unexpected error %v", i, err)
		}
		if status != Running {
			t.Fatalf("tick %d: expected Running got %s", i, status)
		}
	}
	status, err := node.Tick()
	if err != nil || status != Success {
		t.Fatalf("expected Success on the 3rd child success, got %s, %v", status, err)
	}
}

func TestRepeater_countedMode_childFailurePropagates(t *testing.T) {
	child := scriptedNode([]Status{Success, Failure}, nil)
	node := Repeater(child, 5, false, nil)

	if status, err := node.Tick(); err != nil || status != Running {
		t.Fatalf("expected Running on first success, got %s, %v", status, err)
	}
	if status, err := node.Tick(); err != nil || status != Failure {
		t.Fatalf("expected Failure to propagate immediately, got %s, %v", status, err)
	}
}

func TestRepeater_untilFail(t *testing.T) {
	child := scriptedNode([]Status{Success, Success, Failure}, nil)
	node := Repeater(child, 0, true, nil)

	for i := 0; i < 2; i++ {
		status, err := node.Tick()
		if err != nil || status != Running {
			t.Fatalf("tick %d: expected Running, got %s, %v", i, status, err)
		}
	}
	status, err := node.Tick()
	if err != nil || status != Success {
		t.Fatalf("expected Success once the child fails in until-fail mode, got %s, %v", status, err)
	}
}

func TestRepeater_untilFail_abortedTreatedAsFailure(t *testing.T) {
	child := scriptedNode([]Status{Aborted}, nil)
	node := Repeater(child, 0, true, nil)
	status, err := node.Tick()
	if err != nil || status != Success {
		t.Fatalf("expected child Aborted to terminate the until-fail loop with Success, got %s, %v", status, err)
	}
}

func TestTimeout_childCompletesInTime(t *testing.T) {
	child := scriptedNode([]Status{Success}, nil)
	node := Timeout(child, time.Hour, nil)
	status, err := node.Tick()
	if err != nil || status != Success {
		t.Fatalf("expected child's status to propagate, got %s, %v", status, err)
	}
}

func TestTimeout_expires(t *testing.T) {
	child := scriptedNode([]Status{Running}, nil)
	node := Timeout(child, time.Nanosecond, nil)
	// first tick starts the clock
	if _, err := node.Tick(); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	time.Sleep(time.Millisecond)
	status, err := node.Tick()
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if status != Failure {
		t.Errorf("expected Failure once the duration elapses, got %s", status)
	}
}

func TestConditional_zeroKeyPassesThrough(t *testing.T) {
	child := scriptedNode([]Status{Success}, nil)
	node := Conditional(child, blackboard.Key{}, nil, false, nil)
	status, err := node.Tick()
	if err != nil || status != Success {
		t.Fatalf("expected zero Key to pass through to the child, got %s, %v", status, err)
	}
}

func TestConditional_matchAndMismatch(t *testing.T) {
	board := blackboard.New("test", nil)
	key := blackboard.Key{Segment: "seg", Name: "flag"}
	tc := &TickContext{Blackboard: board}

	child := scriptedNode([]Status{Success}, nil)
	node := Conditional(child, key, "armed", false, tc)

	// key absent: Conditional fails without ticking the child
	status, err := node.Tick()
	if err != nil || status != Failure {
		t.Fatalf("expected Failure with the key unset, got %s, %v", status, err)
	}

	board.Put(key, "armed")
	// the Failure above is terminal, so the node must be reset before it is ticked again
	Reset(node)
	status, err = node.Tick()
	if err != nil || status != Success {
		t.Fatalf("expected the child's Success once the key matches, got %s, %v", status, err)
	}
}

func TestConditional_invert(t *testing.T) {
	board := blackboard.New("test", nil)
	key := blackboard.Key{Segment: "seg", Name: "flag"}
	tc := &TickContext{Blackboard: board}
	board.Put(key, "armed")

	child := scriptedNode([]Status{Success}, nil)
	node := Conditional(child, key, "armed", true, tc)

	status, err := node.Tick()
	if err != nil || status != Failure {
		t.Fatalf("expected invert=true to flip a match into Failure, got %s, %v", status, err)
	}
}
