package automata

import "testing"

func TestSequenceWithMemory_resumesFromRunningIndex(t *testing.T) {
	first, firstCalls := countingNode(Success)
	second := scriptedNode([]Status{Running, Success}, nil)
	third, thirdCalls := countingNode(Success)

	node := SequenceWithMemory([]Node{first, second, third}, nil)

	status, err := node.Tick()
	if err != nil || status != Running {
		t.Fatalf("expected Running while the second child is still running, got %s, %v", status, err)
	}
	if *firstCalls != 1 {
		t.Errorf("expected the first child to be ticked once so far, got %d", *firstCalls)
	}

	status, err = node.Tick()
	if err != nil || status != Success {
		t.Fatalf("expected Success once every child succeeds, got %s, %v", status, err)
	}
	if *firstCalls != 1 {
		t.Errorf("expected the first child NOT to be re-ticked once resumed from the running index, got %d calls", *firstCalls)
	}
	if *thirdCalls != 1 {
		t.Errorf("expected the third child to be ticked once, got %d", *thirdCalls)
	}
}

func TestSequenceWithMemory_failurePreservesMemory(t *testing.T) {
	first, firstCalls := countingNode(Success)
	second := scriptedNode([]Status{Running, Failure}, nil)

	node := SequenceWithMemory([]Node{first, second}, nil)

	if status, err := node.Tick(); err != nil || status != Running {
		t.Fatalf("expected Running, got %s, %v", status, err)
	}
	if status, err := node.Tick(); err != nil || status != Failure {
		t.Fatalf("expected Failure, got %s, %v", status, err)
	}
	if *firstCalls != 1 {
		t.Errorf("expected the first child not re-ticked before the failure, got %d calls", *firstCalls)
	}
}

func TestSequenceWithMemory_successClearsMemory(t *testing.T) {
	first, firstCalls := countingNode(Success)
	node := SequenceWithMemory([]Node{first}, nil)

	if status, err := node.Tick(); err != nil || status != Success {
		t.Fatalf("expected Success, got %s, %v", status, err)
	}
	if *firstCalls != 1 {
		t.Fatalf("expected 1 call, got %d", *firstCalls)
	}

	// Reset (as a supervisor restart or a parent composite's next execution would) and tick again, confirming
	// memory was cleared to index 0 rather than retaining a stale running index from the prior execution.
	Reset(node)
	if status, err := node.Tick(); err != nil || status != Success {
		t.Fatalf("expected Success again on a fresh execution, got %s, %v", status, err)
	}
	if *firstCalls != 2 {
		t.Errorf("expected the first child to be re-ticked from index 0 on the next execution, got %d calls", *firstCalls)
	}
}
