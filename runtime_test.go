package automata

import (
	"errors"
	"testing"
)

func TestRuntime_Tick_lifecycle(t *testing.T) {
	var (
		initCalled      int
		terminateStatus Status
		terminateCalls  int
	)
	calls := 0
	rt := NewRuntime(
		func([]Node, *TickContext) (Status, error) {
			calls++
			if calls < 3 {
				return Running, nil
			}
			return Success, nil
		},
		WithOnInit(func() error { initCalled++; return nil }),
		WithOnTerminate(func(final Status) { terminateCalls++; terminateStatus = final }),
	)

	for i := 0; i < 2; i++ {
		status, err := rt.Tick(nil, nil)
		if err != nil {
			t.Fatalf("tick %d: unexpected error %v", i, err)
		}
		if status != Running {
			t.Fatalf("tick %d: expected Running got %s", i, status)
		}
	}

	status, err := rt.Tick(nil, nil)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if status != Success {
		t.Fatalf("expected Success got %s", status)
	}

	if initCalled != 1 {
		t.Errorf("expected on_init called exactly once, got %d", initCalled)
	}
	if terminateCalls != 1 || terminateStatus != Success {
		t.Errorf("expected on_terminate called once with Success, got %d calls with %s", terminateCalls, terminateStatus)
	}

	// ticking an already-terminal node is an idempotent no-op: cached status, no further update/terminate calls
	status, err = rt.Tick(nil, nil)
	if err != nil || status != Success {
		t.Fatalf("expected cached Success with no error, got %s, %v", status, err)
	}
	if calls != 3 {
		t.Errorf("expected update not to be called again on a terminal node, call count = %d", calls)
	}
	if terminateCalls != 1 {
		t.Errorf("expected on_terminate not to fire again, got %d calls", terminateCalls)
	}
}

func TestRuntime_Tick_onInitError(t *testing.T) {
	wantErr := errors.New("init boom")
	rt := NewRuntime(
		func([]Node, *TickContext) (Status, error) { return Success, nil },
		WithOnInit(func() error { return wantErr }),
	)
	status, err := rt.Tick(nil, nil)
	if status != Failure {
		t.Errorf("expected Failure got %s", status)
	}
	if !errors.Is(err, wantErr) {
		t.Errorf("expected wrapped init error, got %v", err)
	}
	if rt.Status() != Failure {
		t.Errorf("expected cached status Failure, got %s", rt.Status())
	}
}

func TestRuntime_Reset(t *testing.T) {
	var resetCalls int
	rt := NewRuntime(
		func([]Node, *TickContext) (Status, error) { return Success, nil },
		WithOnReset(func() { resetCalls++ }),
	)
	if _, err := rt.Tick(nil, nil); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if rt.Status() != Success {
		t.Fatalf("expected Success, got %s", rt.Status())
	}
	rt.Reset()
	if rt.Status() != Fresh {
		t.Errorf("expected Fresh after Reset, got %s", rt.Status())
	}
	if resetCalls != 1 {
		t.Errorf("expected on_reset called once, got %d", resetCalls)
	}
	// node can be ticked again after reset
	if status, err := rt.Tick(nil, nil); err != nil || status != Success {
		t.Fatalf("expected Success after reset+retick, got %s, %v", status, err)
	}
}

func TestRuntime_Abort(t *testing.T) {
	var (
		abortCalls     int
		terminateCalls int
		terminateFinal Status
	)
	rt := NewRuntime(
		func([]Node, *TickContext) (Status, error) { return Running, nil },
		WithOnTerminate(func(final Status) { terminateCalls++; terminateFinal = final }),
		WithOnAbort(func() { abortCalls++ }),
	)
	if _, err := rt.Tick(nil, nil); err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	status, err := rt.Abort()
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if status != Aborted {
		t.Errorf("expected Aborted, got %s", status)
	}
	if rt.Status() != Aborted {
		t.Errorf("expected cached status Aborted, got %s", rt.Status())
	}
	if terminateCalls != 1 || terminateFinal != Aborted {
		t.Errorf("expected on_terminate(Aborted) exactly once, got %d calls with %s", terminateCalls, terminateFinal)
	}
	if abortCalls != 1 {
		t.Errorf("expected on_abort called once, got %d", abortCalls)
	}

	// aborting an already-terminal node re-fires onAbort but not onTerminate
	if _, err := rt.Abort(); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if terminateCalls != 1 {
		t.Errorf("expected on_terminate not to fire again, got %d calls", terminateCalls)
	}
	if abortCalls != 2 {
		t.Errorf("expected on_abort called again, got %d", abortCalls)
	}
}

func TestRuntime_Node_AbortReset_opaque(t *testing.T) {
	rt := NewRuntime(func([]Node, *TickContext) (Status, error) { return Running, nil })
	n := rt.Node(nil, nil)

	if _, err := n.Tick(); err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	status, err := Abort(n)
	if err != nil || status != Aborted {
		t.Fatalf("expected Aborted via package-level Abort, got %s, %v", status, err)
	}
	if rt.Status() != Aborted {
		t.Errorf("expected underlying runtime aborted, got %s", rt.Status())
	}

	Reset(n)
	if rt.Status() != Fresh {
		t.Errorf("expected underlying runtime reset to Fresh, got %s", rt.Status())
	}
}

func TestAbortReset_nilAndBareNode(t *testing.T) {
	if status, err := Abort(nil); status != Aborted || err != nil {
		t.Errorf("expected Abort(nil) to report Aborted/nil, got %s, %v", status, err)
	}
	Reset(nil) // must not panic

	bare := New(func([]Node) (Status, error) { return Success, nil })
	if status, err := Abort(bare); status != Aborted || err != nil {
		t.Errorf("expected Abort of a bare node to report Aborted/nil, got %s, %v", status, err)
	}
	Reset(bare) // must not panic
}
