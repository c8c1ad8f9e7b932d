package automata

import (
	"fmt"
	"testing"
)

func TestStatus_String(t *testing.T) {
	testCases := []struct {
		Status Status
		String string
	}{
		{Status: Fresh, String: `fresh`},
		{Status: Running, String: `running`},
		{Status: Success, String: `success`},
		{Status: Failure, String: `failure`},
		{Status: Aborted, String: `aborted`},
		{Status: 0, String: `unknown status (0)`},
		{Status: 234, String: `unknown status (234)`},
	}

	for i, testCase := range testCases {
		name := fmt.Sprintf("TestStatus_String_#%d", i)
		if actual := testCase.Status.String(); actual != testCase.String {
			t.Errorf("%s failed: expected stringer '%s' != actual '%s'", name, testCase.String, actual)
		}
	}
}

func TestStatus_Status(t *testing.T) {
	testCases := []struct {
		Status Status
		Result Status
	}{
		{Status: Fresh, Result: Fresh},
		{Status: Running, Result: Running},
		{Status: Success, Result: Success},
		{Status: Failure, Result: Failure},
		{Status: Aborted, Result: Aborted},
		{Status: 0, Result: Failure},
		{Status: 234, Result: Failure},
	}

	for i, testCase := range testCases {
		name := fmt.Sprintf("TestStatus_Status_#%d", i)
		if actual := testCase.Status.Status(); actual != testCase.Result {
			t.Errorf("%s failed: expected '%s' != actual '%s'", name, testCase.Result, actual)
		}
	}
}

func TestStatus_IsTerminal(t *testing.T) {
	testCases := []struct {
		Status   Status
		Terminal bool
	}{
		{Status: Fresh, Terminal: false},
		{Status: Running, Terminal: false},
		{Status: Success, Terminal: true},
		{Status: Failure, Terminal: true},
		{Status: Aborted, Terminal: true},
	}
	for i, testCase := range testCases {
		if actual := testCase.Status.IsTerminal(); actual != testCase.Terminal {
			t.Errorf("#%d: %s: expected terminal=%v got %v", i, testCase.Status, testCase.Terminal, actual)
		}
	}
}

func TestStatus_IsRunning(t *testing.T) {
	if !Running.IsRunning() {
		t.Error("expected Running.IsRunning() to be true")
	}
	for _, s := range []Status{Fresh, Success, Failure, Aborted} {
		if s.IsRunning() {
			t.Errorf("expected %s.IsRunning() to be false", s)
		}
	}
}

func TestStatus_Invert(t *testing.T) {
	testCases := []struct {
		Status Status
		Result Status
	}{
		{Status: Success, Result: Failure},
		{Status: Failure, Result: Success},
		{Status: Running, Result: Running},
		{Status: Fresh, Result: Fresh},
		{Status: Aborted, Result: Aborted},
	}
	for i, testCase := range testCases {
		if actual := testCase.Status.Invert(); actual != testCase.Result {
			t.Errorf("#%d: %s.Invert(): expected %s got %s", i, testCase.Status, testCase.Result, actual)
		}
	}
	// inverting twice returns to the original for Success/Failure
	if Success.Invert().Invert() != Success {
		t.Error("expected double invert of Success to return Success")
	}
}
