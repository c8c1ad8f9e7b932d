package automata

// scriptedNode returns a Node that, each time it is ticked, returns the next status from script (repeating the
// last entry once exhausted) paired with err. Used throughout this package's tests to stand in for a leaf whose
// behavior needs to be controlled precisely across several ticks.
func scriptedNode(script []Status, err error) Node {
	i := 0
	return New(func([]Node) (Status, error) {
		s := script[i]
		if i < len(script)-1 {
			i++
		}
		return s, err
	})
}

func countingNode(status Status) (Node, *int) {
	calls := 0
	n := New(func([]Node) (Status, error) {
		calls++
		return status, nil
	})
	return n, &calls
}
