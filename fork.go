/*
   Copyright 2021 Joseph Cumines

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package automata

import (
	"fmt"
)

// Fork generates a stateful Tick which will tick all children at once, returning after all children return a result,
// returning running if any children did so, and ticking only those which returned running in subsequent calls, until
// all children have returned a non-running status, combining any errors, and returning success if there were no
// failures or errors (otherwise failure), repeating this cycle for subsequent ticks. It's the fan-out-and-converge
// idiom Parallel (below) generalizes with success/failure thresholds.
func Fork() Tick {
	var (
		remaining []Node
		status    Status
		err       error
	)
	return func(children []Node) (Status, error) {
		if status == 0 && err == nil {
			// cycle start
			status = Success
			remaining = make([]Node, len(children))
			copy(remaining, children)
		}
		count := len(remaining)
		outputs := make(chan func(), count)
		for _, node := range remaining {
			go func(node Node) {
				rs, re := node.Tick()
				outputs <- func() {
					if re != nil {
						rs = Failure
						if err != nil {
							err = fmt.Errorf("%s | %s", err.Error(), re.Error())
						} else {
							err = re
						}
					}
					switch rs {
					case Running:
						remaining = append(remaining, node)
					case Success:
						// success is the initial status (until 1+ failures)
					default:
						status = Failure
					}
				}
			}(node)
		}
		remaining = remaining[:0]
		for x := 0; x < count; x++ {
			(<-outputs)()
		}
		if len(remaining) == 0 {
			// cycle end
			rs, re := status, err
			status, err = 0, nil
			return rs, re
		}
		return Running, nil
	}
}

// Parallel constructs a composite Node that ticks every child in the same tick, independent of earlier children's
// results (unlike Sequence/Selector, there is no short-circuiting). successThreshold and failureThreshold are the
// M/N of the spec's Parallel policy, with M+N expected to exceed the child count:
//
//   - reports Success as soon as >= successThreshold children report Success
//   - reports Failure as soon as >= failureThreshold children report Failure (Aborted counts as Failure)
//   - otherwise reports Running
//
// If both thresholds are crossed in the same tick, success wins: an explicit, documented resolution of the source's
// ambiguous tie-break, not a guess (see DESIGN.md). On termination, all still-running children are aborted. An
// empty child list reports Success iff successThreshold == 0, else Failure.
func Parallel(children []Node, successThreshold, failureThreshold int, tc *TickContext) Node {
	update := func(children []Node, _ *TickContext) (Status, error) {
		if len(children) == 0 {
			if successThreshold == 0 {
				return Success, nil
			}
			return Failure, nil
		}

		type outcome struct {
			status Status
			err    error
		}
		results := make([]outcome, len(children))

		outputs := make(chan func(), len(children))
		for i, node := range children {
			go func(i int, node Node) {
				status, err := node.Tick()
				outputs <- func() { results[i] = outcome{status: status.Status(), err: err} }
			}(i, node)
		}
		for range children {
			(<-outputs)()
		}

		var successCount, failureCount int
		var combinedErr error
		for _, r := range results {
			if r.err != nil {
				if combinedErr == nil {
					combinedErr = r.err
				} else {
					combinedErr = fmt.Errorf("%s | %s", combinedErr.Error(), r.err.Error())
				}
			}
			switch r.status {
			case Success:
				successCount++
			case Failure, Aborted:
				failureCount++
			}
		}

		abortRunning := func() {
			for i, r := range results {
				if r.status == Running {
					Abort(children[i])
				}
			}
		}

		if successCount >= successThreshold {
			abortRunning()
			return Success, combinedErr
		}
		if failureCount >= failureThreshold {
			abortRunning()
			return Failure, combinedErr
		}
		return Running, combinedErr
	}
	rt := NewRuntime(update, WithOnAbort(func() { abortAll(children) }))
	return rt.Node(children, tc)
}
