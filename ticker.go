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
	"context"
	"errors"
	"sync"
	"time"
)

type (
	// Ticker models the tick scheduler of a single agent: drift-bounded, single-outstanding-tick.
	Ticker interface {
		// Done will close when the ticker is fully stopped.
		Done() <-chan struct{}

		// Err will return any error that occurs.
		Err() error

		// Stop shuts down the ticker asynchronously, discarding any pending fire.
		Stop()
	}

	// DeadlineExceededFunc is called (non-fatally) whenever a tick runs past its deadline; the scheduler does not
	// wait on it, and skips queuing a second concurrent tick of the same node while it finishes in the background.
	DeadlineExceededFunc func(duration time.Duration)

	// tickerCore is a drift-bounded, single-outstanding-tick scheduler: the next fire time is computed as
	// previous_fire + period rather than now + period, so a slow tick does not push the schedule forward
	// indefinitely, and at most one tick of node is ever in flight.
	tickerCore struct {
		ctx      context.Context
		cancel   context.CancelFunc
		node     Node
		period   time.Duration
		deadline time.Duration
		onExceed DeadlineExceededFunc
		done     chan struct{}
		stop     chan struct{}
		once     sync.Once
		mutex    sync.Mutex
		err      error
	}

	// tickerStopOnFailure is an implementation of a ticker that will run until the first error
	tickerStopOnFailure struct {
		Ticker
	}
)

var (
	// errExitOnFailure is a specific error used internally to exit tickers constructed with NewTickerStopOnFailure,
	// and won't be returned by the tickerStopOnFailure implementation
	errExitOnFailure = errors.New("errExitOnFailure")
)

// NewTicker constructs a Ticker that drives node every period, enforcing deadline as the maximum time budget for a
// single tick: if a tick is still running when deadline elapses, onExceed (if non-nil) is notified with the
// overrun duration and the scheduler moves on without waiting for it, skipping any fire that would otherwise
// overlap it. Panics if ctx is nil, period or deadline is <= 0, or node is nil.
func NewTicker(ctx context.Context, period, deadline time.Duration, onExceed DeadlineExceededFunc, node Node) Ticker {
	if ctx == nil {
		panic(errors.New("automata.NewTicker nil context"))
	}

	if period <= 0 {
		panic(errors.New("automata.NewTicker period <= 0"))
	}

	if deadline <= 0 {
		panic(errors.New("automata.NewTicker deadline <= 0"))
	}

	if node == nil {
		panic(errors.New("automata.NewTicker nil node"))
	}

	result := &tickerCore{
		node:     node,
		period:   period,
		deadline: deadline,
		onExceed: onExceed,
		done:     make(chan struct{}),
		stop:     make(chan struct{}),
	}

	result.ctx, result.cancel = context.WithCancel(ctx)

	go result.run()

	return result
}

// NewTickerStopOnFailure returns a new Ticker that will exit on the first Failure, but won't return a non-nil Err
// UNLESS there was an actual error returned, it's built on top of the same core implementation provided by NewTicker,
// and uses that function directly, note that it will panic if the node is nil, the panic cases for NewTicker also
// apply.
func NewTickerStopOnFailure(ctx context.Context, period, deadline time.Duration, onExceed DeadlineExceededFunc, node Node) Ticker {
	if node == nil {
		panic(errors.New("automata.NewTickerStopOnFailure nil node"))
	}

	return tickerStopOnFailure{
		Ticker: NewTicker(
			ctx,
			period,
			deadline,
			onExceed,
			func() (Tick, []Node) {
				tick, children := node()
				if tick == nil {
					return nil, children
				}
				return func(children []Node) (Status, error) {
					status, err := tick(children)
					if err == nil && status == Failure {
						err = errExitOnFailure
					}
					return status, err
				}, children
			},
		),
	}
}

func (t *tickerCore) run() {
	var err error
	nextFire := time.Now().Add(t.period)
	timer := time.NewTimer(time.Until(nextFire))
	defer timer.Stop()

TickLoop:
	for err == nil {
		select {
		case <-t.ctx.Done():
			err = t.ctx.Err()
			break TickLoop
		case <-t.stop:
			break TickLoop
		case <-timer.C:
			err = t.fire()
			nextFire = nextFire.Add(t.period)
			if now := time.Now(); nextFire.Before(now) {
				// fallen more than one period behind (the prior tick likely overran its deadline): skip ahead to
				// the nearest future slot instead of bursting through the backlog.
				behind := now.Sub(nextFire)
				skips := behind/t.period + 1
				nextFire = nextFire.Add(skips * t.period)
			}
			timer.Reset(time.Until(nextFire))
		}
	}
	t.mutex.Lock()
	t.err = err
	t.mutex.Unlock()
	t.Stop()
	t.cancel()
	close(t.done)
}

// fire ticks node once, giving it up to t.deadline to complete. If it overruns, onExceed is notified and fire
// returns immediately without error (a deadline overrun is not itself a tick failure); the goroutine running the
// slow tick is left to finish on its own and its eventual result is discarded, preserving the single-outstanding
// guarantee from the scheduler's perspective.
func (t *tickerCore) fire() error {
	type result struct {
		status Status
		err    error
	}
	out := make(chan result, 1)
	start := time.Now()
	go func() {
		status, err := t.node.Tick()
		out <- result{status: status, err: err}
	}()

	select {
	case r := <-out:
		return r.err
	case <-time.After(t.deadline):
		if t.onExceed != nil {
			t.onExceed(time.Since(start))
		}
		return nil
	}
}

func (t *tickerCore) Done() <-chan struct{} {
	return t.done
}

func (t *tickerCore) Err() error {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.err
}

func (t *tickerCore) Stop() {
	t.once.Do(func() {
		close(t.stop)
	})
}

func (t tickerStopOnFailure) Err() error {
	err := t.Ticker.Err()
	if err == errExitOnFailure {
		return nil
	}
	return err
}
