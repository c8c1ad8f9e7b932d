// Package supervisor implements the supervision topology of spec component G: per-node isolation, restart
// policies (one_for_one / one_for_all), restart intensity with exponential backoff, and depth-first shutdown.
// It is grounded on the supervisor/restart-policy idiom common to process-supervision trees (see
// other_examples/96475825_everydev1618-govega__supervisor.go.go for the ChildRestart/SupervisorStrategy shape this
// package adapts), wired onto this repository's automata.Node tree instead of OS/goroutine processes: a supervised
// slot is exposed as a plain automata.Node, so it can be wired directly into any composite (Sequence, Parallel,
// ...) as a child, exactly like an unsupervised one.
package supervisor

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/corvidworks/automata"
)

// Strategy determines how a crash in one child affects its siblings under the same Supervisor.
type Strategy int

const (
	// OneForOne restarts only the child that crashed.
	OneForOne Strategy = iota
	// OneForAll restarts every child under the supervisor when any one of them crashes.
	OneForAll
)

func (s Strategy) String() string {
	switch s {
	case OneForOne:
		return "one_for_one"
	case OneForAll:
		return "one_for_all"
	default:
		return "unknown"
	}
}

const (
	// DefaultMaxRestarts and DefaultWindow give the spec's default restart intensity: 5 crashes per hour before a
	// supervisor gives up on a child (and reports it permanently unavailable).
	DefaultMaxRestarts = 5
	DefaultWindow      = time.Hour
)

// NodeFactory builds a fresh node for a supervised slot. It is called once on Add, and again on every restart: a
// Runtime-backed automata.Node closes over its state entirely at construction, so there is no way to "restart" one
// in place, only to build a replacement and install it before the slot's next tick (per the node runtime
// contract's on_init-before-first-tick requirement).
type NodeFactory func() (automata.Node, error)

// ChildSpec names a supervised child and the factory used to (re)build it.
type ChildSpec struct {
	Name string
	New  NodeFactory
}

// Event reports a restart-related occurrence, for wiring into the observability package's structured logger.
type Event struct {
	Name    string
	Attempt int
	Err     error
	GaveUp  bool
}

// EventFunc receives supervisor events; it must not block.
type EventFunc func(Event)

// Supervisor owns a set of supervised slots sharing a Strategy and restart intensity policy.
type Supervisor struct {
	strategy    Strategy
	maxRestarts int
	window      time.Duration
	newBackOff  func() backoff.BackOff
	onEvent     EventFunc

	mu     sync.Mutex
	slots  []*slot
	byName map[string]*slot
}

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithMaxRestarts overrides the default restart intensity (crashes allowed within window before giving up).
// maxRestarts <= 0 means unlimited.
func WithMaxRestarts(maxRestarts int, window time.Duration) Option {
	return func(s *Supervisor) {
		s.maxRestarts = maxRestarts
		s.window = window
	}
}

// WithBackOff overrides the backoff.BackOff constructor used per restart attempt. Defaults to a fresh
// backoff.ExponentialBackOff per slot (cenkalti/backoff/v4), capped at 30s, with no max elapsed time (restart
// intensity, not elapsed time, bounds the retry budget).
func WithBackOff(newBackOff func() backoff.BackOff) Option {
	return func(s *Supervisor) { s.newBackOff = newBackOff }
}

// WithEventFunc registers a callback invoked on every restart attempt and give-up.
func WithEventFunc(f EventFunc) Option {
	return func(s *Supervisor) { s.onEvent = f }
}

// New constructs a Supervisor with the given Strategy.
func New(strategy Strategy, opts ...Option) *Supervisor {
	s := &Supervisor{
		strategy:    strategy,
		maxRestarts: DefaultMaxRestarts,
		window:      DefaultWindow,
		byName:      map[string]*slot{},
	}
	s.newBackOff = func() backoff.BackOff {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = 250 * time.Millisecond
		b.MaxInterval = 30 * time.Second
		b.MaxElapsedTime = 0
		return b
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type slot struct {
	sup  *Supervisor
	spec ChildSpec

	mu          sync.Mutex
	current     automata.Node
	backoff     backoff.BackOff
	failures    []time.Time
	availableAt time.Time
	givenUp     bool
}

// Add spawns spec's initial node and returns the supervised automata.Node to wire into the tree. Returns an error
// if the name is already in use, or if the initial spawn fails.
func (s *Supervisor) Add(spec ChildSpec) (automata.Node, error) {
	if spec.Name == "" {
		return nil, errors.New("supervisor: child name must not be empty")
	}
	if spec.New == nil {
		return nil, errors.New("supervisor: child factory must not be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byName[spec.Name]; exists {
		return nil, fmt.Errorf("supervisor: child %q already registered", spec.Name)
	}

	node, err := spec.New()
	if err != nil {
		return nil, fmt.Errorf("supervisor: spawn %q: %w", spec.Name, err)
	}

	sl := &slot{sup: s, spec: spec, current: node, backoff: s.newBackOff()}
	s.slots = append(s.slots, sl)
	s.byName[spec.Name] = sl

	return automata.New(func(children []automata.Node) (automata.Status, error) {
		return sl.tick()
	}), nil
}

// tick drives the slot's current node, recovering a panicking update as a crash (per the error taxonomy's
// NodeCrash), and applying the restart policy on any crash (panic or returned error).
func (sl *slot) tick() (status automata.Status, err error) {
	sl.mu.Lock()
	if sl.givenUp {
		sl.mu.Unlock()
		return automata.Failure, automata.ErrChildUnavailable
	}
	if !sl.availableAt.IsZero() {
		if time.Now().Before(sl.availableAt) {
			sl.mu.Unlock()
			return automata.Failure, automata.ErrChildUnavailable
		}
		node, respawnErr := sl.spec.New()
		if respawnErr != nil {
			sl.mu.Unlock()
			sl.sup.onCrash(sl, fmt.Errorf("supervisor: respawn %q: %w", sl.spec.Name, respawnErr))
			return automata.Failure, automata.ErrChildUnavailable
		}
		sl.current = node
		sl.availableAt = time.Time{}
	}
	node := sl.current
	sl.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			crashErr := fmt.Errorf("supervisor: child %q crashed: %v", sl.spec.Name, r)
			sl.sup.onCrash(sl, crashErr)
			status, err = automata.Failure, crashErr
		}
	}()

	status, err = node.Tick()
	if err != nil {
		sl.sup.onCrash(sl, err)
	}
	return status, err
}

// onCrash applies the supervisor's Strategy in response to a crash of sl: computes a backoff delay (advancing
// restart intensity bookkeeping), and marks the affected slot(s) unavailable until it elapses. One_for_all marks
// every sibling unavailable, each for the next delay of its own slot's backoff, and aborts their current nodes
// immediately, so state is not left
// straddling the restart; one_for_one only touches the slot that crashed.
func (s *Supervisor) onCrash(sl *slot, err error) {
	switch s.strategy {
	case OneForAll:
		s.mu.Lock()
		siblings := append([]*slot(nil), s.slots...)
		s.mu.Unlock()
		for _, sib := range siblings {
			s.markUnavailable(sib, err, sib == sl)
		}
	default:
		s.markUnavailable(sl, err, true)
	}
}

func (s *Supervisor) markUnavailable(sl *slot, cause error, isOrigin bool) {
	sl.mu.Lock()
	if sl.givenUp {
		sl.mu.Unlock()
		return
	}
	if isOrigin {
		now := time.Now()
		sl.failures = append(sl.failures, now)
		if s.maxRestarts > 0 && s.window > 0 {
			cutoff := now.Add(-s.window)
			pruned := sl.failures[:0]
			for _, t := range sl.failures {
				if t.After(cutoff) {
					pruned = append(pruned, t)
				}
			}
			sl.failures = pruned
		}
	}
	if s.maxRestarts > 0 && len(sl.failures) > s.maxRestarts {
		sl.givenUp = true
		node := sl.current
		sl.current = nil
		sl.mu.Unlock()
		automata.Abort(node)
		s.emit(Event{Name: sl.spec.Name, Attempt: len(sl.failures), Err: cause, GaveUp: true})
		return
	}
	delay := sl.backoff.NextBackOff()
	if delay == backoff.Stop {
		delay = 0
	}
	sl.availableAt = time.Now().Add(delay)
	node := sl.current
	sl.current = nil
	attempt := len(sl.failures)
	sl.mu.Unlock()
	automata.Abort(node)
	s.emit(Event{Name: sl.spec.Name, Attempt: attempt, Err: cause})
}

func (s *Supervisor) emit(e Event) {
	if s.onEvent != nil {
		s.onEvent(e)
	}
}

// Shutdown aborts every supervised slot depth-first (reverse registration order), one after another; each
// automata.Abort runs the slot's on_terminate(Aborted) side effects synchronously before the next slot is aborted.
// grace is not used: Shutdown sets no time limit on the aborts and returns only once every one has returned.
func (s *Supervisor) Shutdown(grace time.Duration) {
	s.mu.Lock()
	slots := append([]*slot(nil), s.slots...)
	s.mu.Unlock()

	_ = grace // documented budget for callers layering a deadline; Abort below is synchronous by construction.
	for i := len(slots) - 1; i >= 0; i-- {
		sl := slots[i]
		sl.mu.Lock()
		node := sl.current
		sl.current = nil
		sl.givenUp = true
		sl.mu.Unlock()
		automata.Abort(node)
	}
}

// WhichChildren reports the name and availability of every supervised slot, for diagnostics.
func (s *Supervisor) WhichChildren() map[string]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]bool, len(s.slots))
	for _, sl := range s.slots {
		sl.mu.Lock()
		out[sl.spec.Name] = !sl.givenUp && sl.availableAt.IsZero()
		sl.mu.Unlock()
	}
	return out
}
