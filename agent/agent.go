// Package agent ties together the pieces built elsewhere in this module into one runnable unit: a root
// automata.Node, its TickContext, a blackboard.Board, an optional supervisor.Supervisor, and the observability
// stack, driven by the automata package's drift-bounded Ticker (spec component F). This is the process-per-node
// idiom's top-level analog: one Agent is one independently schedulable, independently supervised tree.
package agent

import (
	"context"
	"sync"
	"time"

	"github.com/opentracing/opentracing-go"
	"go.uber.org/zap"

	"github.com/corvidworks/automata"
	"github.com/corvidworks/automata/blackboard"
	"github.com/corvidworks/automata/observability"
	"github.com/corvidworks/automata/supervisor"
)

// Config configures an Agent's scheduling and observability.
type Config struct {
	ID string

	// Period is the root tick interval; Deadline bounds a single tick's duration, defaulting to Period if zero.
	Period   time.Duration
	Deadline time.Duration

	// ShutdownTimeout is the grace Stop(0) passes to the supervisor's Shutdown, matching the agent document's
	// shutdown_timeout_ms. Supervisor.Shutdown does not use it to bound any wait (see its doc).
	ShutdownTimeout time.Duration

	Logger *observability.Logger
	Tracer *observability.Tracer

	// BlackboardBackend optionally backs the agent's Board with a distributed store (e.g. blackboard.RedisBackend)
	// for segments shared across agents.
	BlackboardBackend blackboard.Backend

	// Supervisor, if non-nil, is shut down depth-first alongside the agent on Stop.
	Supervisor *supervisor.Supervisor
}

// Agent owns one behavior tree's full runtime: scheduling, blackboard, supervision and observability.
type Agent struct {
	id              string
	period          time.Duration
	deadline        time.Duration
	shutdownTimeout time.Duration

	board *blackboard.Board
	tc    *automata.TickContext
	root  automata.Node

	logger *observability.Logger
	tracer *observability.Tracer
	sup    *supervisor.Supervisor

	mu        sync.Mutex
	tickCount uint64
	ticker    automata.Ticker
}

// New constructs an Agent around root, which must already be wired to tc (e.g. via config.Compile or direct
// construction). If tc.Blackboard is already set, it becomes the Agent's Board; otherwise New builds a Board from
// cfg.ID and cfg.BlackboardBackend and assigns it to tc.Blackboard, so nodes built against tc before the Agent
// existed see the same Board.
func New(cfg Config, root automata.Node, tc *automata.TickContext) *Agent {
	deadline := cfg.Deadline
	if deadline <= 0 {
		deadline = cfg.Period
	}
	board := tc.Blackboard
	if board == nil {
		board = blackboard.New(cfg.ID, cfg.BlackboardBackend)
		tc.Blackboard = board
	}
	return &Agent{
		id:              cfg.ID,
		period:          cfg.Period,
		deadline:        deadline,
		shutdownTimeout: cfg.ShutdownTimeout,
		board:           board,
		tc:              tc,
		root:            root,
		logger:          cfg.Logger,
		tracer:          cfg.Tracer,
		sup:             cfg.Supervisor,
	}
}

// Board returns the agent's blackboard.
func (a *Agent) Board() *blackboard.Board { return a.board }

// Start begins ticking the root node every period until ctx is canceled or Stop is called. It is not safe to call
// Start twice on the same Agent.
func (a *Agent) Start(ctx context.Context) {
	a.log().Info("agent_started")
	driver := automata.New(func([]automata.Node) (automata.Status, error) {
		return a.tick()
	})
	a.ticker = automata.NewTicker(ctx, a.period, a.deadline, a.onDeadlineExceeded, driver)
	go func() {
		<-a.ticker.Done()
		reason := "canceled"
		if err := a.ticker.Err(); err != nil {
			reason = err.Error()
		}
		a.log().Info("agent_terminated", zap.String("reason", reason))
	}()
}

func (a *Agent) tick() (automata.Status, error) {
	a.mu.Lock()
	a.tickCount++
	count := a.tickCount
	a.mu.Unlock()

	var span opentracing.Span
	if a.tracer != nil {
		span = a.tracer.StartSpan("tick")
	}
	a.tc.Advance(count, time.Now().Add(a.deadline), span)

	status, err := a.root.Tick()
	if span != nil {
		span.Finish()
	}
	return status, err
}

func (a *Agent) onDeadlineExceeded(d time.Duration) {
	a.log().Warn("tick_deadline_exceeded", observability.FieldDurationMS(d.Milliseconds()))
}

// Stop halts scheduling, aborts the root node (on_terminate(Aborted) propagates depth-first through the tree via
// automata.Abort), and shuts down the agent's supervisor, if any, in the same depth-first order. grace is passed to
// Supervisor.Shutdown, which does not use it to bound the shutdown; a zero grace falls back to the
// Config.ShutdownTimeout set at construction.
func (a *Agent) Stop(grace time.Duration) {
	if grace <= 0 {
		grace = a.shutdownTimeout
	}
	if a.ticker != nil {
		a.ticker.Stop()
		<-a.ticker.Done()
	}
	automata.Abort(a.root)
	if a.sup != nil {
		a.sup.Shutdown(grace)
	}
}

// NodeRestarted should be called by whatever owns the supervisor.EventFunc wiring (typically a thin closure passed
// to supervisor.WithEventFunc) to emit the spec's required node_restarted event through this agent's logger.
func (a *Agent) NodeRestarted(name string, err error) {
	reason := "restarted"
	if err != nil {
		reason = err.Error()
	}
	a.log().Warn("node_restarted", observability.FieldNode(name), observability.FieldReason(reason))
}

// Visualize renders the current tree using the automata package's default (xlab/treeprint-backed) printer.
func (a *Agent) Visualize() string {
	return a.root.String()
}

func (a *Agent) log() *observability.Logger {
	if a.logger != nil {
		return a.logger
	}
	return observability.New(a.id, observability.LogConfig{})
}
