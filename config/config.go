// Package config implements the node_spec interpreter of spec component I: a declarative, YAML-based description
// of a behavior tree, compiled into a running automata.Node topology. Struct tags and strict decoding follow the
// style of other_examples/f80cd1e8_comalice-statechartx__internal-core-machine.go.go (yaml-tagged domain structs),
// using gopkg.in/yaml.v3's KnownFields decoding so a typo'd or stray field is rejected at load time rather than
// silently ignored.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/corvidworks/automata"
	"github.com/corvidworks/automata/agent"
	"github.com/corvidworks/automata/blackboard"
	"github.com/corvidworks/automata/supervisor"
)

// Kind names a node_spec variant. The whitelist is intentionally closed: an unrecognized kind is a load-time error,
// not a silently-ignored no-op node.
type Kind string

const (
	KindSequence           Kind = "sequence"
	KindSelector           Kind = "selector"
	KindParallel           Kind = "parallel"
	KindSequenceWithMemory Kind = "sequence_with_memory"
	KindInverter           Kind = "inverter"
	KindRepeater           Kind = "repeater"
	KindTimeout            Kind = "timeout"
	KindConditional        Kind = "conditional"
	KindAction             Kind = "action"

	// KindRandomSelector, KindSwitch, KindAll and KindAny are supplemental composite variants (see variants.go),
	// beyond the core four the spec names, offered for the same reason the teacher library offers them as
	// general-purpose primitives.
	KindRandomSelector    Kind = "random_selector"
	KindSwitch            Kind = "switch"
	KindAll               Kind = "all"
	KindAny               Kind = "any"
	KindMemorizedSequence Kind = "memorized_sequence"
	KindMemorizedSelector Kind = "memorized_selector"

	// KindRateLimiter is a supplemental decorator wrapping RateLimiter.
	KindRateLimiter Kind = "rate_limiter"
	// KindNot is strict-binary inversion (see automata.NotNode), distinct from KindInverter.
	KindNot Kind = "not"
)

// KeySpec is the YAML shape of a blackboard.Key reference.
type KeySpec struct {
	Segment string `yaml:"segment"`
	Name    string `yaml:"name"`
}

// NodeSpec is the YAML schema for one node in the tree; its fields are interpreted according to Kind, per
// SPEC_FULL.md component I. Compile reads only the fields relevant to a node's Kind; a populated field that is
// irrelevant to that Kind is ignored, not rejected.
type NodeSpec struct {
	Kind Kind   `yaml:"kind"`
	Name string `yaml:"name,omitempty"`

	// composite (sequence/selector/parallel/sequence_with_memory)
	Children []NodeSpec `yaml:"children,omitempty"`

	// parallel
	SuccessThreshold int `yaml:"success_threshold,omitempty"`
	FailureThreshold int `yaml:"failure_threshold,omitempty"`

	// decorator: inverter/repeater/timeout/conditional wrap exactly one child
	Child *NodeSpec `yaml:"child,omitempty"`

	// repeater
	Count     int  `yaml:"count,omitempty"`
	UntilFail bool `yaml:"until_fail,omitempty"`

	// timeout, rate_limiter
	Duration string `yaml:"duration,omitempty"`

	// conditional
	Key      KeySpec `yaml:"key,omitempty"`
	Expected any     `yaml:"expected,omitempty"`
	Invert   bool    `yaml:"invert,omitempty"`

	// action
	Handler    string         `yaml:"handler,omitempty"`
	Parameters map[string]any `yaml:"parameters,omitempty"`

	// TickFreq is decoded from a node_spec's tick_freq field but not used: Compile ignores it, and every node of a
	// compiled tree is ticked at the owning agent's period.
	TickFreq string `yaml:"tick_freq,omitempty"`
}

// HandlerRegistry resolves an action's "handler" name to the ActionHandler implementation a host registered.
type HandlerRegistry interface {
	Lookup(name string) (automata.ActionHandler, bool)
}

// MapRegistry is the simplest HandlerRegistry: a plain name -> handler map.
type MapRegistry map[string]automata.ActionHandler

func (m MapRegistry) Lookup(name string) (automata.ActionHandler, bool) {
	h, ok := m[name]
	return h, ok
}

// Error is config's error taxonomy, wrapping the offending node's assigned path for diagnostics.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string { return fmt.Sprintf("config: %s: %v", e.Path, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

var (
	// ErrEmptyComposite is returned for a composite node_spec with zero children.
	ErrEmptyComposite = fmt.Errorf("composite node must have at least one child")
	// ErrUnknownKind is returned for a kind outside the closed whitelist.
	ErrUnknownKind = fmt.Errorf("unknown node kind")
	// ErrMissingChild is returned for a decorator node_spec with no child.
	ErrMissingChild = fmt.Errorf("decorator node must have exactly one child")
	// ErrUnknownHandler is returned when an action's handler name isn't registered.
	ErrUnknownHandler = fmt.Errorf("unregistered action handler")
	// ErrBadThreshold is returned for a parallel node_spec whose success or failure threshold is <= 0, or whose
	// success_threshold + failure_threshold does not exceed its child count.
	ErrBadThreshold = fmt.Errorf("parallel thresholds must be positive and sum to more than the child count")
)

// LoadNodeSpec strictly decodes a single node_spec document (a subtree, not a full agent document) from r:
// unrecognized fields are a load-time error (KnownFields equivalent via yaml.v3's Decoder.KnownFields(true)),
// matching the node_spec schema's closed-world intent. Most callers loading a full agent document want Load/Parse
// instead; LoadNodeSpec remains useful for compiling a standalone subtree (e.g. a supervisor ChildSpec.New factory
// that re-decodes its own root on every respawn).
func LoadNodeSpec(r io.Reader) (*NodeSpec, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var spec NodeSpec
	if err := dec.Decode(&spec); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	return &spec, nil
}

// AgentTypeBehaviorTree is the only supported value of Agent.Type (spec §6's "type=behavior_tree"); present as a
// named constant, rather than a bare literal, since Parse rejects anything else via ErrUnsupportedAgentType.
const AgentTypeBehaviorTree = "behavior_tree"

// Default values applied by Parse when the corresponding Agent field is left zero, per spec §6's
// "agent { ..., tick_freq_ms=50, max_restarts=5, max_restart_window_s=3600, shutdown_timeout_ms=5000, ... }".
const (
	DefaultTickFreqMS        = 50
	DefaultMaxRestarts       = supervisor.DefaultMaxRestarts
	DefaultMaxRestartWindowS = int(supervisor.DefaultWindow / time.Second)
	DefaultShutdownTimeoutMS = 5000
)

// Agent is the top-level node_spec document's schema (spec §6's Agent configuration schema): an agent's identity,
// scheduling and restart-intensity policy, and the behavior tree rooted at Root. It is the unit Load/Parse produce,
// as distinct from NodeSpec, which describes one node (composite/decorator/action) within Root.
type Agent struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name,omitempty"`
	// Type must be AgentTypeBehaviorTree if set at all; present in the schema for forward compatibility with other
	// agent kinds this module doesn't implement, not because this module recognizes more than one value.
	Type string `yaml:"type,omitempty"`

	TickFreqMS        int `yaml:"tick_freq_ms,omitempty"`
	MaxRestarts       int `yaml:"max_restarts,omitempty"`
	MaxRestartWindowS int `yaml:"max_restart_window_s,omitempty"`
	ShutdownTimeoutMS int `yaml:"shutdown_timeout_ms,omitempty"`

	Root NodeSpec `yaml:"root"`
}

var (
	// ErrMissingAgentID is returned for an agent document with an empty id.
	ErrMissingAgentID = fmt.Errorf("agent document must set id")
	// ErrUnsupportedAgentType is returned for a populated type other than AgentTypeBehaviorTree.
	ErrUnsupportedAgentType = fmt.Errorf("unsupported agent type")
)

// Load reads and strictly decodes an agent document from the file at path. See Parse for validation and defaulting.
func Load(path string) (*Agent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse strictly decodes an agent document from data (KnownFields(true), per spec §6's "unknown fields rejected"),
// applies the schema's documented defaults to zero-valued optional fields, and validates id/type.
func Parse(data []byte) (*Agent, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var a Agent
	if err := dec.Decode(&a); err != nil {
		return nil, fmt.Errorf("config: decode agent: %w", err)
	}

	if a.ID == "" {
		return nil, ErrMissingAgentID
	}
	if a.Type == "" {
		a.Type = AgentTypeBehaviorTree
	} else if a.Type != AgentTypeBehaviorTree {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAgentType, a.Type)
	}
	if a.TickFreqMS <= 0 {
		a.TickFreqMS = DefaultTickFreqMS
	}
	if a.MaxRestarts <= 0 {
		a.MaxRestarts = DefaultMaxRestarts
	}
	if a.MaxRestartWindowS <= 0 {
		a.MaxRestartWindowS = DefaultMaxRestartWindowS
	}
	if a.ShutdownTimeoutMS <= 0 {
		a.ShutdownTimeoutMS = DefaultShutdownTimeoutMS
	}

	return &a, nil
}

// BuildAgent compiles spec.Root and registers it as a single supervised child (named spec.ID) of a freshly
// constructed Supervisor governed by spec's restart-intensity policy (max_restarts within max_restart_window_s,
// §4.G), so a crash anywhere in the compiled tree is subject to the same restart policy the agent document declares
// rather than being supervised piecemeal. Extra supervisor.Options (e.g. WithEventFunc, WithBackOff) are applied
// after the restart-intensity option, so callers may override it if they need a different backoff policy than the
// package default.
func BuildAgent(spec *Agent, tc *automata.TickContext, registry HandlerRegistry, opts ...supervisor.Option) (automata.Node, *supervisor.Supervisor, error) {
	sopts := append([]supervisor.Option{
		supervisor.WithMaxRestarts(spec.MaxRestarts, time.Duration(spec.MaxRestartWindowS)*time.Second),
	}, opts...)
	sup := supervisor.New(supervisor.OneForOne, sopts...)

	root := spec.Root
	node, err := sup.Add(supervisor.ChildSpec{
		Name: spec.ID,
		New: func() (automata.Node, error) {
			return Compile(&root, tc, registry, nil)
		},
	})
	if err != nil {
		return nil, nil, err
	}
	return node, sup, nil
}

// NewAgent builds the full runtime for an agent document in one call: BuildAgent's compiled root plus supervisor,
// wrapped in an agent.Agent scheduling it at tick_freq_ms, with shutdown_timeout_ms as Stop's default grace (which
// the supervisor's Shutdown receives but does not use). tc must be the
// same TickContext passed through to the compiled tree's handlers (and, typically, left with a nil Blackboard so
// agent.New allocates and assigns one under spec.ID).
func NewAgent(spec *Agent, tc *automata.TickContext, registry HandlerRegistry, cfg agent.Config, opts ...supervisor.Option) (*agent.Agent, error) {
	root, sup, err := BuildAgent(spec, tc, registry, opts...)
	if err != nil {
		return nil, err
	}
	cfg.ID = spec.ID
	cfg.Period = time.Duration(spec.TickFreqMS) * time.Millisecond
	cfg.ShutdownTimeout = time.Duration(spec.ShutdownTimeoutMS) * time.Millisecond
	cfg.Supervisor = sup
	return agent.New(cfg, root, tc), nil
}

// Identity is the per-compiled-node metadata Compile assigns: a stable uuid (google/uuid) distinguishing
// topologically-identical nodes, and the dotted path to this node within the spec tree, for diagnostics and
// supervisor naming.
type Identity struct {
	ID   uuid.UUID
	Path string
	Name string
}

// Compile builds a running automata.Node tree from spec, resolving action handlers via registry and binding every
// node to tc. assign, if non-nil, is called once per compiled node with its assigned Identity (e.g. to register it
// with a supervisor under a stable name).
func Compile(spec *NodeSpec, tc *automata.TickContext, registry HandlerRegistry, assign func(Identity, automata.Node)) (automata.Node, error) {
	return compile(spec, tc, registry, assign, "root")
}

func compile(spec *NodeSpec, tc *automata.TickContext, registry HandlerRegistry, assign func(Identity, automata.Node), path string) (automata.Node, error) {
	if spec == nil {
		return nil, &Error{Path: path, Err: fmt.Errorf("nil node_spec")}
	}

	var (
		node automata.Node
		err  error
	)

	switch spec.Kind {
	case KindSequence, KindSelector, KindSequenceWithMemory, KindParallel, KindRandomSelector, KindSwitch, KindAll, KindAny, KindMemorizedSequence, KindMemorizedSelector:
		if len(spec.Children) == 0 {
			return nil, &Error{Path: path, Err: ErrEmptyComposite}
		}
		children := make([]automata.Node, len(spec.Children))
		for i := range spec.Children {
			children[i], err = compile(&spec.Children[i], tc, registry, assign, fmt.Sprintf("%s.children[%d]", path, i))
			if err != nil {
				return nil, err
			}
		}
		switch spec.Kind {
		case KindSequence:
			node = automata.Sequence(children, tc)
		case KindSelector:
			node = automata.Selector(children, tc)
		case KindSequenceWithMemory:
			node = automata.SequenceWithMemory(children, tc)
		case KindParallel:
			if spec.SuccessThreshold <= 0 || spec.FailureThreshold <= 0 || spec.SuccessThreshold+spec.FailureThreshold <= len(children) {
				return nil, &Error{Path: path, Err: ErrBadThreshold}
			}
			node = automata.Parallel(children, spec.SuccessThreshold, spec.FailureThreshold, tc)
		case KindRandomSelector:
			node = automata.RandomSelector(children, nil, tc)
		case KindSwitch:
			node = automata.SwitchNode(children, tc)
		case KindAll:
			node = automata.AllNode(children, tc)
		case KindAny:
			node = automata.AnyNode(children, tc)
		case KindMemorizedSequence:
			node = automata.MemorizedSequence(children, tc)
		case KindMemorizedSelector:
			node = automata.MemorizedSelector(children, tc)
		}

	case KindInverter, KindRepeater, KindTimeout, KindConditional, KindRateLimiter, KindNot:
		if spec.Child == nil {
			return nil, &Error{Path: path, Err: ErrMissingChild}
		}
		child, cErr := compile(spec.Child, tc, registry, assign, path+".child")
		if cErr != nil {
			return nil, cErr
		}
		switch spec.Kind {
		case KindInverter:
			node = automata.InverterNode(child, tc)
		case KindNot:
			node = automata.NotNode(child, tc)
		case KindRepeater:
			node = automata.Repeater(child, spec.Count, spec.UntilFail, tc)
		case KindTimeout:
			d, dErr := time.ParseDuration(spec.Duration)
			if dErr != nil {
				return nil, &Error{Path: path, Err: fmt.Errorf("bad duration %q: %w", spec.Duration, dErr)}
			}
			node = automata.Timeout(child, d, tc)
		case KindConditional:
			key := blackboard.Key{Segment: spec.Key.Segment, Name: spec.Key.Name}
			node = automata.Conditional(child, key, spec.Expected, spec.Invert, tc)
		case KindRateLimiter:
			d, dErr := time.ParseDuration(spec.Duration)
			if dErr != nil {
				return nil, &Error{Path: path, Err: fmt.Errorf("bad duration %q: %w", spec.Duration, dErr)}
			}
			node = automata.RateLimiter(child, d, tc)
		}

	case KindAction:
		if registry == nil {
			return nil, &Error{Path: path, Err: ErrUnknownHandler}
		}
		handler, ok := registry.Lookup(spec.Handler)
		if !ok {
			return nil, &Error{Path: path, Err: fmt.Errorf("%w: %q", ErrUnknownHandler, spec.Handler)}
		}
		node = automata.Action(handler, spec.Parameters, tc)

	default:
		return nil, &Error{Path: path, Err: fmt.Errorf("%w: %q", ErrUnknownKind, spec.Kind)}
	}

	if assign != nil {
		assign(Identity{ID: uuid.New(), Path: path, Name: spec.Name}, node)
	}

	return node, nil
}
