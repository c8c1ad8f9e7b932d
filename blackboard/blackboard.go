// Package blackboard provides the shared key/value store used by Conditional decorators and action handlers, with
// publish/subscribe semantics over changes. A Board is scoped to one agent; cross-agent sharing is opt-in, via
// Key.Segment, and (optionally) a distributed backend such as the one in this package's redis.go.
package blackboard

import (
	"sync"
	"time"
)

// Key namespaces a blackboard entry. Segment is the first tuple field used for namespacing (per spec: "opaque,
// typically tuple-valued, used for namespacing by segment = first field"); Name identifies the entry within it.
type Key struct {
	Segment string
	Name    string
}

// Op identifies the kind of change delivered to a subscriber.
type Op int

const (
	// Put indicates a value was written (created or overwritten).
	Put Op = iota
	// Remove indicates a value was deleted.
	Remove
)

func (o Op) String() string {
	if o == Remove {
		return "remove"
	}
	return "put"
}

// Change describes one mutation of the board, delivered to subscribers matching its key.
type Change struct {
	Key       Key
	Op        Op
	Old       any
	New       any
	Timestamp time.Time
	Origin    string
}

// Pattern selects which changes a subscriber receives. The zero value matches nothing; use AllPattern, SegmentPattern,
// or KeyPattern to construct one.
type Pattern struct {
	all     bool
	segment string
	name    string
	byName  bool
}

// AllPattern matches every change on the board.
func AllPattern() Pattern { return Pattern{all: true} }

// SegmentPattern matches every change within a segment.
func SegmentPattern(segment string) Pattern { return Pattern{segment: segment} }

// KeyPattern matches changes to exactly one key.
func KeyPattern(key Key) Pattern { return Pattern{segment: key.Segment, name: key.Name, byName: true} }

func (p Pattern) match(key Key) bool {
	if p.all {
		return true
	}
	if p.segment != key.Segment {
		return false
	}
	return !p.byName || p.name == key.Name
}

type entry struct {
	value   any
	written time.Time
}

type subscriber struct {
	pattern Pattern
	ch      chan Change
}

// Board is a per-agent keyed store with last-writer-wins semantics for local writes, and pub/sub delivery of Change
// events to subscribers active at the moment of the write (no retroactive delivery).
type Board struct {
	origin string

	mu          sync.RWMutex
	data        map[Key]entry
	subscribers map[int]*subscriber
	nextSubID   int

	backend Backend
}

// Backend is implemented by optional distributed segment adapters (see redis.go); a Board with no backend is purely
// in-memory and local to the owning agent.
type Backend interface {
	Put(key Key, value any) error
	Get(key Key) (any, bool, error)
	Remove(key Key) error
}

// New constructs a Board. origin identifies the owning agent for Change.Origin and for local last-writer-wins
// ordering; backend may be nil, in which case the board is purely in-memory.
func New(origin string, backend Backend) *Board {
	return &Board{
		origin:      origin,
		data:        make(map[Key]entry),
		subscribers: make(map[int]*subscriber),
		backend:     backend,
	}
}

// Put writes value at key, last-writer-wins within this board, and notifies matching subscribers.
func (b *Board) Put(key Key, value any) error {
	if b.backend != nil && key.Segment != "" {
		if err := b.backend.Put(key, value); err != nil {
			return err
		}
	}
	b.mu.Lock()
	old, existed := b.data[key]
	b.data[key] = entry{value: value, written: time.Now()}
	b.mu.Unlock()
	var oldValue any
	if existed {
		oldValue = old.value
	}
	b.publish(Change{Key: key, Op: Put, Old: oldValue, New: value, Timestamp: time.Now(), Origin: b.origin})
	return nil
}

// Get returns the value at key and whether it was present. A read following a Put from the same Board observes
// the Put (program-order within one Board); cross-agent consistency is only as strong as the configured Backend.
func (b *Board) Get(key Key) (any, bool) {
	b.mu.RLock()
	e, ok := b.data[key]
	b.mu.RUnlock()
	if ok {
		return e.value, true
	}
	if b.backend != nil && key.Segment != "" {
		if v, ok, err := b.backend.Get(key); err == nil && ok {
			return v, true
		}
	}
	return nil, false
}

// Remove deletes the value at key, if present, and notifies matching subscribers.
func (b *Board) Remove(key Key) {
	if b.backend != nil && key.Segment != "" {
		_ = b.backend.Remove(key)
	}
	b.mu.Lock()
	old, existed := b.data[key]
	delete(b.data, key)
	b.mu.Unlock()
	if !existed {
		return
	}
	b.publish(Change{Key: key, Op: Remove, Old: old.value, Timestamp: time.Now(), Origin: b.origin})
}

// Subscribe registers interest in changes matching pattern, returning a channel of Change events and an
// unsubscribe function. The channel is buffered; a slow subscriber that fills its buffer is treated as disconnected
// and unsubscribed on the next publish attempt.
func (b *Board) Subscribe(pattern Pattern) (<-chan Change, func()) {
	ch := make(chan Change, 64)
	b.mu.Lock()
	id := b.nextSubID
	b.nextSubID++
	b.subscribers[id] = &subscriber{pattern: pattern, ch: ch}
	b.mu.Unlock()
	unsubscribe := func() {
		b.mu.Lock()
		if s, ok := b.subscribers[id]; ok {
			delete(b.subscribers, id)
			close(s.ch)
		}
		b.mu.Unlock()
	}
	return ch, unsubscribe
}

func (b *Board) publish(c Change) {
	b.mu.RLock()
	targets := make([]*subscriber, 0, len(b.subscribers))
	var ids []int
	for id, s := range b.subscribers {
		if s.pattern.match(c.Key) {
			targets = append(targets, s)
			ids = append(ids, id)
		}
	}
	b.mu.RUnlock()
	for i, s := range targets {
		select {
		case s.ch <- c:
		default:
			// subscriber's buffer is full: treat as disconnected and drop it.
			b.mu.Lock()
			if cur, ok := b.subscribers[ids[i]]; ok && cur == s {
				delete(b.subscribers, ids[i])
				close(s.ch)
			}
			b.mu.Unlock()
		}
	}
}
