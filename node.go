/*
   Copyright 2019 Joseph Cumines

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

import "errors"

type (
	// Node represents a node in a tree, that can be ticked. It is a back-reference-free value: a Node never owns
	// a pointer to its parent, only to its own tick and children, matching the ownership direction of the tree.
	Node func() (Tick, []Node)

	// Tick represents the logic for a node, which may or may not be stateful.
	Tick func(children []Node) (Status, error)
)

var (
	// ErrNotInitialized is returned when Tick is called on a node that has not been wired into a tree (has a nil
	// tick), e.g. a Node whose function returns a nil Tick.
	ErrNotInitialized = errors.New("automata: node not initialized")

	// ErrChildUnavailable is returned when a parent attempts to tick a child that has crashed and has not yet been
	// restarted by its supervisor.
	ErrChildUnavailable = errors.New("automata: child unavailable")
)

// New constructs a new node out of a tick and children, aliasing NewNode with vararg support for less indentation.
func New(tick Tick, children ...Node) Node {
	return NewNode(tick, children)
}

// NewNode constructs a new node out of a tick and children, via the package's node factory. No frame metadata is
// attached; Frame derives one from the node itself when asked.
func NewNode(tick Tick, children []Node) Node {
	return factory(tick, children)
}

// Tick runs the node's tick function with its children.
func (n Node) Tick() (Status, error) {
	if n == nil {
		return Failure, errors.New("automata: cannot tick a nil node")
	}
	tick, children := n()
	if tick == nil {
		return Failure, ErrNotInitialized
	}
	return tick(children)
}
