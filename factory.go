/*
   Copyright 2026 Joseph Cumines

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

// factory is indirected so that tests, and in principle hosts wanting a different node representation, may
// substitute it; frame metadata is resolved lazily and lossily via Node.Frame / Tick.Frame (see frame.go), rather
// than captured eagerly at construction time.
var factory = defaultFactory

func defaultFactory(tick Tick, children []Node) Node {
	if children == nil {
		return leafNode(tick).node
	}
	return (&compositeNode{tick: tick, children: children}).node
}

type leafNode Tick

func (x leafNode) node() (Tick, []Node) { return Tick(x), nil }

type compositeNode struct {
	tick     Tick
	children []Node
}

func (x *compositeNode) node() (Tick, []Node) {
	return x.tick, x.children
}
