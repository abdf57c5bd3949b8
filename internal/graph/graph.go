// Package graph turns a validated property set into layered nodes. The graph is
// built once per model and shared, read-only, by every instance of it.
package graph

import (
	"log/slog"
	"slices"

	"github.com/AnatoleLucet/cascade/internal/definition"
	"github.com/AnatoleLucet/cascade/internal/errs"
)

type Node struct {
	*definition.Property

	// dense position in Graph.Nodes, used to index per-instance state
	Index int

	// layer index, assigned once during Build
	Depth int

	// resolved dependencies in argument order, duplicates included
	Dependencies []*Node

	// nodes reading this one, in placement order
	dependents []*Node
}

// Dependents returns the nodes that read n.
func (n *Node) Dependents() []*Node {
	return n.dependents
}

type Graph struct {
	Nodes  []*Node
	Layers [][]*Node

	byName map[string]*Node
}

type pending struct {
	node      *Node
	remaining []string
}

// Build places every property of set into layers. A node lands in the first
// layer after all of its dependencies have been placed; a pass that places
// nothing means the remaining properties can never be satisfied.
func Build(set *definition.Set, logger *slog.Logger) (*Graph, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	g := &Graph{
		Nodes:  make([]*Node, 0, set.Len()),
		byName: make(map[string]*Node, set.Len()),
	}

	working := make([]*pending, 0, set.Len())
	for _, name := range set.Names() {
		prop, _ := set.Get(name)
		node := &Node{Property: prop, Index: len(g.Nodes)}

		g.Nodes = append(g.Nodes, node)
		g.byName[name] = node
		working = append(working, &pending{node: node, remaining: prop.Edges()})
	}

	for depth := 0; len(working) > 0; depth++ {
		var layer []*Node
		rest := working[:0:0]

		for _, w := range working {
			if len(w.remaining) == 0 {
				w.node.Depth = depth
				layer = append(layer, w.node)
			} else {
				rest = append(rest, w)
			}
		}

		if len(layer) == 0 {
			stuck := make([]string, len(rest))
			for i, w := range rest {
				stuck[i] = w.node.Name
			}
			return nil, &errs.MalformedGraphError{Names: stuck}
		}

		for _, placed := range layer {
			for _, w := range rest {
				if i := slices.Index(w.remaining, placed.Name); i >= 0 {
					w.remaining = slices.Delete(w.remaining, i, i+1)
					placed.dependents = append(placed.dependents, w.node)
				}
			}
		}

		logger.Debug("placed layer", "depth", depth, "properties", names(layer))

		g.Layers = append(g.Layers, layer)
		working = rest
	}

	for _, node := range g.Nodes {
		node.Dependencies = make([]*Node, len(node.Property.Dependencies))
		for i, dep := range node.Property.Dependencies {
			node.Dependencies[i] = g.byName[dep]
		}
	}

	return g, nil
}

// Node looks up a node by property name.
func (g *Graph) Node(name string) (*Node, bool) {
	n, ok := g.byName[name]
	return n, ok
}

// MaxDepth is the depth of the deepest layer, or -1 for an empty graph.
func (g *Graph) MaxDepth() int {
	return len(g.Layers) - 1
}

// Path returns every node reachable from roots by following dependency edges,
// roots included, ordered by depth then index.
func (g *Graph) Path(roots []*Node) []*Node {
	seen := make([]bool, len(g.Nodes))
	var path []*Node

	var visit func(n *Node)
	visit = func(n *Node) {
		if seen[n.Index] {
			return
		}
		seen[n.Index] = true
		path = append(path, n)

		for _, dep := range n.Dependencies {
			visit(dep)
		}
	}
	for _, root := range roots {
		visit(root)
	}

	slices.SortFunc(path, func(a, b *Node) int {
		if a.Depth != b.Depth {
			return a.Depth - b.Depth
		}
		return a.Index - b.Index
	})
	return path
}

// Names returns the property names of each layer.
func (g *Graph) Names() [][]string {
	out := make([][]string, len(g.Layers))
	for i, layer := range g.Layers {
		out[i] = names(layer)
	}
	return out
}

func names(nodes []*Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name
	}
	return out
}
