// Package runtime holds the per-instance state of a model and the propagation
// algorithm walking the shared graph in depth order.
package runtime

import (
	"log/slog"

	"github.com/AnatoleLucet/cascade/internal/definition"
	"github.com/AnatoleLucet/cascade/internal/graph"
	"github.com/AnatoleLucet/cascade/internal/telemetry"
)

type Config struct {
	// Model names the model in logs and telemetry.
	Model string

	Logger   *slog.Logger
	Recorder telemetry.Recorder

	// OnError receives failures recovered from computations and user
	// callbacks. When nil, those panics propagate to the caller.
	OnError func(error)
}

// Instance is the state of one model instance. Every exported method is safe
// for concurrent use and may be called from inside the instance's own
// computations and callbacks.
type Instance struct {
	mu reentrantMutex

	graph  *graph.Graph
	config Config

	// indexed by node index
	cache    []any
	hasValue []bool
	stale    []bool        // value may be outdated, recheck before reading
	changed  []uint64      // clock of the last value change
	verified []uint64      // clock at which the value was last known current
	counts   []int         // active users whose path contains the node
	users    [][]*observer // users reading the node directly

	clock uint64

	registered map[any]*observer

	queue    *queue
	fence    int
	draining bool
}

// New creates an instance. Fundamental properties start at their default,
// computed ones are evaluated on first read.
func New(g *graph.Graph, config Config) *Instance {
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	if config.Recorder == nil {
		config.Recorder = telemetry.Nop{}
	}

	n := len(g.Nodes)
	in := &Instance{
		graph:      g,
		config:     config,
		cache:      make([]any, n),
		hasValue:   make([]bool, n),
		stale:      make([]bool, n),
		changed:    make([]uint64, n),
		verified:   make([]uint64, n),
		counts:     make([]int, n),
		users:      make([][]*observer, n),
		registered: make(map[any]*observer),
		queue:      newQueue(g),
	}

	for _, node := range g.Nodes {
		if node.Kind == definition.KindFundamental {
			in.cache[node.Index] = node.Initial()
			in.hasValue[node.Index] = true
		} else {
			in.stale[node.Index] = true
		}
	}

	return in
}

// Get returns the current value of node.
func (in *Instance) Get(node *graph.Node) any {
	in.mu.Lock()
	defer in.mu.Unlock()

	value := in.read(node)
	in.flush()
	return value
}

// Set writes a fundamental property and propagates the change unless the
// instance is fenced. It reports whether the value changed.
func (in *Instance) Set(node *graph.Node, value any) bool {
	in.mu.Lock()
	defer in.mu.Unlock()

	changed := in.write(node, value)
	in.flush()
	return changed
}

func (in *Instance) read(node *graph.Node) any {
	if in.stale[node.Index] {
		in.refresh(node)
	}
	return in.cache[node.Index]
}

func (in *Instance) write(node *graph.Node, value any) bool {
	i := node.Index

	if in.hasValue[i] && node.Compare(in.cache[i], value) {
		in.config.Recorder.Write(in.config.Model, node.Name, false)
		return false
	}

	in.cache[i] = value
	in.hasValue[i] = true
	in.tick(node)
	in.config.Recorder.Write(in.config.Model, node.Name, true)

	in.notify(node)
	return true
}

func (in *Instance) tick(node *graph.Node) {
	in.clock++
	in.changed[node.Index] = in.clock
	in.verified[node.Index] = in.clock
}

// notify tells everything reading node that its value changed. Observed
// dependents are queued for recomputation, unobserved ones are only marked
// stale and wait for a read.
func (in *Instance) notify(node *graph.Node) {
	for _, dep := range node.Dependents() {
		in.invalidate(dep)

		if in.counts[dep.Index] > 0 {
			in.queue.Insert(task{node: dep})
		}
	}

	for _, u := range in.users[node.Index] {
		if u.active {
			in.queue.Insert(task{user: u})
		}
	}
}

// invalidate marks node and everything depending on it as stale. A stale node
// only has stale dependents, so the walk stops at the first stale one.
func (in *Instance) invalidate(node *graph.Node) {
	if in.stale[node.Index] {
		return
	}
	in.stale[node.Index] = true

	for _, dep := range node.Dependents() {
		in.invalidate(dep)
	}
}
