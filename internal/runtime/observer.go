package runtime

import (
	"fmt"

	"github.com/AnatoleLucet/cascade/internal/errs"
	"github.com/AnatoleLucet/cascade/internal/graph"
	"github.com/AnatoleLucet/cascade/internal/invoke"
)

// observer is a user registered on one instance. It is never removed, only
// deactivated, so reactivating it is cheap.
type observer struct {
	fn   *invoke.Func
	deps []*graph.Node

	// every node the user transitively reads, deps included
	path []*graph.Node

	// one below its deepest direct dependency
	depth int

	active bool
	queued bool
}

// Use registers the user identified by key, reading deps with fn, and invokes
// it once. A registered but inactive user is reactivated without being
// invoked. Use on an active user does nothing.
func (in *Instance) Use(key any, deps []*graph.Node, fn *invoke.Func) any {
	in.mu.Lock()
	defer in.mu.Unlock()

	if u, ok := in.registered[key]; ok {
		if !u.active {
			in.fenced(func() { in.activate(u) })
		}
		return nil
	}

	u := &observer{
		fn:   fn,
		deps: deps,
		path: in.graph.Path(deps),
	}
	for _, dep := range deps {
		u.depth = max(u.depth, dep.Depth+1)
	}

	// registered only once activation went through, a panicking read leaves
	// no trace of the user
	in.fenced(func() {
		in.activate(u)
		in.registered[key] = u

		seen := make(map[*graph.Node]bool, len(deps))
		for _, dep := range deps {
			if seen[dep] {
				continue
			}
			seen[dep] = true
			in.users[dep.Index] = append(in.users[dep.Index], u)
		}
	})

	return in.invoke(u)
}

// Activate reactivates a user previously registered with Use.
func (in *Instance) Activate(key any) error {
	in.mu.Lock()
	defer in.mu.Unlock()

	u, ok := in.registered[key]
	if !ok {
		return fmt.Errorf("%w: user was never registered with Use", errs.ErrUse)
	}
	if u.active {
		return nil
	}

	in.fenced(func() { in.activate(u) })
	return nil
}

// Deactivate stops a user from being invoked and releases its hold on the
// nodes it reads. The user stays registered.
func (in *Instance) Deactivate(key any) error {
	in.mu.Lock()
	defer in.mu.Unlock()

	u, ok := in.registered[key]
	if !ok {
		return fmt.Errorf("%w: user was never registered with Use", errs.ErrUse)
	}
	if !u.active {
		return nil
	}

	for _, node := range u.path {
		if in.counts[node.Index] == 0 {
			return errs.Internal("observer count of %q would become negative", node.Name)
		}
	}
	for _, node := range u.path {
		in.counts[node.Index]--
	}

	u.active = false
	return nil
}

// Registered reports whether key was registered with Use and whether it is
// currently active.
func (in *Instance) Registered(key any) (registered, active bool) {
	in.mu.Lock()
	defer in.mu.Unlock()

	u, ok := in.registered[key]
	if !ok {
		return false, false
	}
	return true, u.active
}

// Observers returns the number of active users whose path contains node.
func (in *Instance) Observers(node *graph.Node) int {
	in.mu.Lock()
	defer in.mu.Unlock()

	return in.counts[node.Index]
}

// activate must run fenced. Nodes observed for the first time may have gone
// stale while nobody watched them, they are brought up to date in depth order.
// If one of them panics the counts are restored and u stays inactive.
func (in *Instance) activate(u *observer) {
	var revived []*graph.Node
	for _, node := range u.path {
		in.counts[node.Index]++
		if in.counts[node.Index] == 1 && in.stale[node.Index] {
			revived = append(revived, node)
		}
	}

	done := false
	defer func() {
		if done {
			return
		}
		for _, node := range u.path {
			in.counts[node.Index]--
		}
	}()

	for _, node := range revived {
		in.read(node)
	}

	u.active = true
	done = true
}

func (in *Instance) invoke(u *observer) any {
	args := make([]any, len(u.deps))
	for i, dep := range u.deps {
		args[i] = in.read(dep)
	}

	var result any
	in.guard("user", func() {
		result = u.fn.Call(args...)
	})
	in.config.Recorder.Invoke(in.config.Model)

	return result
}
