package runtime

import (
	"github.com/AnatoleLucet/cascade/internal/errs"
	"github.com/AnatoleLucet/cascade/internal/graph"
)

// refresh brings a stale node up to date. Dependencies are refreshed first; the
// node itself is only evaluated when one of them changed since it was last
// verified, or when it never had a value.
func (in *Instance) refresh(node *graph.Node) {
	i := node.Index

	args := make([]any, len(node.Dependencies))
	outdated := !in.hasValue[i]
	for j, dep := range node.Dependencies {
		args[j] = in.read(dep)
		if in.changed[dep.Index] > in.verified[i] {
			outdated = true
		}
	}

	if !outdated {
		in.stale[i] = false
		in.verified[i] = in.clock
		return
	}

	value, ok := in.evaluate(node, args)

	in.stale[i] = false
	in.verified[i] = in.clock

	if !ok {
		// keep the previous value, the failure went to the error handler
		return
	}

	if in.hasValue[i] && node.Compare(in.cache[i], value) {
		in.config.Recorder.Recompute(in.config.Model, node.Name, false)
		return
	}

	in.cache[i] = value
	in.hasValue[i] = true
	in.tick(node)
	in.config.Recorder.Recompute(in.config.Model, node.Name, true)

	in.notify(node)
}

// evaluate runs the node's patch when it has one and a previous value exists,
// its full computation otherwise.
func (in *Instance) evaluate(node *graph.Node, args []any) (value any, ok bool) {
	i := node.Index

	in.guard(node.Name, func() {
		if node.Patch != nil && in.hasValue[i] {
			value = node.Patch.Call(append([]any{in.cache[i]}, args...)...)
		} else {
			value = node.Compute.Call(args...)
		}
		ok = true
	})

	return value, ok
}

// guard runs fn and hands anything it panics with to the error handler. With
// no handler the panic keeps going.
func (in *Instance) guard(target string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			if in.config.OnError == nil {
				panic(r)
			}

			in.config.OnError(&errs.CallbackError{Target: target, Value: r})
		}
	}()

	fn()
}
