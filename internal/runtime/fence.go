package runtime

// Fence defers propagation until the matching Unfence. Writes still land
// immediately, only the notification of dependents waits. Fences nest.
func (in *Instance) Fence() {
	in.mu.Lock()
	defer in.mu.Unlock()

	in.fence++
}

// Unfence lifts one fence and propagates pending changes once the last one is
// gone. Unfencing an unfenced instance does nothing.
func (in *Instance) Unfence() {
	in.mu.Lock()
	defer in.mu.Unlock()

	in.unfence()
}

func (in *Instance) unfence() {
	if in.fence == 0 {
		in.config.Logger.Warn("unfence without a matching fence", "model", in.config.Model)
		return
	}

	in.fence--
	in.flush()
}

// Batch runs fn fenced, so all of its writes propagate in a single pass.
func (in *Instance) Batch(fn func()) {
	in.mu.Lock()
	defer in.mu.Unlock()

	in.fenced(fn)
}

// fenced runs fn under one more fence. A panic lifts the fence again without
// propagating, so the instance is not left fenced for good.
func (in *Instance) fenced(fn func()) {
	in.fence++

	done := false
	defer func() {
		if !done {
			in.fence--
		}
	}()

	fn()

	done = true
	in.unfence()
}

// Fenced reports the current fence depth.
func (in *Instance) Fenced() int {
	in.mu.Lock()
	defer in.mu.Unlock()

	return in.fence
}
