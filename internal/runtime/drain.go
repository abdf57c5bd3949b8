package runtime

// flush starts a propagation pass unless one is running or the instance is
// fenced. Work queued while a pass runs is picked up by that same pass.
func (in *Instance) flush() {
	if in.fence > 0 || in.draining || in.queue.Empty() {
		return
	}

	in.drain()
}

func (in *Instance) drain() {
	in.draining = true
	done := in.config.Recorder.StartPass(in.config.Model)
	processed := 0

	in.config.Logger.Debug("propagation started", "model", in.config.Model)

	defer func() {
		in.draining = false
		done(processed)
		in.config.Logger.Debug("propagation finished", "model", in.config.Model, "processed", processed)
	}()

	for {
		t, ok := in.queue.Pop()
		if !ok {
			return
		}
		processed++

		if t.user != nil {
			// deactivated while waiting in the queue
			if t.user.active {
				in.invoke(t.user)
			}
			continue
		}

		// nobody observes it anymore, leave it stale until read
		if in.counts[t.node.Index] == 0 {
			continue
		}
		// already refreshed by a read earlier in the pass
		if !in.stale[t.node.Index] {
			continue
		}

		in.refresh(t.node)
	}
}
