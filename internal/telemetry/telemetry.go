// Package telemetry reports what instances do while they propagate changes.
package telemetry

// Recorder receives engine events. Implementations must be safe for concurrent
// use since instances of one model may run on several goroutines.
type Recorder interface {
	// Write is called for every write to a fundamental property.
	Write(model, property string, changed bool)

	// Recompute is called each time a computed property is evaluated.
	Recompute(model, property string, changed bool)

	// Invoke is called each time a user callback runs.
	Invoke(model string)

	// StartPass is called when a propagation pass begins. The returned
	// function is called once the pass is over with the number of queue
	// entries it processed.
	StartPass(model string) func(processed int)
}

// Nop discards everything.
type Nop struct{}

func (Nop) Write(string, string, bool)     {}
func (Nop) Recompute(string, string, bool) {}
func (Nop) Invoke(string)                  {}
func (Nop) StartPass(string) func(int)     { return func(int) {} }

type multi []Recorder

// Multi fans events out to every recorder, in order. Nil recorders are skipped.
func Multi(recorders ...Recorder) Recorder {
	var m multi
	for _, r := range recorders {
		if r != nil {
			m = append(m, r)
		}
	}

	switch len(m) {
	case 0:
		return Nop{}
	case 1:
		return m[0]
	}
	return m
}

func (m multi) Write(model, property string, changed bool) {
	for _, r := range m {
		r.Write(model, property, changed)
	}
}

func (m multi) Recompute(model, property string, changed bool) {
	for _, r := range m {
		r.Recompute(model, property, changed)
	}
}

func (m multi) Invoke(model string) {
	for _, r := range m {
		r.Invoke(model)
	}
}

func (m multi) StartPass(model string) func(int) {
	done := make([]func(int), len(m))
	for i, r := range m {
		done[i] = r.StartPass(model)
	}

	return func(processed int) {
		// close in reverse so nested spans end inside out
		for i := len(done) - 1; i >= 0; i-- {
			done[i](processed)
		}
	}
}

func result(changed bool) string {
	if changed {
		return "changed"
	}
	return "unchanged"
}
