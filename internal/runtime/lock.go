package runtime

import (
	"sync"
	"sync/atomic"
)

// reentrantMutex lets the goroutine holding it lock it again, so callbacks can
// read and write the instance that is invoking them.
type reentrantMutex struct {
	mu sync.Mutex

	owner atomic.Int64 // 0 when unlocked
	depth int
}

func (m *reentrantMutex) Lock() {
	gid := getGID()
	if m.owner.Load() == gid {
		m.depth++
		return
	}

	m.mu.Lock()
	m.owner.Store(gid)
	m.depth = 1
}

func (m *reentrantMutex) Unlock() {
	m.depth--
	if m.depth == 0 {
		m.owner.Store(0)
		m.mu.Unlock()
	}
}
