package runtime

import "github.com/AnatoleLucet/cascade/internal/graph"

// task is either a computed node or a user waiting to be invoked.
type task struct {
	node *graph.Node
	user *observer
}

func (t task) depth() int {
	if t.user != nil {
		return t.user.depth
	}
	return t.node.Depth
}

// queue holds pending tasks bucketed by depth. Tasks of one depth are served
// in insertion order and a task is present at most once.
type queue struct {
	min int
	max int

	buckets [][]task // [depth]tasks

	// at-most-once flags for nodes, users carry their own
	queued []bool
}

func newQueue(g *graph.Graph) *queue {
	// users sit one layer below the deepest node they read
	depths := g.MaxDepth() + 2

	return &queue{
		min:     depths,
		max:     -1,
		buckets: make([][]task, depths),
		queued:  make([]bool, len(g.Nodes)),
	}
}

func (q *queue) Insert(t task) {
	if t.user != nil {
		if t.user.queued {
			return
		}
		t.user.queued = true
	} else {
		if q.queued[t.node.Index] {
			return
		}
		q.queued[t.node.Index] = true
	}

	depth := t.depth()
	q.buckets[depth] = append(q.buckets[depth], t)

	// a task may land below the cursor when a callback writes mid-pass
	if depth < q.min {
		q.min = depth
	}
	if depth > q.max {
		q.max = depth
	}
}

// Pop removes the oldest task of the lowest depth.
func (q *queue) Pop() (task, bool) {
	for ; q.min <= q.max; q.min++ {
		bucket := q.buckets[q.min]
		if len(bucket) == 0 {
			continue
		}

		t := bucket[0]
		bucket[0] = task{}
		if len(bucket) == 1 {
			q.buckets[q.min] = bucket[:0]
		} else {
			q.buckets[q.min] = bucket[1:]
		}

		if t.user != nil {
			t.user.queued = false
		} else {
			q.queued[t.node.Index] = false
		}
		return t, true
	}

	q.min = len(q.buckets)
	q.max = -1
	return task{}, false
}

func (q *queue) Empty() bool {
	for d := q.min; d <= q.max; d++ {
		if len(q.buckets[d]) > 0 {
			return false
		}
	}
	return true
}
