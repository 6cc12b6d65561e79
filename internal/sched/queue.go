package sched

import "github.com/vela-lang/reactive/internal/graph"

// priorityQueue is a stable, priority-bucketed FIFO: within a priority
// level, nodes run in the order they were enqueued; across levels, higher
// priority runs first. Bucketed FIFOs (rather than a binary heap) are
// enough here because there are only four priority levels and starvation
// only needs to be avoided within a level (spec §9 "priority queueing
// during drain").
type priorityQueue struct {
	buckets map[graph.Priority][]*graph.Node
}

func newPriorityQueue() *priorityQueue {
	return &priorityQueue{buckets: make(map[graph.Priority][]*graph.Node)}
}

func (q *priorityQueue) push(n *graph.Node) {
	q.buckets[n.Priority()] = append(q.buckets[n.Priority()], n)
}

// drain returns every queued node in priority order (High, Normal, Low) and
// empties the queue. Immediate-priority nodes are never pushed here — they
// run inline at schedule time instead.
func (q *priorityQueue) drain() []*graph.Node {
	levels := []graph.Priority{graph.PriorityHigh, graph.PriorityNormal, graph.PriorityLow}
	var out []*graph.Node
	for _, lvl := range levels {
		out = append(out, q.buckets[lvl]...)
		delete(q.buckets, lvl)
	}
	return out
}

func (q *priorityQueue) empty() bool {
	for _, b := range q.buckets {
		if len(b) > 0 {
			return false
		}
	}
	return true
}
