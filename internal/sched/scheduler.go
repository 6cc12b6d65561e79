// Package sched owns batching and effect-drain scheduling: the part of the
// runtime that decides *when* a scheduled effect actually runs, as opposed
// to internal/graph, which only knows about dependency edges and node
// state. A Scheduler is goroutine-aware the same way internal/graph's
// Tracker is: batching depth and the pending-effect queues are kept
// per-goroutine, because two goroutines writing to unrelated signals at the
// same time must not serialize on a single shared queue.
package sched

import (
	"sync"

	"github.com/petermattis/goid"

	"github.com/vela-lang/reactive/internal/graph"
)

// Scheduler drains effects reachable from a signal write, honoring batching,
// priority, and the render/user drain split.
type Scheduler struct {
	g       *graph.Graph
	tr      *graph.Tracker
	onPanic func(node *graph.Node, recovered any)

	mu      sync.Mutex
	threads map[int64]*threadState
}

type threadState struct {
	batchDepth int
	running    bool
	moreWork   bool

	render *priorityQueue
	user   *priorityQueue

	settled       []func()
	userSettled   []func()
	renderSettled []func()
}

func newThreadState() *threadState {
	return &threadState{render: newPriorityQueue(), user: newPriorityQueue()}
}

// New creates a scheduler over g, using tr for tracking and onPanic to
// report effect panics that the caller should log/forward (spec's
// EffectPanic policy: the effect survives, but something must hear about
// it).
func New(g *graph.Graph, tr *graph.Tracker, onPanic func(node *graph.Node, recovered any)) *Scheduler {
	return &Scheduler{g: g, tr: tr, onPanic: onPanic, threads: make(map[int64]*threadState)}
}

func (s *Scheduler) state(gid int64) *threadState {
	s.mu.Lock()
	defer s.mu.Unlock()
	ts, ok := s.threads[gid]
	if !ok {
		ts = newThreadState()
		s.threads[gid] = ts
	}
	return ts
}

// NotifyWrite is called after a signal's value has actually changed. It
// walks every effect reachable from signal, schedules each at most once for
// the current drain (spec "at-most-once-per-batch"), and runs Immediate
// effects inline right now regardless of batch depth.
func (s *Scheduler) NotifyWrite(signal *graph.Node) {
	gid := goid.Get()
	ts := s.state(gid)

	for _, e := range s.g.CollectReachableEffects(signal) {
		if e.Priority() == graph.PriorityImmediate {
			s.runEffect(e)
			continue
		}
		if !e.TrySchedule() {
			continue
		}
		if e.Category() == graph.CategoryRender {
			ts.render.push(e)
		} else {
			ts.user.push(e)
		}
	}

	if ts.batchDepth == 0 {
		s.flush(gid, ts)
	} else {
		ts.moreWork = true
	}
}

// Batch defers draining until fn (and any nested Batch within it) returns,
// coalescing every write made inside fn into a single drain.
func (s *Scheduler) Batch(fn func()) {
	gid := goid.Get()
	ts := s.state(gid)
	ts.batchDepth++
	fn()
	ts.batchDepth--
	if ts.batchDepth == 0 {
		s.flush(gid, ts)
	}
}

// flush runs the drain loop for the calling goroutine: a render phase, then
// a user phase, repeating as long as running those phases scheduled more
// work (spec "chained effects keep draining"), until both queues are empty.
// A write made by an effect inside this function re-enters NotifyWrite,
// which sees ts.running and only sets moreWork rather than recursing, so
// the single loop here is what actually runs every chained effect.
func (s *Scheduler) flush(gid int64, ts *threadState) {
	if ts.running {
		ts.moreWork = true
		return
	}
	ts.running = true
	defer func() { ts.running = false }()

	for {
		ts.moreWork = false

		for _, e := range ts.render.drain() {
			s.runEffect(e)
		}
		s.fireSettledList(&ts.renderSettled)

		for _, e := range ts.user.drain() {
			s.runEffect(e)
		}
		s.fireSettledList(&ts.userSettled)

		if !ts.moreWork && ts.render.empty() && ts.user.empty() {
			break
		}
	}

	s.fireSettledList(&ts.settled)
}

func (s *Scheduler) runEffect(n *graph.Node) {
	n.ClearScheduled()
	if n.State() == graph.Disposed {
		return
	}
	_ = s.g.RunEffect(s.tr, n, func(recovered any) { s.onPanic(n, recovered) })
}

func (s *Scheduler) fireSettledList(list *[]func()) {
	pending := *list
	*list = nil
	for _, fn := range pending {
		fn()
	}
}

// OnSettled registers a one-shot callback that fires once the calling
// goroutine's current (or next) drain fully empties, including any effects
// scheduled by chain reactions during that drain.
func (s *Scheduler) OnSettled(fn func()) {
	ts := s.state(goid.Get())
	ts.settled = append(ts.settled, fn)
}

// OnUserSettled registers a one-shot callback that fires once the user
// (CategoryUser) phase of the calling goroutine's current drain iteration
// completes, without waiting for a later render phase.
func (s *Scheduler) OnUserSettled(fn func()) {
	ts := s.state(goid.Get())
	ts.userSettled = append(ts.userSettled, fn)
}

// OnRenderSettled is OnUserSettled's render-phase counterpart.
func (s *Scheduler) OnRenderSettled(fn func()) {
	ts := s.state(goid.Get())
	ts.renderSettled = append(ts.renderSettled, fn)
}
