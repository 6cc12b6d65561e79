package graph

import (
	"sync"

	"github.com/petermattis/goid"
)

// Tracker owns the current-tracking-frame stack. Goroutines have no native
// thread-local storage, so the frame is keyed by goroutine id (spec §4.1,
// §9 "thread-local tracking frame"), following the same technique the
// teacher uses for its per-goroutine runtime lookup — the difference here
// is that only the tracking *stack* is goroutine-local; the node registry
// itself (Graph) is shared by every goroutine.
type Tracker struct {
	mu     sync.Mutex
	frames map[int64]*frame
}

type frame struct {
	stack        []*Node
	untrackDepth int
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{frames: make(map[int64]*frame)}
}

func (t *Tracker) frameFor(gid int64) *frame {
	t.mu.Lock()
	defer t.mu.Unlock()
	f, ok := t.frames[gid]
	if !ok {
		f = &frame{}
		t.frames[gid] = f
	}
	return f
}

// Track pushes node onto the calling goroutine's tracking stack, runs
// thunk, and pops — even if thunk panics, so a panicking compute/effect
// body never leaves a stale reader behind.
func (t *Tracker) Track(node *Node, thunk func()) {
	f := t.frameFor(goid.Get())
	f.stack = append(f.stack, node)
	defer func() {
		f.stack = f.stack[:len(f.stack)-1]
	}()
	thunk()
}

// CurrentReader returns the node at the top of the calling goroutine's
// tracking stack, or nil if nothing is being tracked right now (including
// while untracked via RunUntracked).
func (t *Tracker) CurrentReader() *Node {
	f := t.frameFor(goid.Get())
	if f.untrackDepth > 0 || len(f.stack) == 0 {
		return nil
	}
	return f.stack[len(f.stack)-1]
}

// RunUntracked runs thunk with dependency tracking suspended for the
// calling goroutine: reads inside thunk do not register edges, even if a
// tracking frame is active above it on the stack.
func (t *Tracker) RunUntracked(thunk func()) {
	f := t.frameFor(goid.Get())
	f.untrackDepth++
	defer func() { f.untrackDepth-- }()
	thunk()
}

// RecordRead links source as a dependency of the current reader, if any.
// Called by Signal.Read and Computed.Read on every access.
func (t *Tracker) RecordRead(g *Graph, source *Node) {
	reader := t.CurrentReader()
	if reader == nil || reader == source {
		return
	}
	g.Link(source, reader)
}
