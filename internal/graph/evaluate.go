package graph

import (
	"time"

	"github.com/petermattis/goid"
)

// ReentryTimeout bounds how long a goroutine waits for a node being
// evaluated on a different goroutine to finish before giving up with
// ReentryConflictError. spec §5 and §9 leave the exact duration as an
// implementation choice; 250ms is generous enough not to misfire under
// normal scheduling jitter while still failing well before a test runner's
// own timeout.
var ReentryTimeout = 250 * time.Millisecond

// PanicOutcome is returned by an Evaluate panic handler to decide how the
// node should come out of a panicked evaluation.
type PanicOutcome struct {
	Err     error // error to return from Evaluate, if Rethrow is false
	State   State // state to leave the node in
	Rethrow bool  // if true, Evaluate re-panics with the original value
}

// Evaluate runs body as node's computation under full cycle-detection and
// rollback semantics:
//
//  1. fails fast with ErrDisposed if node is already disposed;
//  2. fails with CycleDetectedError if the calling goroutine is already
//     evaluating this node (re-entrant read, spec §4.1);
//  3. waits up to ReentryTimeout for a different goroutine's in-flight
//     evaluation to finish, then fails with ReentryConflictError (spec §5);
//  4. otherwise captures the node's current dependency set, clears it,
//     tracks body so fresh reads re-populate it, and commits State=Clean
//     with a bumped version on success;
//  5. on panic, restores the captured dependency set (spec §7's rollback
//     guarantee) and defers the outcome to onPanic.
func (g *Graph) Evaluate(tr *Tracker, n *Node, body func(), onPanic func(recovered any) PanicOutcome) error {
	n.mu.Lock()
	switch n.state {
	case Disposed:
		n.mu.Unlock()
		return ErrDisposed
	case Computing:
		gid := goid.Get()
		if n.computingGID == gid {
			n.mu.Unlock()
			return &CycleDetectedError{NodeID: n.id}
		}
		done := n.doneCh
		n.mu.Unlock()
		select {
		case <-done:
			return g.Evaluate(tr, n, body, onPanic)
		case <-time.After(ReentryTimeout):
			return &ReentryConflictError{NodeID: n.id}
		}
	}

	n.computingGID = goid.Get()
	n.doneCh = make(chan struct{})
	n.state = Computing
	n.mu.Unlock()

	oldDeps := g.snapshotDeps(n)
	g.clearDeps(n)

	var evalErr error
	func() {
		defer func() {
			if r := recover(); r != nil {
				g.relinkDeps(n, oldDeps)
				outcome := onPanic(r)

				n.mu.Lock()
				n.state = outcome.State
				close(n.doneCh)
				n.doneCh = nil
				n.mu.Unlock()

				if outcome.Rethrow {
					panic(r)
				}
				evalErr = outcome.Err
			}
		}()

		tr.Track(n, body)

		n.mu.Lock()
		n.state = Clean
		n.version++
		close(n.doneCh)
		n.doneCh = nil
		n.mu.Unlock()
	}()

	return evalErr
}
