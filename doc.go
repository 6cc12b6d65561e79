// Package reactive implements a fine-grained reactive runtime: Signal holds
// mutable state, Computed derives values lazily from other signals and
// computeds, and Effect eagerly re-runs side-effecting code whenever the
// signals it read last time change. Dependencies are discovered
// automatically by tracking reads during evaluation — there is no
// dependency list to declare by hand.
//
// A single process-wide graph backs every signal, computed, and effect
// created through this package, so values created on one goroutine are
// safely readable and writable from any other. Batch coalesces a burst of
// writes into a single notification pass; Owner groups related nodes so
// they can be torn down together.
package reactive

import (
	"log"

	"github.com/vela-lang/reactive/internal/graph"
	"github.com/vela-lang/reactive/internal/sched"
)

var (
	g   = graph.Default
	tr  = graph.NewTracker()
	sch = sched.New(g, tr, defaultOnPanic)

	// OnPanic is called whenever an effect body or cleanup panics with a
	// value that no enclosing Owner.OnError handler claims. It defaults to
	// logging via the standard logger; assign a different function (e.g. to
	// forward into a structured logger) before starting any reactive work.
	OnPanic = func(recovered any) {
		log.Printf("reactive: effect panic: %v", recovered)
	}
)

func defaultOnPanic(node *graph.Node, recovered any) {
	if dispatchToOwnerCatchers(node, recovered) {
		return
	}
	OnPanic(recovered)
}
