package reactive

import (
	"github.com/petermattis/goid"

	"github.com/vela-lang/reactive/internal/graph"
)

// EffectPriority orders effect execution within a scheduler drain.
type EffectPriority int

const (
	PriorityLow EffectPriority = iota
	PriorityNormal
	PriorityHigh
	// PriorityImmediate bypasses batching entirely: the effect runs inline,
	// synchronously, the moment one of its dependencies changes.
	PriorityImmediate
)

func (p EffectPriority) toGraph() graph.Priority {
	switch p {
	case PriorityNormal:
		return graph.PriorityNormal
	case PriorityHigh:
		return graph.PriorityHigh
	case PriorityImmediate:
		return graph.PriorityImmediate
	default:
		return graph.PriorityLow
	}
}

// EffectOptions configures an Effect at construction time.
type EffectOptions struct {
	Priority EffectPriority
}

// Effect eagerly re-runs fn whenever a signal or computed it read during
// its last run changes. fn returns nothing, so it cannot hand back a
// cleanup function; cleanups are registered with the package-level
// OnCleanup and run just before the next re-run and at disposal.
type Effect struct {
	node  *graph.Node
	owner *Owner
}

func newEffect(fn func(), priority EffectPriority, category graph.Category) *Effect {
	e := &Effect{owner: newChildOwner(currentOwner())}

	run := func() (cleanup func(), err error) {
		gid := goid.Get()

		prevOwner := pushOwner(gid, e.owner)
		defer popOwner(gid, prevOwner)

		var collected []func()
		pushCleanupCollector(gid, &collected)
		defer popCleanupCollector(gid)

		fn()

		return func() {
			e.owner.disposeChildren()
			for _, c := range collected {
				c()
			}
		}, nil
	}

	e.node = g.NewEffect(run, priority.toGraph(), category)
	setNodeOwner(e.node, e.owner)
	registerChildOfCurrentOwner(e)

	if err := g.RunEffect(tr, e.node, func(r any) { defaultOnPanic(e.node, r) }); err != nil {
		panic(err)
	}

	return e
}

// NewEffect creates a user-category effect at normal priority.
func NewEffect(fn func()) *Effect {
	return newEffect(fn, PriorityNormal, graph.CategoryUser)
}

// NewRenderEffect creates a render-category effect at high priority. Within
// each drain iteration every queued render-category effect runs before any
// user-category effect, and OnRenderSettled fires independently of the user
// phase. A render effect scheduled by a user effect runs in the next
// iteration, after that user effect.
func NewRenderEffect(fn func()) *Effect {
	return newEffect(fn, PriorityHigh, graph.CategoryRender)
}

// NewEffectWithOptions creates a user-category effect with explicit
// options.
func NewEffectWithOptions(fn func(), opts EffectOptions) *Effect {
	return newEffect(fn, opts.Priority, graph.CategoryUser)
}

// Stop runs the effect's final cleanup and detaches it from its
// dependencies without disposing it outright: Resume can bring it back.
func (e *Effect) Stop() {
	g.StopEffectKeepAlive(e.node, func(r any) { defaultOnPanic(e.node, r) })
}

// Resume re-runs a stopped effect immediately and resumes normal eager
// re-evaluation. A no-op returning ErrDisposed if the effect was disposed
// outright rather than stopped.
func (e *Effect) Resume() error {
	if e.node.State() == graph.Disposed {
		return graph.ErrDisposed
	}
	return g.RunEffect(tr, e.node, func(r any) { defaultOnPanic(e.node, r) })
}

// Dispose permanently retires the effect: it will never run again.
func (e *Effect) Dispose() {
	e.owner.Dispose()
	forgetNodeOwner(e.node)
	g.StopEffect(e.node, func(r any) { defaultOnPanic(e.node, r) })
}
