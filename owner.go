package reactive

import (
	"sync"

	"github.com/petermattis/goid"

	"github.com/vela-lang/reactive/internal/graph"
)

// disposable is anything an Owner can tear down as a child: Signal[T],
// Computed[T], Effect, and Owner itself all implement it.
type disposable interface {
	Dispose()
}

// Owner groups signals, computeds, and effects created during a single
// Run call so they can be disposed together (spec's "promptly tear down
// subgraphs" requirement). Every Computed and Effect also carries its own
// implicit Owner so nodes it creates on each evaluation are discarded and
// recreated cleanly on the next one, the same way the teacher's Computed
// embeds an Owner and disposes its children at the start of every
// recompute (internal/computed.go's recompute).
type Owner struct {
	mu sync.Mutex

	parent   *Owner
	children []disposable

	cleanups []func()
	disposes []func()
	catchers []func(any)

	ctxValues map[*ctxKey]any

	disposed bool
}

// NewOwner creates an owner. If called while another Owner/Effect/Computed
// is active on the calling goroutine (inside its Run, or inside an effect
// or computed body), the new owner is linked as that owner's child — it
// inherits Context values from it and is disposed when it is — the same
// way the teacher's sig.Owner() captures getActiveOwner() as its parent.
// Use NewOwner when a subtree's lifetime isn't naturally tied to an
// existing effect or computed, e.g. a UI component instance.
func NewOwner() *Owner {
	parent := currentOwner()
	o := &Owner{parent: parent}
	if parent != nil {
		parent.addChild(o)
	}
	return o
}

// newChildOwner creates an owner linked to parent for OnError/Context
// lookups, without registering it as a disposable child of parent: the
// Computed/Effect wrapper that owns it registers itself instead, so
// disposing it can also tear down its graph node alongside its nested
// owner.
func newChildOwner(parent *Owner) *Owner {
	return &Owner{parent: parent}
}

func (o *Owner) addChild(child disposable) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.disposed {
		return
	}
	o.children = append(o.children, child)
}

// Run executes fn with o as the active owner for the calling goroutine:
// every Signal/Computed/Effect/Owner created inside fn becomes a child of
// o, and a top-level OnCleanup call inside fn registers against o.
func (o *Owner) Run(fn func() error) error {
	gid := goid.Get()
	prev := pushOwner(gid, o)
	defer popOwner(gid, prev)
	return fn()
}

// Dispose tears down every child (innermost first, in creation order),
// running their own cleanups, then runs o's own OnCleanup callbacks,
// followed by its OnDispose callbacks. Safe to call more than once.
func (o *Owner) Dispose() {
	o.mu.Lock()
	if o.disposed {
		o.mu.Unlock()
		return
	}
	o.disposed = true
	children := o.children
	o.children = nil
	cleanups := o.cleanups
	o.cleanups = nil
	disposes := o.disposes
	o.disposes = nil
	o.mu.Unlock()

	for _, c := range children {
		c.Dispose()
	}
	for _, fn := range cleanups {
		fn()
	}
	for _, fn := range disposes {
		fn()
	}
}

// disposeChildren tears down and forgets every child without disposing o
// itself. Used by Computed and Effect to discard nodes created on the
// previous evaluation before running the next one.
func (o *Owner) disposeChildren() {
	o.mu.Lock()
	children := o.children
	o.children = nil
	o.mu.Unlock()

	for _, c := range children {
		c.Dispose()
	}
}

// OnCleanup registers fn to run once when o is disposed.
func (o *Owner) OnCleanup(fn func()) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.disposed {
		return
	}
	o.cleanups = append(o.cleanups, fn)
}

// OnDispose registers fn to run after o and its children have finished
// disposing.
func (o *Owner) OnDispose(fn func()) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.disposed {
		return
	}
	o.disposes = append(o.disposes, fn)
}

// OnError registers fn as a panic handler for effects owned (directly or
// transitively) by o. A panic is offered to the nearest ancestor owner with
// at least one OnError handler; if none claims it, it reaches the package
// level OnPanic hook instead.
func (o *Owner) OnError(fn func(any)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.catchers = append(o.catchers, fn)
}

func (o *Owner) dispatch(recovered any) bool {
	for cur := o; cur != nil; cur = cur.parent {
		cur.mu.Lock()
		catchers := cur.catchers
		cur.mu.Unlock()
		if len(catchers) > 0 {
			for _, c := range catchers {
				c(recovered)
			}
			return true
		}
	}
	return false
}

var (
	ownerStackMu sync.Mutex
	ownerStacks  = make(map[int64][]*Owner)

	nodeOwnerMu sync.Mutex
	nodeOwners  = make(map[*graph.Node]*Owner)
)

func pushOwner(gid int64, o *Owner) *Owner {
	ownerStackMu.Lock()
	defer ownerStackMu.Unlock()
	stack := ownerStacks[gid]
	var prev *Owner
	if len(stack) > 0 {
		prev = stack[len(stack)-1]
	}
	ownerStacks[gid] = append(stack, o)
	return prev
}

// popOwner pops the calling goroutine's owner stack. prev is accepted for
// symmetry with pushOwner's return value even though the stack itself
// already records what to restore.
func popOwner(gid int64, prev *Owner) {
	ownerStackMu.Lock()
	defer ownerStackMu.Unlock()
	stack := ownerStacks[gid]
	if len(stack) > 0 {
		stack = stack[:len(stack)-1]
	}
	ownerStacks[gid] = stack
}

func currentOwner() *Owner {
	gid := goid.Get()
	ownerStackMu.Lock()
	defer ownerStackMu.Unlock()
	stack := ownerStacks[gid]
	if len(stack) == 0 {
		return nil
	}
	return stack[len(stack)-1]
}

func registerChildOfCurrentOwner(d disposable) {
	if owner := currentOwner(); owner != nil {
		owner.addChild(d)
	}
}

func setNodeOwner(n *graph.Node, o *Owner) {
	nodeOwnerMu.Lock()
	nodeOwners[n] = o
	nodeOwnerMu.Unlock()
}

func forgetNodeOwner(n *graph.Node) {
	nodeOwnerMu.Lock()
	delete(nodeOwners, n)
	nodeOwnerMu.Unlock()
}

// dispatchToOwnerCatchers routes an effect panic to the owning node's
// Owner.OnError chain, if any.
func dispatchToOwnerCatchers(n *graph.Node, recovered any) bool {
	nodeOwnerMu.Lock()
	owner := nodeOwners[n]
	nodeOwnerMu.Unlock()
	if owner == nil {
		return false
	}
	return owner.dispatch(recovered)
}

// OnCleanup registers fn to run when the current evaluation ends: inside an
// Effect body, that means the next time it re-evaluates or is disposed;
// outside any effect evaluation, it falls back to the active Owner (if any)
// and fires once when that owner is disposed. A Computed body collects no
// cleanups of its own: fn goes to the enclosing Effect evaluation if the
// computed is being read from one, otherwise to the computed's owner, which
// runs it only when the computed is disposed, not on recompute.
func OnCleanup(fn func()) {
	if collector := currentCleanupCollector(); collector != nil {
		*collector = append(*collector, fn)
		return
	}
	if owner := currentOwner(); owner != nil {
		owner.OnCleanup(fn)
	}
}

var (
	cleanupStackMu sync.Mutex
	cleanupStacks  = make(map[int64][]*[]func())
)

func pushCleanupCollector(gid int64, c *[]func()) {
	cleanupStackMu.Lock()
	defer cleanupStackMu.Unlock()
	cleanupStacks[gid] = append(cleanupStacks[gid], c)
}

func popCleanupCollector(gid int64) {
	cleanupStackMu.Lock()
	defer cleanupStackMu.Unlock()
	stack := cleanupStacks[gid]
	if len(stack) > 0 {
		stack = stack[:len(stack)-1]
	}
	cleanupStacks[gid] = stack
}

func currentCleanupCollector() *[]func() {
	gid := goid.Get()
	cleanupStackMu.Lock()
	defer cleanupStackMu.Unlock()
	stack := cleanupStacks[gid]
	if len(stack) == 0 {
		return nil
	}
	return stack[len(stack)-1]
}
