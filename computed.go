package reactive

import (
	"github.com/petermattis/goid"

	"github.com/vela-lang/reactive/internal/graph"
)

// Computed derives a value from other signals/computeds, recomputing lazily
// the first time it's read after a dependency changes. Computeds never
// recompute eagerly: a dependency write only marks them dirty.
type Computed[T any] struct {
	node  *graph.Node
	owner *Owner
}

// NewComputed creates a computed signal from a pure function of other
// signals. fn is not called until the first Read.
func NewComputed[T any](fn func() T) *Computed[T] {
	c := &Computed[T]{owner: newChildOwner(currentOwner())}

	compute := func() (any, error) {
		c.owner.disposeChildren()

		gid := goid.Get()
		prevOwner := pushOwner(gid, c.owner)
		defer popOwner(gid, prevOwner)

		return fn(), nil
	}

	c.node = g.NewComputed(compute)
	registerChildOfCurrentOwner(c)
	return c
}

// NewComputedErr is NewComputed for a derivation that can itself fail; the
// error surfaces from TryRead/Read instead of being swallowed.
func NewComputedErr[T any](fn func() (T, error)) *Computed[T] {
	c := &Computed[T]{owner: newChildOwner(currentOwner())}

	compute := func() (any, error) {
		c.owner.disposeChildren()

		gid := goid.Get()
		prevOwner := pushOwner(gid, c.owner)
		defer popOwner(gid, prevOwner)

		return fn()
	}

	c.node = g.NewComputed(compute)
	registerChildOfCurrentOwner(c)
	return c
}

// Read returns the computed's current value, recomputing first if stale.
// Panics if the underlying function returned an error, if reading it would
// cycle back on itself, or if the computed has been disposed.
func (c *Computed[T]) Read() T {
	return must(c.TryRead())
}

// TryRead is Read without the panic.
func (c *Computed[T]) TryRead() (T, error) {
	v, err := g.ReadComputed(tr, c.node)
	if err != nil {
		var zero T
		return zero, err
	}
	return as[T](v), nil
}

// Dispose permanently retires the computed and its nested nodes.
func (c *Computed[T]) Dispose() {
	c.owner.Dispose()
	forgetNodeOwner(c.node)
	c.node.Dispose()
}
