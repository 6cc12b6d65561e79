package reactive

// ctxKey identifies a Context[T] in an Owner's value map. Each Context[T]
// carries its own unique *ctxKey rather than using the Context itself as
// the map key, so a Context[T] remains comparable-free (no constraint on T
// leaks into map key requirements). The struct is given a non-zero size so
// every &ctxKey{} allocation has its own address.
type ctxKey struct{ _ byte }

// Context carries a value inherited down the Owner tree: a value set with
// Set inside Owner.Run is visible to that owner and every descendant owner,
// unless a descendant calls Set again to shadow it.
type Context[T any] struct {
	key     *ctxKey
	initial T
}

// NewContext creates a context whose Value falls back to initial when no
// active owner (or ancestor) has set one.
func NewContext[T any](initial T) *Context[T] {
	return &Context[T]{key: &ctxKey{}, initial: initial}
}

// Value reads the context's value for the current owner, walking up the
// owner chain until a Set value is found, or returning the initial default
// if none is.
func (c *Context[T]) Value() T {
	for o := currentOwner(); o != nil; o = o.parent {
		o.mu.Lock()
		v, ok := o.ctxValues[c.key]
		o.mu.Unlock()
		if ok {
			return v.(T)
		}
	}
	return c.initial
}

// Set stores value for the current owner and its descendants. A no-op if
// there is no active owner to hold it.
func (c *Context[T]) Set(value T) {
	owner := currentOwner()
	if owner == nil {
		return
	}
	owner.mu.Lock()
	if owner.ctxValues == nil {
		owner.ctxValues = make(map[*ctxKey]any)
	}
	owner.ctxValues[c.key] = value
	owner.mu.Unlock()
}
