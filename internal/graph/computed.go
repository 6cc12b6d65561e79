package graph

// ReadComputed returns a computed node's current value, recomputing first
// if the node is Dirty or has never been computed. Computation only ever
// happens from a Read — computeds stay pull-driven (spec §4.3): a
// dependency write marks this node Dirty but never recomputes it itself.
func (g *Graph) ReadComputed(tr *Tracker, n *Node) (any, error) {
	n.mu.RLock()
	state := n.state
	hasCache := n.hasCache
	cached := n.cached
	n.mu.RUnlock()

	if state == Clean && hasCache {
		tr.RecordRead(g, n)
		return cached, nil
	}

	err := g.Evaluate(tr, n, func() {
		v, computeErr := n.compute()
		if computeErr != nil {
			panic(computeErr)
		}
		n.mu.Lock()
		n.cached = v
		n.hasCache = true
		n.mu.Unlock()
	}, computedPanicOutcome)

	if err != nil {
		return nil, err
	}

	tr.RecordRead(g, n)

	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.cached, nil
}

// computedPanicOutcome decides what happens when a computed's compute
// function panics. A panic carrying an error (ErrDisposed bubbling up from
// a disposed dependency, a nested CycleDetectedError/ReentryConflictError,
// or the compute function's own reported error) becomes the Get() error
// and leaves the node Dirty so the next Read retries. Anything else is a
// genuine programming error in the compute function and is not this
// package's to swallow, so it propagates to the caller of Get() (spec §7
// enumerates DependencyDisposed but does not define a generic "computed
// panicked" error, unlike effects).
func computedPanicOutcome(r any) PanicOutcome {
	if err, ok := r.(error); ok {
		return PanicOutcome{Err: err, State: Dirty}
	}
	return PanicOutcome{State: Dirty, Rethrow: true}
}
