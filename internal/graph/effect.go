package graph

// RunEffect executes an effect node's body: invoke any pending cleanup,
// then track a fresh run. onPanic is invoked for a cleanup panic or a body
// panic; per spec §4.4/§7 (EffectPanic), the effect survives either way
// with no cleanup stored, ready to run again next time it is scheduled.
func (g *Graph) RunEffect(tr *Tracker, n *Node, onPanic func(recovered any)) error {
	n.mu.RLock()
	disposed := n.state == Disposed
	n.mu.RUnlock()
	if disposed {
		return ErrDisposed
	}

	if cleanup := n.TakeCleanup(); cleanup != nil {
		func() {
			defer func() {
				if r := recover(); r != nil {
					onPanic(r)
				}
			}()
			cleanup()
		}()
	}

	err := g.Evaluate(tr, n, func() {
		cleanup, runErr := n.run()
		if runErr != nil {
			panic(runErr)
		}
		if cleanup != nil {
			n.SetCleanup(cleanup)
		}
	}, func(r any) PanicOutcome {
		onPanic(r)
		return PanicOutcome{State: Clean}
	})

	if err == nil {
		n.MarkEverRun()
	}
	return err
}

// StopEffectKeepAlive invokes final cleanup and detaches the node's
// dependencies, but leaves the node itself alive so it can be resumed
// later with RunEffect. Used by Effect.Stop, spec §4.4's distinction
// between Stop (detachable, resumable) and Dispose (permanent).
func (g *Graph) StopEffectKeepAlive(n *Node, onPanic func(recovered any)) {
	if cleanup := n.TakeCleanup(); cleanup != nil {
		func() {
			defer func() {
				if r := recover(); r != nil {
					onPanic(r)
				}
			}()
			cleanup()
		}()
	}

	g.clearDeps(n)

	n.mu.Lock()
	if n.state != Disposed {
		n.state = Dirty
	}
	n.mu.Unlock()
}

// StopEffect invokes final cleanup and disposes the node.
func (g *Graph) StopEffect(n *Node, onPanic func(recovered any)) {
	if cleanup := n.TakeCleanup(); cleanup != nil {
		func() {
			defer func() {
				if r := recover(); r != nil {
					onPanic(r)
				}
			}()
			cleanup()
		}()
	}
	n.Dispose()
}
