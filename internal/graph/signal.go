package graph

import (
	"log"
	"reflect"
)

// ReadSignal returns the node's current value, recording a dependency edge
// against the calling goroutine's current tracking frame if one is active.
// If n has been disposed and this read is happening as part of a computed's
// own recompute (n is being read as one of its dependencies), the failure
// is reported as DependencyDisposedError rather than the generic
// DisposedError, per the distinction the compute function needs to make
// (spec §7).
func (g *Graph) ReadSignal(tr *Tracker, n *Node) (any, error) {
	n.mu.RLock()
	if n.state == Disposed {
		n.mu.RUnlock()
		if reader := tr.CurrentReader(); reader != nil && reader.kind == KindComputed {
			return nil, &DependencyDisposedError{NodeID: n.id}
		}
		return nil, ErrDisposed
	}
	v := n.value
	n.mu.RUnlock()

	tr.RecordRead(g, n)
	return v, nil
}

// valueEqual applies a signal's configured equality policy.
func valueEqual(n *Node, old, new any) bool {
	switch n.equalPolicy {
	case EqualAlways:
		return false
	case EqualReference:
		return old == new
	default: // EqualStructural
		if n.customEqual != nil {
			return n.customEqual(old, new)
		}
		if eq, ok := old.(interface{ Equal(any) bool }); ok {
			return eq.Equal(new)
		}
		return reflect.DeepEqual(old, new)
	}
}

// WriteSignal applies v to the signal per its equality policy. It returns
// whether the value actually changed (so the caller knows whether to
// propagate) and the previous value (for external subscriber callbacks).
func (g *Graph) WriteSignal(n *Node, v any) (changed bool, old any, err error) {
	n.mu.Lock()
	if n.state == Disposed {
		n.mu.Unlock()
		return false, nil, ErrDisposed
	}

	old = n.value
	if valueEqual(n, old, v) {
		n.mu.Unlock()
		return false, old, nil
	}

	n.value = v
	n.version++
	callbacks := snapshotExternalSubs(n)
	n.mu.Unlock()

	notifyExternal(callbacks, old, v)
	return true, old, nil
}

// UpdateSignal reads the current value, applies fn, and stores the result,
// holding n's lock across the whole read-apply-write so two goroutines
// calling Update on the same signal concurrently can't both read the same
// old value and race to write (spec §4.2's per-signal update atomicity).
// fn must not itself read or write n, or it will deadlock.
func (g *Graph) UpdateSignal(n *Node, fn func(old any) any) (changed bool, old, new any, err error) {
	n.mu.Lock()
	if n.state == Disposed {
		n.mu.Unlock()
		return false, nil, nil, ErrDisposed
	}

	old = n.value
	new = fn(old)
	if valueEqual(n, old, new) {
		n.mu.Unlock()
		return false, old, new, nil
	}

	n.value = new
	n.version++
	callbacks := snapshotExternalSubs(n)
	n.mu.Unlock()

	notifyExternal(callbacks, old, new)
	return true, old, new, nil
}

func snapshotExternalSubs(n *Node) []func(old, new any) {
	callbacks := make([]func(old, new any), 0, len(n.extSubs))
	for _, cb := range n.extSubs {
		callbacks = append(callbacks, cb)
	}
	return callbacks
}

// notifyExternal runs external subscriber callbacks outside the node's lock
// (spec §4.2, §9 "callback execution outside locks"). A panicking callback
// is logged and does not stop the remaining callbacks from running, nor
// does it fail the write that triggered it (spec §7's NotifyPanic).
func notifyExternal(callbacks []func(old, new any), old, new any) {
	for _, cb := range callbacks {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("reactive: subscriber panic: %v", r)
				}
			}()
			cb(old, new)
		}()
	}
}

// SubscribeExternal registers a plain (non-reactive) observer and returns
// an id used to cancel it later.
func (g *Graph) SubscribeExternal(n *Node, fn func(old, new any)) uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.extSubs == nil {
		n.extSubs = make(map[uint64]func(old, new any))
	}
	n.extNextID++
	id := n.extNextID
	n.extSubs[id] = fn
	return id
}

// UnsubscribeExternal cancels a subscription created by SubscribeExternal.
func (g *Graph) UnsubscribeExternal(n *Node, id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.extSubs, id)
}
