package reactive

import "github.com/vela-lang/reactive/internal/graph"

func as[T any](v any) T {
	if v == nil {
		var zero T
		return zero
	}
	return v.(T)
}

// Equal is an equality policy for Signal.
type Equal int

const (
	// EqualStructural compares via the value's own Equal(T) bool method if
	// it has one, otherwise reflect.DeepEqual. The default.
	EqualStructural Equal = iota
	// EqualReference compares with Go's == operator.
	EqualReference
	// EqualAlways treats every Write as a change, even if the value is
	// identical to the one already stored.
	EqualAlways
)

// SignalOptions configures a Signal at construction time.
type SignalOptions[T any] struct {
	Equal Equal
	// EqualFunc, if set, overrides Equal entirely with a custom comparison.
	EqualFunc func(a, b T) bool
}

// Signal is a mutable reactive cell: reading it inside a Computed or Effect
// records a dependency, and writing a new value notifies every dependent.
type Signal[T any] struct {
	node *graph.Node
}

// NewSignal creates a signal holding initial, using structural equality
// unless opts select another policy or an EqualFunc.
func NewSignal[T any](initial T, opts ...SignalOptions[T]) *Signal[T] {
	var opt SignalOptions[T]
	if len(opts) > 0 {
		opt = opts[0]
	}

	var equalFn func(a, b any) bool
	if opt.EqualFunc != nil {
		equalFn = func(a, b any) bool { return opt.EqualFunc(as[T](a), as[T](b)) }
	} else if _, ok := any(*new(T)).(interface{ Equal(T) bool }); ok {
		equalFn = func(a, b any) bool {
			return any(as[T](a)).(interface{ Equal(T) bool }).Equal(as[T](b))
		}
	}

	policy := graph.EqualStructural
	if opt.EqualFunc == nil {
		switch opt.Equal {
		case EqualReference:
			policy = graph.EqualReference
		case EqualAlways:
			policy = graph.EqualAlways
		}
	}

	s := &Signal[T]{node: g.NewSignal(initial, policy, equalFn)}
	registerChildOfCurrentOwner(s)
	return s
}

// Read returns the signal's current value, tracking a dependency if called
// from inside a Computed or Effect body. Panics with ErrDisposed if the
// signal has been disposed.
func (s *Signal[T]) Read() T {
	return must(s.TryRead())
}

// TryRead is Read without the panic: it returns ErrDisposed explicitly
// instead.
func (s *Signal[T]) TryRead() (T, error) {
	v, err := g.ReadSignal(tr, s.node)
	if err != nil {
		var zero T
		return zero, err
	}
	return as[T](v), nil
}

// Write stores v, notifying dependents if it differs from the current
// value under the signal's equality policy. Panics with ErrDisposed if the
// signal has been disposed.
func (s *Signal[T]) Write(v T) {
	if err := s.TryWrite(v); err != nil {
		panic(err)
	}
}

// TryWrite is Write without the panic.
func (s *Signal[T]) TryWrite(v T) error {
	changed, _, err := g.WriteSignal(s.node, v)
	if err != nil {
		return err
	}
	if changed {
		sch.NotifyWrite(s.node)
	}
	return nil
}

// Update reads the current value, applies fn, and writes the result back
// atomically with respect to other writers of this signal: the read and
// the write happen under the same lock, so two concurrent Update calls
// can't both read the same value and lose one of the writes.
func (s *Signal[T]) Update(fn func(T) T) {
	changed, _, _, err := g.UpdateSignal(s.node, func(old any) any {
		return fn(as[T](old))
	})
	if err != nil {
		panic(err)
	}
	if changed {
		sch.NotifyWrite(s.node)
	}
}

// Subscribe registers a plain callback invoked with (old, new) whenever the
// signal's value changes, without participating in dependency tracking.
// The returned function cancels the subscription.
func (s *Signal[T]) Subscribe(fn func(old, new T)) (unsubscribe func()) {
	id := g.SubscribeExternal(s.node, func(old, new any) {
		fn(as[T](old), as[T](new))
	})
	return func() { g.UnsubscribeExternal(s.node, id) }
}

// Dispose permanently retires the signal.
func (s *Signal[T]) Dispose() {
	forgetNodeOwner(s.node)
	s.node.Dispose()
}
