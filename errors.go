package reactive

import "github.com/vela-lang/reactive/internal/graph"

// Typed errors returned by the Try* accessors, and panicked with by their
// plain counterparts. They alias the internal/graph types directly so
// errors.As works the same way against either package.
type (
	DisposedError           = graph.DisposedError
	CycleDetectedError      = graph.CycleDetectedError
	ReentryConflictError    = graph.ReentryConflictError
	DependencyDisposedError = graph.DependencyDisposedError
)

// ErrDisposed is returned by a Try* call against an already-disposed node.
var ErrDisposed = graph.ErrDisposed

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
