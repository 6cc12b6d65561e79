package reactive

// Batch coalesces every signal write made inside fn into a single
// notification pass: dependent computeds are marked dirty as writes
// happen, but effects only run once fn returns (and only for the set of
// effects actually reachable from what changed). PriorityImmediate effects
// are the exception: they run inline at each write. Nested Batch calls are
// flattened into the outermost one.
func Batch(fn func()) {
	sch.Batch(fn)
}

// BatchValue is Batch for a thunk that produces a result, mirroring this
// package's other value-returning/void pairs (Read/TryRead and friends).
func BatchValue[T any](fn func() T) T {
	var result T
	sch.Batch(func() { result = fn() })
	return result
}
