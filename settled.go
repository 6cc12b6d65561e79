package reactive

// OnSettled registers a one-shot callback that runs once the calling
// goroutine's current (or next) drain fully empties, including any effects
// scheduled by chain reactions during that drain.
func OnSettled(fn func()) {
	sch.OnSettled(fn)
}

// OnUserSettled registers a one-shot callback that runs once every
// user-category effect scheduled before this drain iteration started has
// run, without waiting for a later render-category phase.
func OnUserSettled(fn func()) {
	sch.OnUserSettled(fn)
}

// OnRenderSettled is OnUserSettled's render-category counterpart.
func OnRenderSettled(fn func()) {
	sch.OnRenderSettled(fn)
}
