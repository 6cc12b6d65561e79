package reactive

// WatchHandle cancels a Watch subscription.
type WatchHandle struct {
	stop func()
}

// Stop cancels the watch; cb will not be called again.
func (h *WatchHandle) Stop() { h.stop() }

// Watch is a convenience wrapper around Signal.Subscribe: cb runs every
// time s changes, outside of dependency tracking (Watch itself does not
// read s reactively). If immediate is true, cb also runs once right away
// with s's current value as both old and new.
func Watch[T any](s *Signal[T], cb func(old, new T), immediate bool) *WatchHandle {
	unsubscribe := s.Subscribe(cb)
	if immediate {
		cur := Untrack(s.Read)
		cb(cur, cur)
	}
	return &WatchHandle{stop: unsubscribe}
}
