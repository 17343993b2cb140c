package tclc

// QueueEvent appends a deferred callback to the runtime's event queue.
// Events run only when the host drains the queue with DoPendingEvents.
func (rt *Runtime) QueueEvent(fn func()) {
	rt.mu.Lock()
	rt.events = append(rt.events, fn)
	rt.mu.Unlock()
}

// Pending reports the number of queued events.
func (rt *Runtime) Pending() int {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return len(rt.events)
}

// DoPendingEvents runs queued events in order and returns how many ran.
// At most limit events are processed per call; limit <= 0 drains only the
// events queued before the call, so an event that requeues itself cannot
// starve the caller.
func (rt *Runtime) DoPendingEvents(limit int) int {
	rt.mu.Lock()
	n := len(rt.events)
	rt.mu.Unlock()
	if limit <= 0 || limit > n {
		limit = n
	}
	ran := 0
	for ran < limit {
		rt.mu.Lock()
		if len(rt.events) == 0 {
			rt.mu.Unlock()
			break
		}
		fn := rt.events[0]
		rt.events = rt.events[1:]
		rt.mu.Unlock()
		fn()
		ran++
	}
	return ran
}
