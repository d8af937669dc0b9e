package wmem

// callbackEntry is one registered (function, user-data) pair, keyed by a
// monotonically increasing id. Per spec.md §5/§9, callbacks fire in reverse
// registration order on every event, and are pruned the moment they return
// false from the same firing that invoked them.
type callbackEntry struct {
	id   uint64
	fn   CallbackFunc
	data any
}

// callbackRegistry backs Allocator.RegisterCallback/UnregisterCallback.
// Entries are kept sorted by ascending id (insertion order, since ids are
// monotonic), and fired newest-first.
type callbackRegistry struct {
	next    uint64
	entries []callbackEntry
}

func (r *callbackRegistry) register(fn CallbackFunc, data any) uint64 {
	r.next++
	id := r.next
	r.entries = append(r.entries, callbackEntry{id: id, fn: fn, data: data})
	return id
}

func (r *callbackRegistry) unregister(id uint64) {
	for i, e := range r.entries {
		if e.id == id {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return
		}
	}
}

// fire invokes every registered callback in reverse registration order,
// removing any that return false. A callback that panics does not prevent
// the remaining (older) callbacks from firing, matching destroy/free_all's
// obligation to release every resource even if a hook misbehaves.
func (r *callbackRegistry) fire(event Event) {
	if len(r.entries) == 0 {
		return
	}

	kept := make([]callbackEntry, 0, len(r.entries))
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if callSafely(e.fn, event, e.data) {
			kept = append(kept, e)
		}
	}

	// kept was built newest-first; restore ascending-id order so the next
	// fire() can again walk the slice from its end to fire newest-first.
	for l, r2 := 0, len(kept)-1; l < r2; l, r2 = l+1, r2-1 {
		kept[l], kept[r2] = kept[r2], kept[l]
	}
	r.entries = kept
}

func callSafely(fn CallbackFunc, event Event, data any) (keep bool) {
	defer func() {
		if recover() != nil {
			keep = false
		}
	}()
	return fn(event, data)
}
