package desim

// Named tags an Event with a key for use in AllOf and FirstOf. Entries are
// passed as an ordered slice rather than a map so iteration order — and
// therefore subscription order, which matters for deterministic tie-breaks
// between events resolving at the same (time, serial) — never depends on Go
// map iteration.
type Named struct {
	Key   string
	Event *Event
}

// FirstOfResult is the (key, value) pair FirstOf's combined Event resolves
// with.
type FirstOfResult struct {
	Key   string
	Value any
}

// AllOf returns an Event that resolves with a map of every child's value,
// keyed by its Named.Key, once all children have succeeded. If any child
// fails, the combined Event fails immediately with that child's error (the
// first, in child-resolution order); remaining children are left alone —
// they may still resolve, but their results are discarded.
//
// AllOf on an empty entries list is a kernel-misuse error.
func AllOf(env *Environment, entries ...Named) (*Event, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyCombinator
	}

	combined := NewEvent(env)
	remaining := len(entries)
	results := make(map[string]any, len(entries))

	for _, ent := range entries {
		ent := ent
		ent.Event.Subscribe(func(v any, err error) {
			if !combined.IsPending() {
				return
			}
			if err != nil {
				_ = combined.Fail(err)
				return
			}
			results[ent.Key] = v
			remaining--
			if remaining == 0 {
				_ = combined.Succeed(results)
			}
		})
	}

	combined.onCancel = func() {
		for _, ent := range entries {
			ent.Event.Cancel()
		}
	}
	return combined, nil
}

// FirstOf returns an Event that resolves with a FirstOfResult as soon as
// the first child resolves. Every losing child is then cancelled: a losing
// Timeout's schedule entry is marked no-op, a losing pending Queue.Get or
// Resource.Acquire is scrubbed from its waiter list, and a losing AllOf or
// FirstOf recurses cancellation into its own children. A losing Event that
// had already resolved (succeeded or failed) before the race settled has no
// further effect.
//
// FirstOf on an empty entries list is a kernel-misuse error.
func FirstOf(env *Environment, entries ...Named) (*Event, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyCombinator
	}

	combined := NewEvent(env)
	resolved := false

	for i, ent := range entries {
		i, ent := i, ent
		ent.Event.Subscribe(func(v any, err error) {
			if resolved {
				return
			}
			resolved = true

			for j, other := range entries {
				if j != i {
					other.Event.Cancel()
				}
			}

			if err != nil {
				_ = combined.Fail(err)
			} else {
				_ = combined.Succeed(FirstOfResult{Key: ent.Key, Value: v})
			}
		})
	}

	combined.onCancel = func() {
		for _, ent := range entries {
			ent.Event.Cancel()
		}
	}
	return combined, nil
}
