package desim

// Barrier is a rendezvous point: Wait appends a pending Event to the
// waiter list, and Release resolves every accumulated waiter with nil, in
// insertion order, then empties the list. There is no automatic release by
// count; the caller owns the trigger. A Barrier is reusable after Release.
type Barrier struct {
	env     *Environment
	waiters []*Event
}

// NewBarrier constructs an empty Barrier owned by env.
func NewBarrier(env *Environment) *Barrier {
	return &Barrier{env: env}
}

// Wait appends a pending Event to the waiter list and returns it.
func (b *Barrier) Wait() *Event {
	e := NewEvent(b.env)
	b.waiters = append(b.waiters, e)
	e.onCancel = func() { b.removeWaiter(e) }
	return e
}

// Release resolves every waiter with nil, in insertion order, and empties
// the waiter list.
func (b *Barrier) Release() {
	ws := b.waiters
	b.waiters = nil
	for _, w := range ws {
		_ = w.Succeed(nil)
	}
}

func (b *Barrier) removeWaiter(e *Event) {
	for i, w := range b.waiters {
		if w == e {
			b.waiters = append(b.waiters[:i], b.waiters[i+1:]...)
			return
		}
	}
}

// Waiters reports the number of callers currently parked on Wait.
func (b *Barrier) Waiters() int { return len(b.waiters) }
