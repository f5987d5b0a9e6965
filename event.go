package desim

// eventState is the three-state lifecycle of an Event: pending, succeeded, failed.
type eventState int8

const (
	statePending eventState = iota
	stateSucceeded
	stateFailed
)

// callback is a single subscriber continuation: invoked with the Event's
// value on success, or with a non-nil err on failure.
type callback func(value any, err error)

// Event is a one-shot future: it transitions at most once from pending to
// either succeeded(v) or failed(e), and runs every subscribed callback,
// in subscription order, dispatched through the owning Environment so that
// resolving many events inside one callback never deepens the call stack
// and the global (time, serial) ordering is preserved.
//
// An Event is owned by whoever created it (Timeout, Queue, Resource, Barrier,
// AllOf/FirstOf, or user code via NewEvent); subscribers hold only borrowed
// references.
type Event struct {
	env       *Environment
	state     eventState
	value     any
	err       error
	callbacks []callback

	cancelled bool
	// onCancel, when set by the Event's owner at creation time, scrubs this
	// Event from whatever waiter list it was parked on (a Queue's getters, a
	// Resource's waiters, a Barrier's waiters) or cancels its backing
	// scheduled entry (Timeout). It is the mechanism FirstOf uses to make
	// cancellation of a losing child observable.
	onCancel func()
}

// NewEvent returns a fresh pending Event owned by env.
func NewEvent(env *Environment) *Event {
	return &Event{env: env, state: statePending}
}

// Succeed transitions the Event from pending to succeeded(v), dispatching
// every subscribed callback. It fails with ErrAlreadyResolved if the Event
// is not pending.
func (e *Event) Succeed(v any) error {
	if e.state != statePending {
		return ErrAlreadyResolved
	}
	e.state = stateSucceeded
	e.value = v
	e.dispatch()
	return nil
}

// Fail transitions the Event from pending to failed(err), dispatching every
// subscribed callback. It fails with ErrAlreadyResolved if the Event is not
// pending.
func (e *Event) Fail(err error) error {
	if e.state != statePending {
		return ErrAlreadyResolved
	}
	e.state = stateFailed
	e.err = err
	e.dispatch()
	return nil
}

func (e *Event) dispatch() {
	cbs := e.callbacks
	e.callbacks = nil
	for _, cb := range cbs {
		e.env.scheduleCallback(cb, e.value, e.err)
	}
}

// Subscribe registers cb to run when the Event resolves. If the Event has
// already resolved, cb is dispatched through the Environment to run at the
// current time, preserving deterministic ordering rather than running
// inline.
func (e *Event) Subscribe(cb func(value any, err error)) {
	if e.state == statePending {
		e.callbacks = append(e.callbacks, cb)
		return
	}
	e.env.scheduleCallback(cb, e.value, e.err)
}

// Cancel marks the Event as cancelled and, if the creator registered a
// cancellation hook, invokes it. Cancelling an already-resolved Event is a
// harmless no-op: its past callback dispatch is not undone, and it does not
// propagate into FirstOf's combined result (a losing succeeded or failed
// Event has no further effect — see FirstOf).
//
// Cancel is idempotent.
func (e *Event) Cancel() {
	if e.cancelled {
		return
	}
	e.cancelled = true
	if e.onCancel != nil {
		e.onCancel()
	}
}

// IsCancelled reports whether Cancel has been called on this Event.
func (e *Event) IsCancelled() bool { return e.cancelled }

// IsPending reports whether the Event has not yet resolved.
func (e *Event) IsPending() bool { return e.state == statePending }

// IsSucceeded reports whether the Event resolved successfully.
func (e *Event) IsSucceeded() bool { return e.state == stateSucceeded }

// IsFailed reports whether the Event resolved with a failure.
func (e *Event) IsFailed() bool { return e.state == stateFailed }

// Value returns the Event's resolved value. It is only meaningful once
// IsSucceeded reports true.
func (e *Event) Value() any { return e.value }

// Err returns the Event's failure. It is only meaningful once IsFailed
// reports true.
func (e *Event) Err() error { return e.err }
