package desim

// Body is the user-overridable routine a Process adapts to the Event
// substrate: Init runs once at construction time for setup, Run is the
// suspendable body itself. This is the Go expression of the "subclass
// overrides init/run" authoring convention: an interface in place of
// inheritance.
type Body interface {
	// Init performs construction-time setup. It runs synchronously before
	// the Process's first step is scheduled; it must not call p.Await.
	Init(p *Process) error
	// Run is the suspendable body. It suspends only by calling p.Await; it
	// must never be called directly by anything other than the Process
	// machinery.
	Run(p *Process) (any, error)
}

// BodyFunc adapts a plain function to Body with a no-op Init, the
// functional-style convenience every combinator-friendly constructor in
// this package offers alongside its interface form.
type BodyFunc func(p *Process) (any, error)

// Init implements Body with no construction-time setup.
func (f BodyFunc) Init(*Process) error { return nil }

// Run implements Body by invoking f.
func (f BodyFunc) Run(p *Process) (any, error) { return f(p) }

// resumeMsg carries the result of a suspension point back into a paused
// routine goroutine.
type resumeMsg struct {
	value any
	err   error
}

// yieldMsg carries either a newly-yielded Event or a termination outcome
// from a routine goroutine back to the driving Environment.
type yieldMsg struct {
	event      *Event
	terminated bool
	result     any
	err        error
}

// Process wraps a user-defined cooperative routine (Body) and adapts it to
// the Event substrate.
//
// Go has no generator/coroutine primitive exposed to library code the way
// the routine's original language does, so Process is implemented with the
// third strategy the kernel's design notes sanction: one dedicated goroutine
// per Process, handed control strictly one at a time via unbuffered channel
// rendezvous with the Environment's single driving goroutine. At any instant
// exactly one of {the Environment's driver, this Process's body} is actually
// computing — the other is blocked on a channel receive — so user code
// between suspension points runs with the same single-threaded guarantees a
// native coroutine would give, and the channel handoff establishes the
// happens-before edges that make touching shared kernel state (Queue items,
// Resource in-use, the scheduled-entry heap) safe without locks.
type Process struct {
	env *Environment
	id  uint64

	resumeCh chan resumeMsg
	yieldCh  chan yieldMsg

	completion *Event
}

// NewProcess constructs a Process from body: it runs body.Init synchronously,
// registers the Process as live on env, starts its dedicated goroutine, and
// schedules its first step at now.
func NewProcess(env *Environment, body Body) (*Process, error) {
	p := &Process{
		env:        env,
		resumeCh:   make(chan resumeMsg),
		yieldCh:    make(chan yieldMsg),
		completion: NewEvent(env),
	}

	if err := body.Init(p); err != nil {
		return nil, err
	}

	p.id = env.nextProcessID()
	env.onProcessCreated(p)

	go p.runBody(body)

	if _, err := env.schedule(0, func() { p.step(resumeMsg{}) }); err != nil {
		return nil, err
	}
	return p, nil
}

// NewProcessFunc is NewProcess for a plain function body (BodyFunc).
func NewProcessFunc(env *Environment, fn func(p *Process) (any, error)) (*Process, error) {
	return NewProcess(env, BodyFunc(fn))
}

// runBody blocks on the initial resumeCh receive before calling body.Run, so
// no user code executes on this goroutine until the driver's first step
// explicitly hands control over. Without this gate, the Go scheduler is free
// to run this goroutine's pre-Await code concurrently with the constructing
// goroutine (and with every other just-spawned Process), racing on shared
// kernel state such as env.heap or a Resource's waiters.
func (p *Process) runBody(body Body) {
	<-p.resumeCh
	result, err := body.Run(p)
	p.yieldCh <- yieldMsg{terminated: true, result: result, err: err}
}

// Await suspends the calling routine until e resolves, returning e's value
// or a non-nil error if e failed. This is the only suspension point in the
// system: user code may pause only by calling Await.
func (p *Process) Await(e *Event) (any, error) {
	p.yieldCh <- yieldMsg{event: e}
	msg := <-p.resumeCh
	return msg.value, msg.err
}

// Timeout is a convenience that constructs a Timeout Event on this
// Process's Environment. It does not itself suspend; pass the result to
// Await.
func (p *Process) Timeout(d float64) (*Event, error) {
	return NewTimeout(p.env, d, nil)
}

// Now returns the Process's Environment's current virtual time.
func (p *Process) Now() float64 { return p.env.Now() }

// Completion returns the Event that resolves when this Process terminates:
// succeeded with the routine's return value, or failed with a
// *ProcessFailure wrapping the routine's error.
func (p *Process) Completion() *Event { return p.completion }

// ID returns the Process's identity, unique within its Environment.
func (p *Process) ID() uint64 { return p.id }

// Env returns the Environment this Process was constructed on.
func (p *Process) Env() *Environment { return p.env }

// step is called exclusively by the Environment's driver goroutine. It hands
// control to the body goroutine by sending resume on resumeCh — on the very
// first call this is what releases runBody's start-gate and lets body.Run
// begin; on every later call it delivers resume as the result of the
// routine's last suspension point — then waits for the next yield.
func (p *Process) step(resume resumeMsg) {
	p.resumeCh <- resume

	msg := <-p.yieldCh
	if msg.terminated {
		p.env.onProcessTerminated(p)
		if msg.err != nil {
			_ = p.completion.Fail(newProcessFailure(p.id, msg.err))
		} else {
			_ = p.completion.Succeed(msg.result)
		}
		return
	}

	e := msg.event
	e.Subscribe(func(v any, err error) {
		_, _ = p.env.schedule(0, func() { p.step(resumeMsg{value: v, err: err}) })
	})
}
