package desim

import (
	"container/heap"
	"context"

	"github.com/ygrebnov/desim/internal/entrypool"
	"github.com/ygrebnov/desim/metrics"
)

// scheduledEntry is a (time, serial, callback) triple in the Environment's
// driver heap. serial is assigned at insertion time and breaks ties between
// entries scheduled for the same virtual time, guaranteeing deterministic
// dispatch order.
type scheduledEntry struct {
	time      float64
	serial    uint64
	cb        func()
	cancelled bool
	index     int // maintained by container/heap; unused outside it

	// generation is bumped each time this (recycled) node is handed out by
	// Schedule. A ScheduleHandle captures the generation current at its own
	// creation, so Cancel on a handle for an entry that has since dispatched
	// and been recycled for an unrelated Schedule call is a true no-op
	// instead of silently cancelling that unrelated entry.
	generation uint64
}

type entryHeap []*scheduledEntry

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool {
	if h[i].time != h[j].time {
		return h[i].time < h[j].time
	}
	return h[i].serial < h[j].serial
}

func (h entryHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *entryHeap) Push(x any) {
	e := x.(*scheduledEntry)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

// ScheduleHandle cancels a previously scheduled entry. Cancelling marks the
// entry's callback as a no-op; the entry remains in the heap until it is
// dequeued in its normal (time, serial) order.
type ScheduleHandle struct {
	entry      *scheduledEntry
	generation uint64
}

// Cancel marks the scheduled entry as a no-op. Safe to call more than once
// and safe to call after the entry has already dispatched (it is then a
// no-op). It is also a no-op if the underlying node has since dispatched and
// been recycled into an unrelated Schedule call: the handle's captured
// generation no longer matches the node's current one, so a stale Cancel
// (for example from a losing FirstOf Timeout that already fired) cannot
// reach into, and silently drop, that unrelated entry.
func (h *ScheduleHandle) Cancel() {
	if h == nil || h.entry == nil {
		return
	}
	if h.entry.generation != h.generation {
		return
	}
	h.entry.cancelled = true
}

// envConfig is the Option builder state, mirroring the functional-options
// shape the teacher library uses for its Workers configuration.
type envConfig struct {
	metrics   metrics.Provider
	startTime float64
}

// Option configures an Environment constructed via New.
type Option func(*envConfig)

// WithMetrics attaches a metrics.Provider the Environment records simulation
// statistics to (scheduled/dispatched entry counts, live process count).
// The default is metrics.NewNoopProvider.
func WithMetrics(p metrics.Provider) Option {
	return func(c *envConfig) { c.metrics = p }
}

// WithStartTime sets the Environment's initial virtual time (default 0).
func WithStartTime(t float64) Option {
	return func(c *envConfig) { c.startTime = t }
}

// Environment owns the virtual clock, the scheduled-entry priority queue,
// and the insertion-serial counter. It is the sole driver of every Event,
// Process, Queue, PriorityQueue, Resource, and Barrier constructed against
// it. Multiple independent Environments coexist without interference: all
// mutable scheduling state lives on the instance, not in package-level
// variables.
type Environment struct {
	now    float64
	serial uint64
	heap   entryHeap
	closed bool

	entryPool *entrypool.Pool

	processSerial  uint64
	liveProcesses  map[uint64]*Process
	metricsP       metrics.Provider
	scheduledCtr   metrics.Counter
	dispatchedCtr  metrics.Counter
	liveProcsGauge metrics.UpDownCounter
}

// New constructs an Environment ready to schedule entries and drive
// Processes.
func New(opts ...Option) *Environment {
	cfg := envConfig{metrics: metrics.NewNoopProvider()}
	for _, o := range opts {
		o(&cfg)
	}

	env := &Environment{
		now:           cfg.startTime,
		liveProcesses: make(map[uint64]*Process),
		metricsP:      cfg.metrics,
	}
	env.entryPool = entrypool.New(func() any { return &scheduledEntry{} })
	env.scheduledCtr = cfg.metrics.Counter("desim_scheduled_entries_total")
	env.dispatchedCtr = cfg.metrics.Counter("desim_dispatched_entries_total")
	env.liveProcsGauge = cfg.metrics.UpDownCounter("desim_live_processes")
	return env
}

// Now returns the current virtual time.
func (env *Environment) Now() float64 { return env.now }

// Metrics returns the Provider this Environment records statistics to.
func (env *Environment) Metrics() metrics.Provider { return env.metricsP }

// LiveProcesses returns the number of Processes created on this Environment
// that have not yet terminated.
func (env *Environment) LiveProcesses() int { return len(env.liveProcesses) }

// Close tears down the Environment: further Schedule calls fail with
// ErrTornDown. Close does not cancel entries already in the heap; draining
// them (or not) is the caller's choice via Run/Step.
func (env *Environment) Close() { env.closed = true }

// Schedule inserts (now+delay, next serial, cb) into the driver heap and
// returns a handle that can cancel it. delay must be >= 0; delay == 0 is
// legal and runs after every entry already scheduled at now with a smaller
// serial.
func (env *Environment) Schedule(delay float64, cb func()) (*ScheduleHandle, error) {
	if env.closed {
		return nil, ErrTornDown
	}
	if delay < 0 {
		return nil, ErrInvalidSchedule
	}

	entry := env.entryPool.Get().(*scheduledEntry)
	entry.generation++
	entry.time = env.now + delay
	entry.serial = env.serial
	entry.cb = cb
	entry.cancelled = false
	env.serial++

	heap.Push(&env.heap, entry)
	env.scheduledCtr.Add(1)

	return &ScheduleHandle{entry: entry, generation: entry.generation}, nil
}

// schedule is the unexported alias every other kernel type uses internally;
// it exists only so call sites inside this package read as "the environment
// schedules this", matching Schedule's public contract exactly.
func (env *Environment) schedule(delay float64, cb func()) (*ScheduleHandle, error) {
	return env.Schedule(delay, cb)
}

// ScheduleEvent is shorthand for scheduling the resolution of e with value
// at now+delay.
func (env *Environment) ScheduleEvent(delay float64, e *Event, value any) (*ScheduleHandle, error) {
	return env.Schedule(delay, func() { _ = e.Succeed(value) })
}

// scheduleCallback dispatches a resolved Event's subscriber through the
// heap rather than inline, so resolving many events within one callback
// cannot deepen the call stack and so subscription order is preserved
// against every other entry scheduled at the same time.
func (env *Environment) scheduleCallback(cb callback, v any, err error) {
	_, _ = env.Schedule(0, func() { cb(v, err) })
}

func (env *Environment) recycle(entry *scheduledEntry) {
	entry.cb = nil
	env.entryPool.Put(entry)
}

// Step pops and dispatches exactly one scheduled entry, advancing the clock
// to its time. It reports false if the heap was empty. Cancelled entries
// are popped and discarded without running their callback but still count
// as "one step" having been consumed from the heap.
func (env *Environment) Step() bool {
	if env.heap.Len() == 0 {
		return false
	}
	entry := heap.Pop(&env.heap).(*scheduledEntry)
	env.now = entry.time

	if entry.cancelled {
		env.recycle(entry)
		return true
	}

	env.dispatchedCtr.Add(1)
	cb := entry.cb
	env.recycle(entry)
	cb()
	return true
}

// runConfig is Run's option-builder state: at most one stopping condition
// (a time ceiling or an Event) plus an optional context for external abort.
type runConfig struct {
	untilTime  *float64
	untilEvent *Event
	ctx        context.Context
}

// RunOption configures a single Environment.Run call.
type RunOption func(*runConfig)

// Until stops Run once the next scheduled entry's time would exceed t; the
// clock is advanced to t before returning.
func Until(t float64) RunOption {
	return func(c *runConfig) { c.untilTime = &t }
}

// UntilEvent stops Run as soon as e has resolved.
func UntilEvent(e *Event) RunOption {
	return func(c *runConfig) { c.untilEvent = e }
}

// WithRunContext lets an external context abort a runaway Run call. The
// kernel never reads wall-clock time from ctx — only Done() is observed —
// so this does not affect virtual-time determinism.
func WithRunContext(ctx context.Context) RunOption {
	return func(c *runConfig) { c.ctx = ctx }
}

// Run drives the loop until (a) the heap empties, (b) the next entry's time
// would exceed an Until ceiling, (c) an UntilEvent event has resolved, or
// (d) a WithRunContext context is done. It returns the context error in
// case (d), nil otherwise.
func (env *Environment) Run(opts ...RunOption) error {
	var cfg runConfig
	for _, o := range opts {
		o(&cfg)
	}

	for {
		if cfg.ctx != nil {
			select {
			case <-cfg.ctx.Done():
				return cfg.ctx.Err()
			default:
			}
		}

		if env.heap.Len() == 0 {
			return nil
		}

		next := env.heap[0]
		if cfg.untilTime != nil && next.time > *cfg.untilTime {
			env.now = *cfg.untilTime
			return nil
		}
		if cfg.untilEvent != nil && !cfg.untilEvent.IsPending() {
			return nil
		}

		env.Step()
	}
}

func (env *Environment) nextProcessID() uint64 {
	env.processSerial++
	return env.processSerial
}

func (env *Environment) onProcessCreated(p *Process) {
	env.liveProcesses[p.id] = p
	env.liveProcsGauge.Add(1)
}

func (env *Environment) onProcessTerminated(p *Process) {
	delete(env.liveProcesses, p.id)
	env.liveProcsGauge.Add(-1)
}
