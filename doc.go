// Package desim provides a deterministic discrete-event simulation kernel: a
// virtual clock, cooperative processes expressed as suspendable routines,
// inter-process queues, timeouts, priority queues, capacity-bounded
// resources, rendezvous barriers, and event composition primitives (AllOf,
// FirstOf).
//
// Construction
//
//   - New(opts ...Option): current constructor. An Environment owns the
//     clock and the scheduled-entry queue; every other type in this package
//     (Event, Timeout, Queue, PriorityQueue, Resource, Barrier, Process) is
//     constructed against one Environment and is not safe to share across
//     Environments.
//
// Determinism
//
// Two runs of the same construction script, driven the same way, produce
// byte-identical event traces: entries scheduled at the same simulated time
// dispatch in registration order, and the kernel performs no real
// parallelism — see Environment.Run.
//
// Cancellation
//
// There is no out-of-band interrupt. FirstOf is the only cancellation
// primitive: when it resolves, every losing child is marked no-op and
// scrubbed from whatever waiter list it was parked on (a Timeout's schedule
// entry, a Queue's getters, a Resource's waiters).
package desim
