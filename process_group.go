package desim

import "fmt"

// ProcessGroup spawns a fixed set of Processes from the same Environment
// and exposes a single Event that joins all of their completions. It plays
// the same role for Processes that the teacher library's RunAll/Map/ForEach
// family plays for tasks: spawn many units of work, then join on
// completion — re-expressed here over Processes and AllOf instead of
// goroutine-dispatched tasks, since this kernel has no parallel task
// dispatch to begin with.
type ProcessGroup struct {
	Processes []*Process
	// Done resolves with a map["0","1",...] of each Process's return value
	// once every Process has terminated successfully, or fails with the
	// first Process failure encountered (in termination order).
	Done *Event
}

// SpawnGroup constructs n Processes from newBody(i) for i in [0,n) and
// returns a ProcessGroup joining their completions. newBody is called
// synchronously for every index before any Process's first step runs.
func SpawnGroup(env *Environment, n int, newBody func(i int) Body) (*ProcessGroup, error) {
	if n <= 0 {
		return nil, ErrEmptyCombinator
	}

	procs := make([]*Process, n)
	entries := make([]Named, n)

	for i := 0; i < n; i++ {
		p, err := NewProcess(env, newBody(i))
		if err != nil {
			return nil, err
		}
		procs[i] = p
		entries[i] = Named{Key: fmt.Sprintf("%d", i), Event: p.Completion()}
	}

	done, err := AllOf(env, entries...)
	if err != nil {
		return nil, err
	}
	return &ProcessGroup{Processes: procs, Done: done}, nil
}
