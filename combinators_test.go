package desim_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ygrebnov/desim"
)

func TestAllOf_EmptyIsKernelMisuse(t *testing.T) {
	env := desim.New()
	_, err := desim.AllOf(env)
	require.ErrorIs(t, err, desim.ErrEmptyCombinator)
}

func TestFirstOf_EmptyIsKernelMisuse(t *testing.T) {
	env := desim.New()
	_, err := desim.FirstOf(env)
	require.ErrorIs(t, err, desim.ErrEmptyCombinator)
}

// Property 7: AllOf's resulting mapping contains exactly the keys provided.
func TestAllOf_CompletenessAndValues(t *testing.T) {
	env := desim.New()
	a, err := desim.NewTimeout(env, 1, "a-val")
	require.NoError(t, err)
	b, err := desim.NewTimeout(env, 3, "b-val")
	require.NoError(t, err)
	c, err := desim.NewTimeout(env, 2, "c-val")
	require.NoError(t, err)

	combined, err := desim.AllOf(env, desim.Named{Key: "a", Event: a}, desim.Named{Key: "b", Event: b}, desim.Named{Key: "c", Event: c})
	require.NoError(t, err)

	require.NoError(t, env.Run())
	require.True(t, combined.IsSucceeded())

	results := combined.Value().(map[string]any)
	require.Len(t, results, 3)
	require.Equal(t, "a-val", results["a"])
	require.Equal(t, "b-val", results["b"])
	require.Equal(t, "c-val", results["c"])
	require.Equal(t, 3.0, env.Now())
}

func TestAllOf_FirstFailurePoisonsImmediately(t *testing.T) {
	env := desim.New()
	boom := errors.New("boom")

	ok := desim.NewEvent(env)
	bad := desim.NewEvent(env)
	late := desim.NewEvent(env)

	combined, err := desim.AllOf(env,
		desim.Named{Key: "ok", Event: ok},
		desim.Named{Key: "bad", Event: bad},
		desim.Named{Key: "late", Event: late},
	)
	require.NoError(t, err)

	_, err = env.Schedule(1, func() { _ = ok.Succeed("fine") })
	require.NoError(t, err)
	_, err = env.Schedule(2, func() { _ = bad.Fail(boom) })
	require.NoError(t, err)
	_, err = env.Schedule(5, func() { _ = late.Succeed("too-late") })
	require.NoError(t, err)

	require.NoError(t, env.Run(desim.UntilEvent(combined)))
	require.True(t, combined.IsFailed())
	require.ErrorIs(t, combined.Err(), boom)
	require.Equal(t, 2.0, env.Now())

	// "late" is left alone: it may still resolve, its result just doesn't
	// matter anymore.
	require.NoError(t, env.Run())
	require.True(t, late.IsSucceeded())
}

// S4 — Race and cancel: a process awaits FirstOf({a: Timeout(5), b:
// q.Get()}) where q is empty. At time 3, another process puts "x" on q.
// Expected: FirstOf resolves at 3 with ("b", "x"); the pending Timeout(5)
// never triggers any observable effect.
func TestScenario_FirstOfRaceCancelsLosingTimeout(t *testing.T) {
	env := desim.New()
	q := desim.NewQueue[string](env)

	to, err := desim.NewTimeout(env, 5, nil)
	require.NoError(t, err)

	var timeoutFired bool
	to.Subscribe(func(any, error) { timeoutFired = true })

	getEv := q.Get()
	combined, err := desim.FirstOf(env, desim.Named{Key: "a", Event: to}, desim.Named{Key: "b", Event: getEv})
	require.NoError(t, err)

	_, err = env.Schedule(3, func() { q.Put("x") })
	require.NoError(t, err)

	require.NoError(t, env.Run(desim.UntilEvent(combined)))

	require.True(t, combined.IsSucceeded())
	result := combined.Value().(desim.FirstOfResult)
	require.Equal(t, "b", result.Key)
	require.Equal(t, "x", result.Value)
	require.Equal(t, 3.0, env.Now())

	// Draining the rest of the heap pops the cancelled Timeout entry as a
	// no-op: its subscriber never runs and the Event stays pending.
	require.NoError(t, env.Run())
	require.False(t, timeoutFired)
	require.True(t, to.IsCancelled())
	require.True(t, to.IsPending())
}

func TestFirstOf_CancelsLosingResourceAcquire(t *testing.T) {
	env := desim.New()
	r := desim.NewResource(env, 0) // never available on its own

	acquire := r.Acquire()
	require.True(t, acquire.IsPending())

	winner, err := desim.NewTimeout(env, 1, "won")
	require.NoError(t, err)

	combined, err := desim.FirstOf(env, desim.Named{Key: "timeout", Event: winner}, desim.Named{Key: "acquire", Event: acquire})
	require.NoError(t, err)

	require.NoError(t, env.Run())
	require.True(t, combined.IsSucceeded())
	require.Equal(t, 0, r.Waiters(), "losing acquire must be scrubbed from the resource waiter list")
}

func TestFirstOf_CancellationRecursesThroughNestedCombinators(t *testing.T) {
	env := desim.New()

	innerA, err := desim.NewTimeout(env, 10, "inner-a")
	require.NoError(t, err)
	innerB, err := desim.NewTimeout(env, 10, "inner-b")
	require.NoError(t, err)
	innerAllOf, err := desim.AllOf(env, desim.Named{Key: "a", Event: innerA}, desim.Named{Key: "b", Event: innerB})
	require.NoError(t, err)

	winner, err := desim.NewTimeout(env, 1, "won")
	require.NoError(t, err)

	combined, err := desim.FirstOf(env, desim.Named{Key: "winner", Event: winner}, desim.Named{Key: "loser", Event: innerAllOf})
	require.NoError(t, err)

	var innerAFired, innerBFired bool
	innerA.Subscribe(func(any, error) { innerAFired = true })
	innerB.Subscribe(func(any, error) { innerBFired = true })

	require.NoError(t, env.Run())
	require.True(t, combined.IsSucceeded())
	require.True(t, innerAllOf.IsCancelled())
	require.False(t, innerAFired)
	require.False(t, innerBFired)
}
