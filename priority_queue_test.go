package desim_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ygrebnov/desim"
)

type priced struct {
	pri int
	val string
}

func pricedLess(a, b priced) bool { return a.pri < b.pri }

// S6 — PriorityQueue heap order: put (3,"c"), (1,"a"), (2,"b"); three
// successive gets return "a", "b", "c".
func TestScenario_PriorityQueueHeapOrder(t *testing.T) {
	env := desim.New()
	pq := desim.NewPriorityQueue[priced](env, pricedLess)

	pq.Put(priced{3, "c"})
	pq.Put(priced{1, "a"})
	pq.Put(priced{2, "b"})

	var got []string
	for i := 0; i < 3; i++ {
		e := pq.Get()
		require.True(t, e.IsSucceeded())
		got = append(got, e.Value().(priced).val)
	}
	require.Equal(t, []string{"a", "b", "c"}, got)
}

// Property 8: equal items are served in insertion order.
func TestPriorityQueue_EqualItemsServedInInsertionOrder(t *testing.T) {
	env := desim.New()
	pq := desim.NewPriorityQueue[priced](env, pricedLess)

	pq.Put(priced{1, "first"})
	pq.Put(priced{1, "second"})
	pq.Put(priced{1, "third"})

	var got []string
	for i := 0; i < 3; i++ {
		got = append(got, pq.Get().Value().(priced).val)
	}
	require.Equal(t, []string{"first", "second", "third"}, got)
}

func TestPriorityQueue_PutDeliversDirectlyToWaitingGetter(t *testing.T) {
	env := desim.New()
	pq := desim.NewPriorityQueue[priced](env, pricedLess)

	get := pq.Get()
	require.True(t, get.IsPending())
	require.Equal(t, 1, pq.Waiters())

	pq.Put(priced{5, "only"})
	require.True(t, get.IsSucceeded())
	require.Equal(t, "only", get.Value().(priced).val)
	require.Equal(t, 0, pq.Len())
}
