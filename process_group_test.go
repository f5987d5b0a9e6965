package desim_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ygrebnov/desim"
)

func TestSpawnGroup_JoinsAllCompletions(t *testing.T) {
	env := desim.New()

	g, err := desim.SpawnGroup(env, 3, func(i int) desim.Body {
		return desim.BodyFunc(func(p *desim.Process) (any, error) {
			to, err := p.Timeout(float64(i + 1))
			if err != nil {
				return nil, err
			}
			if _, err := p.Await(to); err != nil {
				return nil, err
			}
			return i * 10, nil
		})
	})
	require.NoError(t, err)
	require.Len(t, g.Processes, 3)

	require.NoError(t, env.Run())
	require.True(t, g.Done.IsSucceeded())
	require.Equal(t, 3.0, env.Now())

	results := g.Done.Value().(map[string]any)
	require.Equal(t, 0, results["0"])
	require.Equal(t, 10, results["1"])
	require.Equal(t, 20, results["2"])
}

func TestSpawnGroup_FirstFailurePoisonsJoin(t *testing.T) {
	env := desim.New()
	boom := errors.New("group member failed")

	g, err := desim.SpawnGroup(env, 2, func(i int) desim.Body {
		return desim.BodyFunc(func(p *desim.Process) (any, error) {
			if i == 1 {
				return nil, boom
			}
			to, err := p.Timeout(5)
			if err != nil {
				return nil, err
			}
			_, err = p.Await(to)
			return nil, err
		})
	})
	require.NoError(t, err)

	require.NoError(t, env.Run(desim.UntilEvent(g.Done)))
	require.True(t, g.Done.IsFailed())
	require.ErrorIs(t, g.Done.Err(), boom)
}

func TestSpawnGroup_RejectsNonPositiveCount(t *testing.T) {
	env := desim.New()
	_, err := desim.SpawnGroup(env, 0, func(i int) desim.Body {
		return desim.BodyFunc(func(p *desim.Process) (any, error) { return nil, nil })
	})
	require.ErrorIs(t, err, desim.ErrEmptyCombinator)
}
