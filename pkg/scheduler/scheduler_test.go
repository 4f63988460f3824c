// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package scheduler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLayersOrdersByDependency(t *testing.T) {
	g, err := NewGraph(map[StepName][]StepName{
		"a": nil,
		"b": {"a"},
		"c": {"a", "b"},
	})
	require.NoError(t, err)

	layers, err := g.Layers()
	require.NoError(t, err)
	require.Equal(t, [][]StepName{{"a"}, {"b"}, {"c"}}, layers)
}

func TestLayersDetectsCycle(t *testing.T) {
	g, err := NewGraph(map[StepName][]StepName{
		"a": {"b"},
		"b": {"a"},
	})
	require.NoError(t, err)

	_, err = g.Layers()
	require.Error(t, err)
	var cyc *CyclicDependencyError
	require.ErrorAs(t, err, &cyc)
}

func TestNewGraphRejectsUndefinedDependency(t *testing.T) {
	_, err := NewGraph(map[StepName][]StepName{
		"a": {"ghost"},
	})
	require.Error(t, err)
}

type fakeRunner struct {
	decisions map[StepName]Decision
}

func (f *fakeRunner) Diff(ctx context.Context, step StepName) (Decision, error) {
	return f.decisions[step], nil
}

func (f *fakeRunner) Command(step StepName) string {
	return "true"
}

func TestRunSkipsStepsWithNoChange(t *testing.T) {
	g, err := NewGraph(map[StepName][]StepName{"a": nil, "b": {"a"}})
	require.NoError(t, err)

	runner := &fakeRunner{decisions: map[StepName]Decision{"a": DecisionSkip, "b": DecisionRun}}
	result, err := Run(context.Background(), g, runner, 2, nil)
	require.NoError(t, err)
	require.Equal(t, 1, result.StepsSkipped)
	require.Equal(t, 1, result.StepsRun)
	require.Equal(t, 0, result.StepsFailed)
}

func TestRunCascadesFailureToDependents(t *testing.T) {
	g, err := NewGraph(map[StepName][]StepName{
		"a": nil,
		"b": {"a"},
		"c": {"b"},
		"d": nil,
	})
	require.NoError(t, err)

	runner := &failingRunner{failStep: "a"}
	result, err := Run(context.Background(), g, runner, 2, nil)
	require.NoError(t, err)

	require.Equal(t, 1, result.StepsFailed)
	require.Equal(t, 1, result.StepsRun)
	require.Equal(t, 2, result.StepsSkipped)

	byStep := make(map[StepName]StepResult, len(result.Results))
	for _, r := range result.Results {
		byStep[r.Step] = r
	}
	require.Equal(t, "upstream failure: a", byStep["b"].Cause)
	require.Equal(t, "upstream failure: a", byStep["c"].Cause)
	require.Empty(t, byStep["d"].Cause)
}

// failingRunner always decides to run every step, but Command makes
// failStep exit nonzero so Run's cascade logic has something to chase.
type failingRunner struct {
	failStep StepName
}

func (f *failingRunner) Diff(ctx context.Context, step StepName) (Decision, error) {
	return DecisionRun, nil
}

func (f *failingRunner) Command(step StepName) string {
	if step == f.failStep {
		return "exit 1"
	}
	return "true"
}

func TestCanTransitionRejectsIllegalJumps(t *testing.T) {
	require.True(t, CanTransition(Begin, WaitingDeps))
	require.False(t, CanTransition(Begin, Running))
	require.True(t, CanTransition(CheckingSuperficial, Done))
}
