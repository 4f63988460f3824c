// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kraklabs/xvc/internal/bootstrap"
	"github.com/kraklabs/xvc/pkg/dependency"
	"github.com/kraklabs/xvc/pkg/digest"
	"github.com/kraklabs/xvc/pkg/ecs"
	"github.com/kraklabs/xvc/pkg/pmp"
	"github.com/kraklabs/xvc/pkg/scheduler"
)

func setupRunnerFixture(t *testing.T) (*Runner, string) {
	t.Helper()
	root := t.TempDir()
	info, err := bootstrap.InitRepository(bootstrap.RepositoryConfig{Root: root}, nil)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(root, "foo.txt"), []byte("hello\n"), 0o644))

	gen, err := ecs.LoadGenerator(info.XvcDir)
	require.NoError(t, err)
	files, err := ecs.Load[dependency.FileDep](info.StoreDir)
	require.NoError(t, err)
	generics, err := ecs.Load[dependency.GenericDep](info.StoreDir)
	require.NoError(t, err)

	snapshot, err := pmp.New(root)
	require.NoError(t, err)

	s := NewSchema("p", "")
	require.NoError(t, s.AddStep(StepSchema{
		Name: "s1", Command: "echo ok", Invalidate: InvalidateByDependencies,
		Dependencies: []DepSpec{{Kind: "file", Path: "foo.txt"}},
	}))

	runner := NewRunner(root, info.StoreDir, s, snapshot, files, generics, gen, digest.Blake3)
	return runner, root
}

func TestDiffRunsStepWhenFileDependencyNeverRecorded(t *testing.T) {
	runner, _ := setupRunnerFixture(t)
	decision, err := runner.Diff(context.Background(), "s1")
	require.NoError(t, err)
	require.Equal(t, scheduler.DecisionRun, decision)
}

func TestCommitThenDiffSkipsUnchangedFile(t *testing.T) {
	runner, _ := setupRunnerFixture(t)

	result := &scheduler.RunResult{Results: []scheduler.StepResult{
		{Step: "s1", State: scheduler.Broadcast, ExitCode: 0},
	}}
	require.NoError(t, runner.Commit(result))

	decision, err := runner.Diff(context.Background(), "s1")
	require.NoError(t, err)
	require.Equal(t, scheduler.DecisionSkip, decision)
}

func TestDiffRerunsAfterFileContentChanges(t *testing.T) {
	runner, root := setupRunnerFixture(t)

	result := &scheduler.RunResult{Results: []scheduler.StepResult{
		{Step: "s1", State: scheduler.Broadcast, ExitCode: 0},
	}}
	require.NoError(t, runner.Commit(result))

	require.NoError(t, os.WriteFile(filepath.Join(root, "foo.txt"), []byte("changed\n"), 0o644))
	snapshot, err := pmp.New(root)
	require.NoError(t, err)
	runner.Snapshot = snapshot

	decision, err := runner.Diff(context.Background(), "s1")
	require.NoError(t, err)
	require.Equal(t, scheduler.DecisionRun, decision)
}

func TestGraphBuildsStepDependencyEdges(t *testing.T) {
	runner, _ := setupRunnerFixture(t)
	require.NoError(t, runner.Schema.AddStep(StepSchema{
		Name: "s2", Command: "echo s2",
		Dependencies: []DepSpec{{Kind: "step", Name: "s1"}},
	}))

	graph, err := runner.Graph()
	require.NoError(t, err)
	layers, err := graph.Layers()
	require.NoError(t, err)
	require.Len(t, layers, 2)
}
