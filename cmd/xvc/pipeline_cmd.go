// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/xvc/internal/errors"
	"github.com/kraklabs/xvc/internal/output"
	"github.com/kraklabs/xvc/internal/ui"
	"github.com/kraklabs/xvc/pkg/dependency"
	"github.com/kraklabs/xvc/pkg/ecs"
	"github.com/kraklabs/xvc/pkg/pipeline"
	"github.com/kraklabs/xvc/pkg/pmp"
	"github.com/kraklabs/xvc/pkg/scheduler"
)

// runPipeline dispatches 'pipeline new|update|delete|list|run|step'
// (spec.md §6 CLI surface), grounded on the teacher's cmd/cie/main.go
// command-switch idiom, one level deeper for a subcommand group.
func runPipeline(args []string, configPath string, globals GlobalFlags) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: xvc pipeline <new|update|delete|list|run|step> [options]")
		os.Exit(errors.ExitUsage)
	}
	sub := args[0]
	rest := args[1:]
	switch sub {
	case "new":
		runPipelineNew(rest, configPath, globals)
	case "update":
		runPipelineUpdate(rest, configPath, globals)
	case "delete":
		runPipelineDelete(rest, configPath, globals)
	case "list":
		runPipelineList(rest, configPath, globals)
	case "run":
		runPipelineRun(rest, configPath, globals)
	case "step":
		runPipelineStep(rest, configPath, globals)
	default:
		fmt.Fprintf(os.Stderr, "Unknown pipeline subcommand: %s\n", sub)
		os.Exit(errors.ExitUsage)
	}
}

func runPipelineNew(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("pipeline new", flag.ExitOnError)
	name := fs.String("name", "", "Pipeline name (required)")
	workdir := fs.String("workdir", "", "Pipeline working directory, relative to the repository root")
	if err := fs.Parse(args); err != nil {
		os.Exit(errors.ExitUsage)
	}
	if *name == "" {
		fmt.Fprintln(os.Stderr, "Error: --name is required")
		os.Exit(errors.ExitUsage)
	}

	repo := mustOpenRepo(configPath, globals)
	if _, _, err := pipeline.New(pipeline.Dir(repo.XvcDir), *name, *workdir); err != nil {
		errors.FatalError(err, globals.JSON)
	}
	if !globals.Quiet {
		ui.Success(fmt.Sprintf("Created pipeline %q", *name))
	}
}

func runPipelineDelete(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("pipeline delete", flag.ExitOnError)
	name := fs.String("name", "", "Pipeline name (required)")
	if err := fs.Parse(args); err != nil {
		os.Exit(errors.ExitUsage)
	}
	if *name == "" {
		fmt.Fprintln(os.Stderr, "Error: --name is required")
		os.Exit(errors.ExitUsage)
	}

	repo := mustOpenRepo(configPath, globals)
	defaultName := repo.Config.String("pipeline.default", "default")
	if err := pipeline.Delete(pipeline.Dir(repo.XvcDir), *name, defaultName); err != nil {
		errors.FatalError(err, globals.JSON)
	}
	if !globals.Quiet {
		ui.Success(fmt.Sprintf("Deleted pipeline %q", *name))
	}
}

// runPipelineUpdate implements the only currently defined mutation,
// --default, per DESIGN.md's resolution of spec.md §9 open question
// (b): it sets the pipeline.default config key rather than mutating
// any ECS record.
func runPipelineUpdate(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("pipeline update", flag.ExitOnError)
	name := fs.String("name", "", "Pipeline name (required)")
	setDefault := fs.Bool("default", false, "Make this pipeline the default (writes pipeline.default to the project config)")
	if err := fs.Parse(args); err != nil {
		os.Exit(errors.ExitUsage)
	}
	if *name == "" {
		fmt.Fprintln(os.Stderr, "Error: --name is required")
		os.Exit(errors.ExitUsage)
	}

	repo := mustOpenRepo(configPath, globals)
	names, err := pipeline.ListNames(pipeline.Dir(repo.XvcDir))
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}
	found := false
	for _, n := range names {
		if n == *name {
			found = true
		}
	}
	if !found {
		errors.FatalError(errors.KeyNotFound(fmt.Sprintf("pipeline %q", *name)), globals.JSON)
	}

	if *setDefault {
		projectConfigPath := filepath.Join(repo.XvcDir, "config.yaml")
		if err := writeProjectConfigKey(projectConfigPath, "pipeline", "default", *name); err != nil {
			errors.FatalError(errors.IoError("cannot update project config", err), globals.JSON)
		}
	}
	if !globals.Quiet {
		ui.Success(fmt.Sprintf("Updated pipeline %q", *name))
	}
}

func runPipelineList(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("pipeline list", flag.ExitOnError)
	showSteps := fs.Bool("steps", false, "Also list each pipeline's steps")
	if err := fs.Parse(args); err != nil {
		os.Exit(errors.ExitUsage)
	}

	repo := mustOpenRepo(configPath, globals)
	names, err := pipeline.ListNames(pipeline.Dir(repo.XvcDir))
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}
	defaultName := repo.Config.String("pipeline.default", "default")

	if globals.JSON {
		type jsonPipeline struct {
			Name    string   `json:"name"`
			Default bool     `json:"default"`
			Steps   []string `json:"steps,omitempty"`
		}
		result := make([]jsonPipeline, 0, len(names))
		for _, n := range names {
			jp := jsonPipeline{Name: n, Default: n == defaultName}
			if *showSteps {
				if s, err := pipeline.Load(pipeline.PathForName(pipeline.Dir(repo.XvcDir), n)); err == nil {
					for _, st := range s.Steps {
						jp.Steps = append(jp.Steps, st.Name)
					}
				}
			}
			result = append(result, jp)
		}
		if err := output.JSON(result); err != nil {
			errors.FatalError(errors.SerializationError("cannot encode pipeline list", err), globals.JSON)
		}
		return
	}

	for _, n := range names {
		marker := ""
		if n == defaultName {
			marker = " (default)"
		}
		fmt.Printf("%s%s\n", n, marker)
		if *showSteps {
			s, err := pipeline.Load(pipeline.PathForName(pipeline.Dir(repo.XvcDir), n))
			if err != nil {
				continue
			}
			for _, st := range s.Steps {
				fmt.Printf("  %s: %s\n", st.Name, st.Command)
			}
		}
	}
}

func runPipelineRun(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("pipeline run", flag.ExitOnError)
	name := fs.String("name", "", "Pipeline name (default: pipeline.default)")
	workers := fs.Int("workers", 4, "Maximum number of steps to run concurrently within a layer")
	if err := fs.Parse(args); err != nil {
		os.Exit(errors.ExitUsage)
	}

	repo := mustOpenRepo(configPath, globals)
	pipelineName := *name
	if pipelineName == "" {
		pipelineName = repo.Config.String("pipeline.default", "default")
	}

	schema, err := pipeline.Load(pipeline.PathForName(pipeline.Dir(repo.XvcDir), pipelineName))
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}

	gen, err := ecs.LoadGenerator(repo.XvcDir)
	if err != nil {
		errors.FatalError(errors.IoError("cannot load entity generator", err), globals.JSON)
	}
	files, err := ecs.Load[dependency.FileDep](repo.StoreDir)
	if err != nil {
		errors.FatalError(errors.IoError("cannot load file dependency store", err), globals.JSON)
	}
	generics, err := ecs.Load[dependency.GenericDep](repo.StoreDir)
	if err != nil {
		errors.FatalError(errors.IoError("cannot load generic dependency store", err), globals.JSON)
	}
	snapshot, err := pmp.New(repo.Root)
	if err != nil {
		errors.FatalError(errors.IoError("cannot snapshot repository paths", err), globals.JSON)
	}
	defer snapshot.Close()

	runner := pipeline.NewRunner(repo.Root, repo.StoreDir, schema, snapshot, files, generics, gen, repo.algorithm())
	graph, err := runner.Graph()
	if err != nil {
		errors.FatalError(errors.IoError("cannot build pipeline graph", err), globals.JSON)
	}

	progressCfg := NewProgressConfig(globals)
	bar := NewProgressBar(progressCfg, int64(len(schema.Steps)), fmt.Sprintf("Running %s", pipelineName))

	lines := make(chan scheduler.OutputLine, 64)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for line := range lines {
			if bar != nil {
				_ = bar.Add(0)
			}
			if !globals.Quiet && !globals.JSON {
				fmt.Printf("[%s] %s\n", line.Step, line.Text)
			}
		}
	}()

	result, runErr := scheduler.Run(context.Background(), graph, runner, *workers, lines)
	close(lines)
	<-done
	if bar != nil {
		_ = bar.Finish()
	}

	if result != nil {
		if err := runner.Commit(result); err != nil {
			errors.FatalError(errors.IoError("cannot persist run results", err), globals.JSON)
		}
	}

	if runErr != nil {
		if cyclic, ok := runErr.(*scheduler.CyclicDependencyError); ok {
			names := make([]string, len(cyclic.Cycle))
			for i, s := range cyclic.Cycle {
				names[i] = string(s)
			}
			errors.FatalError(errors.CyclicDependency(names), globals.JSON)
		}
		errors.FatalError(errors.IoError("pipeline run failed", runErr), globals.JSON)
	}

	if globals.JSON {
		if err := output.JSON(result); err != nil {
			errors.FatalError(errors.SerializationError("cannot encode run result", err), globals.JSON)
		}
		return
	}
	if !globals.Quiet {
		ui.Success(fmt.Sprintf("%s: %d run, %d skipped, %d failed", pipelineName,
			result.StepsRun, result.StepsSkipped, result.StepsFailed))
	}
	if result.StepsFailed > 0 {
		os.Exit(errors.ExitGeneric)
	}
}

// runPipelineStep dispatches 'pipeline step new|remove|list --pipeline NAME'.
func runPipelineStep(args []string, configPath string, globals GlobalFlags) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: xvc pipeline step <new|remove|list> --pipeline <name> [options]")
		os.Exit(errors.ExitUsage)
	}
	sub := args[0]
	rest := args[1:]
	switch sub {
	case "new":
		runPipelineStepNew(rest, configPath, globals)
	case "remove":
		runPipelineStepRemove(rest, configPath, globals)
	case "list":
		runPipelineStepList(rest, configPath, globals)
	default:
		fmt.Fprintf(os.Stderr, "Unknown pipeline step subcommand: %s\n", sub)
		os.Exit(errors.ExitUsage)
	}
}

func runPipelineStepNew(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("pipeline step new", flag.ExitOnError)
	pipelineName := fs.String("pipeline", "", "Pipeline name (required)")
	stepName := fs.String("name", "", "Step name (required)")
	command := fs.String("command", "", "Shell command to run (required unless the step is a structural no-op)")
	invalidate := fs.String("invalidate", string(pipeline.InvalidateByDependencies), "Invalidation policy: by-dependencies|always|never")
	depFiles := fs.StringArray("dep-file", nil, "File dependency path (repeatable)")
	depSteps := fs.StringArray("dep-step", nil, "Step dependency name (repeatable)")
	depGenerics := fs.StringArray("dep-generic", nil, "Generic command dependency (repeatable)")
	outputFiles := fs.StringArray("output-file", nil, "Declared file output path (repeatable)")
	if err := fs.Parse(args); err != nil {
		os.Exit(errors.ExitUsage)
	}
	if *pipelineName == "" || *stepName == "" {
		fmt.Fprintln(os.Stderr, "Error: --pipeline and --name are required")
		os.Exit(errors.ExitUsage)
	}

	repo := mustOpenRepo(configPath, globals)
	path := pipeline.PathForName(pipeline.Dir(repo.XvcDir), *pipelineName)
	schema, err := pipeline.Load(path)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}

	var deps []pipeline.DepSpec
	for _, p := range *depFiles {
		deps = append(deps, pipeline.DepSpec{Kind: "file", Path: p})
	}
	for _, n := range *depSteps {
		deps = append(deps, pipeline.DepSpec{Kind: "step", Name: n})
	}
	for _, c := range *depGenerics {
		deps = append(deps, pipeline.DepSpec{Kind: "generic", Command: c})
	}
	var outputs []pipeline.OutputSpec
	for _, p := range *outputFiles {
		outputs = append(outputs, pipeline.OutputSpec{Kind: "file", Path: p})
	}

	step := pipeline.StepSchema{
		Name: *stepName, Command: *command,
		Invalidate:   pipeline.InvalidatePolicy(*invalidate),
		Dependencies: deps, Outputs: outputs,
	}
	if err := schema.AddStep(step); err != nil {
		errors.FatalError(err, globals.JSON)
	}
	if err := pipeline.Save(schema, path); err != nil {
		errors.FatalError(err, globals.JSON)
	}
	if !globals.Quiet {
		ui.Success(fmt.Sprintf("Added step %q to pipeline %q", *stepName, *pipelineName))
	}
}

func runPipelineStepRemove(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("pipeline step remove", flag.ExitOnError)
	pipelineName := fs.String("pipeline", "", "Pipeline name (required)")
	stepName := fs.String("name", "", "Step name (required)")
	if err := fs.Parse(args); err != nil {
		os.Exit(errors.ExitUsage)
	}
	if *pipelineName == "" || *stepName == "" {
		fmt.Fprintln(os.Stderr, "Error: --pipeline and --name are required")
		os.Exit(errors.ExitUsage)
	}

	repo := mustOpenRepo(configPath, globals)
	path := pipeline.PathForName(pipeline.Dir(repo.XvcDir), *pipelineName)
	schema, err := pipeline.Load(path)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}
	if err := schema.RemoveStep(*stepName); err != nil {
		errors.FatalError(err, globals.JSON)
	}
	if err := pipeline.Save(schema, path); err != nil {
		errors.FatalError(err, globals.JSON)
	}
	if !globals.Quiet {
		ui.Success(fmt.Sprintf("Removed step %q from pipeline %q", *stepName, *pipelineName))
	}
}

func runPipelineStepList(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("pipeline step list", flag.ExitOnError)
	pipelineName := fs.String("pipeline", "", "Pipeline name (required)")
	if err := fs.Parse(args); err != nil {
		os.Exit(errors.ExitUsage)
	}
	if *pipelineName == "" {
		fmt.Fprintln(os.Stderr, "Error: --pipeline is required")
		os.Exit(errors.ExitUsage)
	}

	repo := mustOpenRepo(configPath, globals)
	schema, err := pipeline.Load(pipeline.PathForName(pipeline.Dir(repo.XvcDir), *pipelineName))
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}

	if globals.JSON {
		if err := output.JSON(schema.Steps); err != nil {
			errors.FatalError(errors.SerializationError("cannot encode step list", err), globals.JSON)
		}
		return
	}
	for _, st := range schema.Steps {
		fmt.Printf("%s: %s (%s)\n", st.Name, st.Command, st.Invalidate)
	}
}
