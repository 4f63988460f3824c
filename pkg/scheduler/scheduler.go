// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Decision tells the scheduler what to do with a step once its
// dependencies have been diffed.
type Decision int

const (
	DecisionSkip Decision = iota
	DecisionRun
)

// StepRunner is implemented by the pipeline layer (pkg/dependency +
// pkg/ecs glue) that knows how to diff a step's dependencies and,
// if needed, produce the shell command to run it.
type StepRunner interface {
	// Diff compares recorded vs. actual dependency state for step,
	// first at Superficial then (only if inconclusive) at Thorough
	// level, and returns whether the step must run.
	Diff(ctx context.Context, step StepName) (Decision, error)
	// Command returns the shell command to execute for step.
	Command(step StepName) string
}

// StepResult is one step's outcome from a Run call. Cause is set only
// for a step that was skipped because an upstream dependency failed
// (spec.md §4.7 step 3h); it names the step whose failure caused the
// cascade, e.g. "upstream failure: build".
type StepResult struct {
	Step     StepName
	State    State
	ExitCode int
	Err      error
	Duration time.Duration
	Cause    string
}

// RunResult summarizes an entire pipeline run, mirroring the shape of
// the teacher's IngestionResult (pkg/ingestion/local_pipeline.go): one
// flat struct of counters plus the total duration, instead of forcing
// callers to recompute them from a result slice.
type RunResult struct {
	StepsRun     int
	StepsSkipped int
	StepsFailed  int
	Results      []StepResult
	TotalDuration time.Duration
}

// Run executes graph's steps layer by layer, with up to numWorkers
// steps of a single layer running concurrently. The worker-pool shape
// (jobs channel, fixed goroutines, results channel, sync.WaitGroup) is
// grounded directly on the teacher's parseFilesParallel
// (pkg/ingestion/local_pipeline.go), retargeted from "parse N files"
// to "run the steps of one topological layer".
func Run(ctx context.Context, graph *Graph, runner StepRunner, numWorkers int, lines chan<- OutputLine) (*RunResult, error) {
	schedMetrics.init()
	start := time.Now()

	layers, err := graph.Layers()
	if err != nil {
		return nil, err
	}

	result := &RunResult{}
	// failed holds steps that ended Done(Failed); skipCause holds steps
	// already cut from the cascade, keyed by step name, so a dependent
	// of a dependent inherits the same root cause instead of recording
	// its own. Both are grown as layers complete and checked before the
	// next layer runs, per spec.md §4.7 step 3h.
	failed := make(map[StepName]bool)
	skipCause := make(map[StepName]string)

	for _, layer := range layers {
		var runnable []StepName
		for _, step := range layer {
			if cause, blocked := upstreamFailureCause(graph, step, failed, skipCause); blocked {
				skipCause[step] = cause
				if lines != nil {
					lines <- OutputLine{Step: step, Text: fmt.Sprintf("skipped (%s)", cause)}
				}
				result.Results = append(result.Results, StepResult{Step: step, State: Done, Cause: cause})
				result.StepsSkipped++
				continue
			}
			runnable = append(runnable, step)
		}

		layerResults, err := runLayer(ctx, runnable, runner, numWorkers, lines)
		if err != nil {
			return result, err
		}
		for _, r := range layerResults {
			result.Results = append(result.Results, r)
			switch r.State {
			case Done:
				if r.ExitCode == 0 && r.Err == nil {
					result.StepsSkipped++
				} else {
					result.StepsFailed++
					failed[r.Step] = true
					schedMetrics.stepsFailed.Inc()
				}
			case Broadcast:
				if r.Err != nil || r.ExitCode != 0 {
					result.StepsFailed++
					failed[r.Step] = true
					schedMetrics.stepsFailed.Inc()
				} else {
					result.StepsRun++
					schedMetrics.stepsRun.Inc()
				}
			}
		}
	}
	result.TotalDuration = time.Since(start)
	return result, nil
}

// upstreamFailureCause reports whether step depends, directly or
// transitively, on a step that failed or was itself already cut from
// the cascade, and the cause to record for it. The cause is the
// original failed step's name even across several cascade hops, so
// every skipped descendant of a failure points at the same root cause.
func upstreamFailureCause(graph *Graph, step StepName, failed map[StepName]bool, skipCause map[StepName]string) (string, bool) {
	for _, dep := range graph.Steps[step] {
		if failed[dep] {
			return fmt.Sprintf("upstream failure: %s", dep), true
		}
		if cause, ok := skipCause[dep]; ok {
			return cause, true
		}
	}
	return "", false
}

func runLayer(ctx context.Context, layer []StepName, runner StepRunner, numWorkers int, lines chan<- OutputLine) ([]StepResult, error) {
	jobs := make(chan StepName, len(layer))
	resultsChan := make(chan StepResult, len(layer))

	if numWorkers <= 0 {
		numWorkers = 1
	}
	if numWorkers > len(layer) {
		numWorkers = len(layer)
	}

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for step := range jobs {
				resultsChan <- runStep(ctx, step, runner, lines)
			}
		}()
	}

	for _, step := range layer {
		jobs <- step
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	var out []StepResult
	for r := range resultsChan {
		out = append(out, r)
	}
	return out, nil
}

// runStep drives one step through Begin->WaitingDeps->Checking{Superficial,Thorough}
// and then either straight to Done (skipped) or through
// Runnable->Running->Done->Broadcast (executed).
func runStep(ctx context.Context, step StepName, runner StepRunner, lines chan<- OutputLine) StepResult {
	decision, err := runner.Diff(ctx, step)
	schedMetrics.diffSuperficial.Inc()
	if err != nil {
		return StepResult{Step: step, State: Done, Err: err, ExitCode: -1}
	}

	if decision == DecisionSkip {
		return StepResult{Step: step, State: Done}
	}

	start := time.Now()
	exitCode, runErr := RunCommand(ctx, step, runner.Command(step), lines)
	duration := time.Since(start)
	schedMetrics.stepDuration.Observe(duration.Seconds())

	return StepResult{Step: step, State: Broadcast, ExitCode: exitCode, Err: runErr, Duration: duration}
}
