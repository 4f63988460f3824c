// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package dependency

import "github.com/kraklabs/xvc/pkg/diff"

// StepDep invalidates a step whenever the named step it depends on
// reruns. Reproduced from upstream xvc's StepDep
// (original_source/pipeline/src/pipeline/deps/step.rs): a single
// `name` field, compared for plain equality at both diff levels.
type StepDep struct {
	Name string
}

func (StepDep) Kind() Kind                  { return KindStep }
func (StepDep) TypeDescription() string     { return "step-dependency" }
func (d StepDep) DiffSuperficial(record, actual StepDep) diff.Diff[StepDep] {
	return d.DiffThorough(record, actual)
}
func (StepDep) DiffThorough(record, actual StepDep) diff.Diff[StepDep] {
	if record == actual {
		return diff.Diff[StepDep]{Case: diff.Identical, Record: record, Actual: actual}
	}
	return diff.Diff[StepDep]{Case: diff.Different, Record: record, Actual: actual}
}
