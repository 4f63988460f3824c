// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package dependency

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"github.com/kraklabs/xvc/pkg/diff"
	"github.com/kraklabs/xvc/pkg/digest"
)

// GenericDep invalidates a step when the stdout of an arbitrary shell
// command changes. Reproduced from upstream xvc's GenericDep
// (original_source/pipeline/src/pipeline/deps/generic.rs): the
// command's stdout is hashed into OutputDigest, and any non-empty
// stderr or non-zero exit is a hard error rather than "no change" —
// GenericDep is strict about command health, unlike StepDep which has
// no notion of a failing dependency.
type GenericDep struct {
	Command       string
	OutputDigest  *digest.StdoutDigest
}

func (GenericDep) Kind() Kind              { return KindGeneric }
func (GenericDep) TypeDescription() string { return "generic-dependency" }

// Run executes Command via the shell and returns a copy of d with
// OutputDigest set from its stdout, refusing to swallow a failing or
// noisy command the way upstream's update_output_digest does.
func (d GenericDep) Run(ctx context.Context, algorithm digest.HashAlgorithm) (GenericDep, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", d.Command)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if stderr.Len() > 0 || err != nil {
		return GenericDep{}, fmt.Errorf("dependency: generic command %q failed: %w (stderr: %s)", d.Command, err, stderr.String())
	}
	sd, digestErr := digest.NewStdoutDigest(stdout.String(), algorithm)
	if digestErr != nil {
		return GenericDep{}, digestErr
	}
	return GenericDep{Command: d.Command, OutputDigest: &sd}, nil
}

func (d GenericDep) DiffSuperficial(record, actual GenericDep) diff.Diff[GenericDep] {
	return d.DiffThorough(record, actual)
}

func (GenericDep) DiffThorough(record, actual GenericDep) diff.Diff[GenericDep] {
	if record.Command == actual.Command && digestsEqual(record.OutputDigest, actual.OutputDigest) {
		return diff.Diff[GenericDep]{Case: diff.Identical, Record: record, Actual: actual}
	}
	return diff.Diff[GenericDep]{Case: diff.Different, Record: record, Actual: actual}
}

func digestsEqual(a, b *digest.StdoutDigest) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Digest() == b.Digest()
}
