// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package scheduler

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRunCommandStreamsStdoutAndStderr(t *testing.T) {
	lines := make(chan OutputLine, 16)
	exitCode, err := RunCommand(context.Background(), "echo-step", "echo out; echo err 1>&2", lines)
	require.NoError(t, err)
	require.Equal(t, 0, exitCode)

	close(lines)
	var sawStdout, sawStderr bool
	for l := range lines {
		if l.Stderr {
			sawStderr = true
		} else {
			sawStdout = true
		}
	}
	require.True(t, sawStdout)
	require.True(t, sawStderr)
}

func TestRunCommandReturnsNonZeroExitCode(t *testing.T) {
	lines := make(chan OutputLine, 4)
	exitCode, err := RunCommand(context.Background(), "fail-step", "exit 7", lines)
	require.Error(t, err)
	require.Equal(t, 7, exitCode)
}

func TestRunCommandCancellationSendsSIGTERMAndReturnsContextError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	lines := make(chan OutputLine, 4)
	_, err := RunCommand(ctx, "sleep-step", "sleep 5", lines)
	require.Error(t, err)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStreamLinesCapsAggregateCapturedBytes(t *testing.T) {
	t.Setenv("XVC_STEP_OUTPUT_SOFT_LIMIT_BYTES", "10")

	lines := make(chan OutputLine, 16)
	var captured int64
	r := strings.NewReader("0123456789\nabcdefghij\n")
	var wg sync.WaitGroup
	wg.Add(1)
	streamLines(&wg, "cap-step", r, false, lines, &captured)
	close(lines)

	var forwarded int
	for range lines {
		forwarded++
	}
	require.Less(t, forwarded, 2, "forwarding should stop once the soft limit is crossed")
}
