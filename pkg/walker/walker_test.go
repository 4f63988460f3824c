// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package walker

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/kraklabs/xvc/pkg/ignore"
	"github.com/stretchr/testify/require"
)

func buildTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for i := 0; i < 20; i++ {
		dir := filepath.Join(root, fmt.Sprintf("pkg%02d", i))
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "b.log"), []byte("noisy"), 0o644))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".xvc", "store"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".xvc", "store", "hidden"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".xvcignore"), []byte("*.log\n"), 0o644))
	return root
}

func TestSerialAndParallelWalkAgreeOnSetOfPaths(t *testing.T) {
	root := buildTree(t)
	rs, err := ignore.Load(root)
	require.NoError(t, err)

	serial, err := Walk(root, rs)
	require.NoError(t, err)
	parallel, err := WalkParallel(root, rs, 4)
	require.NoError(t, err)

	require.Equal(t, pathSet(serial), pathSet(parallel))
	require.NotEmpty(t, serial)
}

func TestWalkSkipsReservedDirsUnconditionally(t *testing.T) {
	root := buildTree(t)
	entries, err := Walk(root, nil)
	require.NoError(t, err)
	for _, e := range entries {
		require.NotContains(t, e.Path.String(), ".xvc/")
	}
}

func TestWalkHonorsIgnoreFile(t *testing.T) {
	root := buildTree(t)
	rs, err := ignore.Load(root)
	require.NoError(t, err)
	entries, err := Walk(root, rs)
	require.NoError(t, err)
	for _, e := range entries {
		require.NotContains(t, e.Path.String(), ".log")
	}
}

func pathSet(entries []Entry) map[string]bool {
	out := make(map[string]bool, len(entries))
	for _, e := range entries {
		out[e.Path.String()] = true
	}
	return out
}
