// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package pmp

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kraklabs/xvc/pkg/xvcpath"
)

func TestProviderInitialSnapshotReflectsDisk(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("hello"), 0o644))

	p, err := New(root)
	require.NoError(t, err)
	defer p.Close()

	require.True(t, p.PathPresent(xvcpath.MustNew("a.txt")))
	m, ok := p.Metadata(xvcpath.MustNew("a.txt"))
	require.True(t, ok)
	require.Equal(t, xvcpath.File, m.FileType)
}

func TestProviderWatchPicksUpNewFile_S5(t *testing.T) {
	if testing.Short() {
		t.Skip("filesystem watch scenario skipped in short mode")
	}
	root := t.TempDir()
	p, err := New(root)
	require.NoError(t, err)
	defer p.Close()

	require.NoError(t, p.Watch())

	newFile := filepath.Join(root, "new.txt")
	require.NoError(t, os.WriteFile(newFile, []byte("data"), 0o644))

	require.Eventually(t, func() bool {
		return p.PathPresent(xvcpath.MustNew("new.txt"))
	}, 2*time.Second, CoalesceWindow)
}

func TestCurrentPathMetadataMapCloneIsIndependent(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("hello"), 0o644))
	p, err := New(root)
	require.NoError(t, err)
	defer p.Close()

	clone := p.CurrentPathMetadataMapClone()
	delete(clone, "a.txt")
	require.True(t, p.PathPresent(xvcpath.MustNew("a.txt")))
}
