// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package ignore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLayeredIgnoreNearerOverridesFarther(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".xvcignore"), []byte("*.log\n"), 0o644))

	sub := filepath.Join(root, "keep")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, ".xvcignore"), []byte("!important.log\n"), 0o644))

	rs, err := Load(root)
	require.NoError(t, err)

	require.True(t, rs.Matches("app.log", false))
	require.True(t, rs.Matches("keep/debug.log", false))
	require.False(t, rs.Matches("keep/important.log", false))
}

func TestGlobStarStarMatchesAcrossSeparators(t *testing.T) {
	require.True(t, matchGlob("a/b/c/target.bin", "**/target.bin"))
	require.True(t, matchGlob("target.bin", "**/target.bin"))
	require.False(t, matchGlob("a/target.bin.txt", "**/target.bin"))
}

func TestGlobSingleStarDoesNotCrossSeparator(t *testing.T) {
	require.True(t, matchGlob("a/file.txt", "*.txt"))
	require.False(t, matchGlob("a/b/file.txt", "a/*.txt"))
}

func TestGlobCharacterClasses(t *testing.T) {
	require.True(t, matchGlob("file1.txt", "file[0-9].txt"))
	require.False(t, matchGlob("fileA.txt", "file[0-9].txt"))
	require.True(t, matchGlob("fileA.txt", "file[!0-9].txt"))
}

func TestDirOnlyRuleIgnoresOnlyDirectories(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".xvcignore"), []byte("build/\n"), 0o644))
	rs, err := Load(root)
	require.NoError(t, err)

	require.True(t, rs.Matches("build", true))
	require.False(t, rs.Matches("build", false))
}
