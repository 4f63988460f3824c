// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package digest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashDeterminism_S1(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file-0000.bin")
	content := strings.Repeat("100", 10000/3+1)[:10000]
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	d, err := FromFile(path, Blake3, Binary)
	require.NoError(t, err)
	require.Equal(t, "b3", d.Algorithm.ShortCode())
	require.Len(t, d.Hex(), 64)
}

func TestTextModeIsLineEndingInvariant(t *testing.T) {
	dir := t.TempDir()
	lf := filepath.Join(dir, "lf.txt")
	crlf := filepath.Join(dir, "crlf.txt")
	require.NoError(t, os.WriteFile(lf, []byte("a\nb\nc\n"), 0o644))
	require.NoError(t, os.WriteFile(crlf, []byte("a\r\nb\r\nc\r\n"), 0o644))

	dLF, err := FromFile(lf, Blake3, Text)
	require.NoError(t, err)
	dCRLF, err := FromFile(crlf, Blake3, Text)
	require.NoError(t, err)

	require.Equal(t, dLF, dCRLF)
}

func TestBinaryModeIsNotLineEndingInvariant(t *testing.T) {
	dir := t.TempDir()
	lf := filepath.Join(dir, "lf.bin")
	crlf := filepath.Join(dir, "crlf.bin")
	require.NoError(t, os.WriteFile(lf, []byte("a\nb\n"), 0o644))
	require.NoError(t, os.WriteFile(crlf, []byte("a\r\nb\r\n"), 0o644))

	dLF, err := FromFile(lf, Blake3, Binary)
	require.NoError(t, err)
	dCRLF, err := FromFile(crlf, Blake3, Binary)
	require.NoError(t, err)

	require.NotEqual(t, dLF, dCRLF)
}

func TestAsIsRequiresExactly32Bytes(t *testing.T) {
	_, err := FromBytes([]byte("too short"), AsIs)
	require.Error(t, err)

	ok := make([]byte, 32)
	d, err := FromBytes(ok, AsIs)
	require.NoError(t, err)
	require.Equal(t, AsIs, d.Algorithm)
}

func TestMetadataDigestEqualityMatchesTuple(t *testing.T) {
	a := NewMetadataDigest(1, 100, 50)
	b := NewMetadataDigest(1, 100, 50)
	c := NewMetadataDigest(1, 100, 51)

	require.True(t, a.Equal(b))
	require.False(t, a.Equal(c))
}

func TestIsBinaryClassification(t *testing.T) {
	require.True(t, IsBinary([]byte{0x00, 0x01, 0x02}))
	require.False(t, IsBinary([]byte("hello, world\n")))

	mostlyControl := make([]byte, 100)
	for i := range mostlyControl {
		mostlyControl[i] = 0x01
	}
	require.True(t, IsBinary(mostlyControl))
}

func TestPathCollectionDigestStable(t *testing.T) {
	entries := []PathEntry{
		{Path: "b.txt", MetadataDigest: [32]byte{2}},
		{Path: "a.txt", MetadataDigest: [32]byte{1}},
	}
	reversed := []PathEntry{entries[1], entries[0]}

	d1, err := PathCollectionDigest(entries, Blake3)
	require.NoError(t, err)
	d2, err := PathCollectionDigest(reversed, Blake3)
	require.NoError(t, err)
	require.Equal(t, d1, d2)
}
