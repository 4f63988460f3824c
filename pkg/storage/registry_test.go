// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddThenListFindsStorage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storages.yaml")

	err := AddRecord(path, Record{Name: "backup", Kind: "local-dir", Root: "/tmp/backup"})
	require.NoError(t, err)

	records, err := ListRecords(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "backup", records[0].Name)
}

func TestAddRejectsDuplicateName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storages.yaml")

	require.NoError(t, AddRecord(path, Record{Name: "backup", Kind: "local-dir", Root: "/tmp/a"}))
	err := AddRecord(path, Record{Name: "backup", Kind: "local-dir", Root: "/tmp/b"})
	require.Error(t, err)
}

func TestRemoveRejectsUnknownName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storages.yaml")

	require.NoError(t, AddRecord(path, Record{Name: "backup", Kind: "local-dir", Root: "/tmp/a"}))
	err := RemoveRecord(path, "nope")
	require.Error(t, err)
}

func TestRemoveDeletesRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storages.yaml")

	require.NoError(t, AddRecord(path, Record{Name: "backup", Kind: "local-dir", Root: "/tmp/a"}))
	require.NoError(t, RemoveRecord(path, "backup"))

	records, err := ListRecords(path)
	require.NoError(t, err)
	require.Empty(t, records)
}
