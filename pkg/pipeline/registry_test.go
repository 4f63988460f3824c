// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewThenListFindsPipeline(t *testing.T) {
	dir := t.TempDir()
	_, _, err := New(dir, "default", "")
	require.NoError(t, err)

	names, err := ListNames(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"default"}, names)
}

func TestNewRejectsDuplicateName(t *testing.T) {
	dir := t.TempDir()
	_, _, err := New(dir, "default", "")
	require.NoError(t, err)

	_, _, err = New(dir, "default", "")
	require.Error(t, err)
}

func TestDeleteRejectsDefaultPipeline(t *testing.T) {
	dir := t.TempDir()
	_, _, err := New(dir, "default", "")
	require.NoError(t, err)
	_, _, err = New(dir, "other", "")
	require.NoError(t, err)

	err = Delete(dir, "default", "default")
	require.Error(t, err)
}

func TestDeleteRejectsLastPipeline(t *testing.T) {
	dir := t.TempDir()
	_, _, err := New(dir, "only", "")
	require.NoError(t, err)

	err = Delete(dir, "only", "default")
	require.Error(t, err)
}

func TestDeleteRemovesNonDefaultPipeline(t *testing.T) {
	dir := t.TempDir()
	_, _, err := New(dir, "default", "")
	require.NoError(t, err)
	_, _, err = New(dir, "other", "")
	require.NoError(t, err)

	require.NoError(t, Delete(dir, "other", "default"))

	names, err := ListNames(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"default"}, names)
	assert.NoFileExists(t, filepath.Join(dir, "other.yaml"))
}
