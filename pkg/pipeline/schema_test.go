// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddStepRejectsDuplicateName(t *testing.T) {
	s := NewSchema("p", "")
	require.NoError(t, s.AddStep(StepSchema{Name: "s1", Command: "echo ok"}))
	err := s.AddStep(StepSchema{Name: "s1", Command: "echo dup"})
	require.Error(t, err)
}

func TestRemoveStepRejectsUnknownName(t *testing.T) {
	s := NewSchema("p", "")
	err := s.RemoveStep("missing")
	require.Error(t, err)
}

func TestSaveLoadRoundTripsYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "p.yaml")

	s := NewSchema("p", "")
	require.NoError(t, s.AddStep(StepSchema{
		Name: "s1", Command: "echo ok", Invalidate: InvalidateByDependencies,
		Dependencies: []DepSpec{{Kind: "file", Path: "foo.txt"}},
	}))
	require.NoError(t, Save(s, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, len(loaded.Steps))
	assert.Equal(t, "echo ok", loaded.Steps[0].Command)
	assert.Equal(t, "foo.txt", loaded.Steps[0].Dependencies[0].Path)
}

func TestSaveLoadRoundTripsJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "p.json")

	s := NewSchema("p", "")
	require.NoError(t, s.AddStep(StepSchema{Name: "s1", Command: "echo ok"}))
	require.NoError(t, Save(s, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "s1", loaded.Steps[0].Name)
}

func TestLoadUnknownExtensionErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "p.txt")
	_, err := Load(path)
	require.Error(t, err)
}
