// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package ecs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type stringComponent string

func (stringComponent) TypeDescription() string { return "test-string" }

func TestGeneratorProducesStrictlyIncreasingIDs(t *testing.T) {
	root := t.TempDir()
	g, err := InitGenerator(root)
	require.NoError(t, err)

	first, err := g.Next()
	require.NoError(t, err)
	second, err := g.Next()
	require.NoError(t, err)
	require.Less(t, uint64(first), uint64(second))
}

func TestGeneratorSurvivesReload(t *testing.T) {
	root := t.TempDir()
	g, err := InitGenerator(root)
	require.NoError(t, err)
	_, err = g.Next()
	require.NoError(t, err)
	last, err := g.Next()
	require.NoError(t, err)

	reloaded, err := LoadGenerator(root)
	require.NoError(t, err)
	next, err := reloaded.Next()
	require.NoError(t, err)
	require.Greater(t, uint64(next), uint64(last))
}

func TestStoreRoundTripsThroughDisk(t *testing.T) {
	root := t.TempDir()
	s := NewStore[stringComponent]()
	s.Insert(XvcEntity(1), stringComponent("alpha"))
	s.Insert(XvcEntity(2), stringComponent("beta"))
	require.NoError(t, s.Save(root))

	loaded, err := Load[stringComponent](root)
	require.NoError(t, err)
	require.Equal(t, 2, loaded.Len())
	v, err := loaded.Get(XvcEntity(1))
	require.NoError(t, err)
	require.Equal(t, stringComponent("alpha"), v)
}

func TestStoreWritesOneFilePerEntity(t *testing.T) {
	root := t.TempDir()
	s := NewStore[stringComponent]()
	s.Insert(XvcEntity(1), stringComponent("alpha"))
	s.Insert(XvcEntity(2), stringComponent("beta"))
	require.NoError(t, s.Save(root))

	dir := filepath.Join(root, "test-string")
	_, err := os.Stat(filepath.Join(dir, "1.msgpack"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "2.msgpack"))
	require.NoError(t, err)
}

func TestStoreSaveOnlyTouchesChangedEntities(t *testing.T) {
	root := t.TempDir()
	s := NewStore[stringComponent]()
	s.Insert(XvcEntity(1), stringComponent("alpha"))
	require.NoError(t, s.Save(root))

	dir := filepath.Join(root, "test-string")
	path := filepath.Join(dir, "1.msgpack")
	before, err := os.Stat(path)
	require.NoError(t, err)

	// A Save with no pending changes must not touch any entity file.
	require.NoError(t, s.Save(root))
	after, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, before.ModTime(), after.ModTime())
}

func TestStoreRemoveDeletesEntityFileOnSave(t *testing.T) {
	root := t.TempDir()
	s := NewStore[stringComponent]()
	s.Insert(XvcEntity(1), stringComponent("alpha"))
	require.NoError(t, s.Save(root))

	s.Remove(XvcEntity(1))
	require.NoError(t, s.Save(root))

	_, err := os.Stat(filepath.Join(root, "test-string", "1.msgpack"))
	require.True(t, os.IsNotExist(err))
}

func TestStoreGetMissingReturnsKeyNotFound(t *testing.T) {
	s := NewStore[stringComponent]()
	_, err := s.Get(XvcEntity(99))
	require.Error(t, err)
	var notFound *ErrKeyNotFound
	require.ErrorAs(t, err, &notFound)
}

func TestR11StoreIsOneToOne(t *testing.T) {
	s := NewR11Store()
	s.Insert(XvcEntity(1), XvcEntity(100))
	s.Insert(XvcEntity(1), XvcEntity(200))

	right, ok := s.Right(XvcEntity(1))
	require.True(t, ok)
	require.Equal(t, XvcEntity(200), right)

	_, ok = s.Left(XvcEntity(100))
	require.False(t, ok)
}

func TestR1NStoreChildHasSingleParent(t *testing.T) {
	s := NewR1NStore()
	s.Insert(XvcEntity(1), XvcEntity(10))
	s.Insert(XvcEntity(2), XvcEntity(10))

	parent, ok := s.Parent(XvcEntity(10))
	require.True(t, ok)
	require.Equal(t, XvcEntity(2), parent)
	require.Empty(t, s.Children(XvcEntity(1)))
	require.ElementsMatch(t, []XvcEntity{10}, s.Children(XvcEntity(2)))
}

func TestRMNStoreRoundTripsThroughDisk(t *testing.T) {
	root := filepath.Join(t.TempDir(), "ec")
	s := NewRMNStore[stringComponent, stringComponent]()
	s.Left.Insert(XvcEntity(1), stringComponent("l1"))
	s.Right.Insert(XvcEntity(2), stringComponent("r1"))
	s.Bind(XvcEntity(1), XvcEntity(2))
	require.NoError(t, s.Save(root))

	loaded, err := LoadRMNStore[stringComponent, stringComponent](root)
	require.NoError(t, err)
	require.ElementsMatch(t, []XvcEntity{2}, loaded.RightsOf(XvcEntity(1)))
	require.ElementsMatch(t, []XvcEntity{1}, loaded.LeftsOf(XvcEntity(2)))
}
