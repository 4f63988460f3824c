// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package testing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/xvc/pkg/dependency"
	"github.com/kraklabs/xvc/pkg/ecs"
)

func TestSetupTestRepositoryCreatesLayout(t *testing.T) {
	repo := SetupTestRepository(t)

	require.DirExists(t, repo.XvcDir)
	require.DirExists(t, repo.StoreDir)
	require.NotNil(t, repo.Entities)
	require.NotNil(t, repo.Files)
	require.Equal(t, 0, repo.Files.Len(), "a fresh repository should start with no tracked files")
}

func TestInsertTestFileDepTracksAndPersists(t *testing.T) {
	repo := SetupTestRepository(t)

	entity := InsertTestFileDep(t, repo, "src/main.go", "package main\n")
	require.Equal(t, 1, repo.Files.Len())

	dep, err := repo.Files.Get(entity)
	require.NoError(t, err)
	assert.Equal(t, "src/main.go", dep.Path.String())

	reloaded, err := ecs.Load[dependency.FileDep](repo.StoreDir)
	require.NoError(t, err)
	require.Equal(t, 1, reloaded.Len(), "Save must have persisted the component to disk")
}

func TestInsertTestFileDepAllocatesDistinctEntities(t *testing.T) {
	repo := SetupTestRepository(t)

	e1 := InsertTestFileDep(t, repo, "a.txt", "a")
	e2 := InsertTestFileDep(t, repo, "b.txt", "b")
	assert.NotEqual(t, e1, e2)
	assert.Equal(t, 2, repo.Files.Len())
}

func TestRepositoryFixturesAreIsolatedAcrossTests(t *testing.T) {
	repoA := SetupTestRepository(t)
	InsertTestFileDep(t, repoA, "only-in-a.txt", "x")

	repoB := SetupTestRepository(t)
	assert.Equal(t, 0, repoB.Files.Len(), "a new fixture must not see another test's store")
}
