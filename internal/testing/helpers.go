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
	"os"
	"path/filepath"
	"testing"

	"github.com/kraklabs/xvc/internal/bootstrap"
	"github.com/kraklabs/xvc/pkg/dependency"
	"github.com/kraklabs/xvc/pkg/digest"
	"github.com/kraklabs/xvc/pkg/ecs"
	"github.com/kraklabs/xvc/pkg/xvcpath"
)

// TestRepository is a temporary, fully initialized xvc repository plus
// the entity generator and component stores tests commonly need.
type TestRepository struct {
	Root     string
	XvcDir   string
	StoreDir string

	Entities *ecs.Generator
	Files    *ecs.Store[dependency.FileDep]
}

// SetupTestRepository creates a temporary xvc repository with
// internal/bootstrap.InitRepository, then loads its entity generator
// and a FileDep component store. The repository directory and its
// stores are automatically cleaned up when the test finishes.
//
// Example:
//
//	func TestMyFeature(t *testing.T) {
//	    repo := testing.SetupTestRepository(t)
//	    entity := testing.InsertTestFileDep(t, repo, "src/main.go", "package main\n")
//	    // ... exercise the feature against repo.XvcDir ...
//	}
func SetupTestRepository(t *testing.T) *TestRepository {
	t.Helper()

	root := t.TempDir()
	info, err := bootstrap.InitRepository(bootstrap.RepositoryConfig{Root: root}, nil)
	if err != nil {
		t.Fatalf("failed to init test repository: %v", err)
	}

	gen, err := ecs.LoadGenerator(info.XvcDir)
	if err != nil {
		t.Fatalf("failed to load entity generator: %v", err)
	}

	files, err := ecs.Load[dependency.FileDep](info.StoreDir)
	if err != nil {
		t.Fatalf("failed to load file dependency store: %v", err)
	}

	return &TestRepository{
		Root:     root,
		XvcDir:   info.XvcDir,
		StoreDir: info.StoreDir,
		Entities: gen,
		Files:    files,
	}
}

// InsertTestFileDep writes content to path under repo.Root, tracks it
// as a FileDep component on a freshly allocated entity, and persists
// the store. It returns the entity so callers can look the component
// back up or attach further components to it.
func InsertTestFileDep(t *testing.T, repo *TestRepository, relPath, content string) ecs.XvcEntity {
	t.Helper()

	abs := filepath.Join(repo.Root, relPath)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatalf("failed to create parent dir for %q: %v", relPath, err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write test file %q: %v", relPath, err)
	}

	xp, err := xvcpath.New(relPath)
	if err != nil {
		t.Fatalf("failed to build XvcPath for %q: %v", relPath, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		t.Fatalf("failed to stat %q: %v", relPath, err)
	}
	meta := xvcpath.MetadataFromInfo(info)

	xd, err := digest.FromString(content, digest.Blake3)
	if err != nil {
		t.Fatalf("failed to digest content for %q: %v", relPath, err)
	}

	entity, err := repo.Entities.Next()
	if err != nil {
		t.Fatalf("failed to allocate entity for %q: %v", relPath, err)
	}

	repo.Files.Insert(entity, dependency.FileDep{
		Path:     xp,
		Metadata: meta,
		Content:  digest.NewContentDigest(xd),
	})

	if err := repo.Files.Save(repo.StoreDir); err != nil {
		t.Fatalf("failed to save file dependency store: %v", err)
	}

	return entity
}
