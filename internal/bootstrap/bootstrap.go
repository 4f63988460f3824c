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

// Package bootstrap creates and opens xvc repositories: the .xvc
// directory layout (component store, entity-id counter, pipeline
// definitions) a repository needs before any pipeline or file-tracking
// operation can run.
package bootstrap

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kraklabs/xvc/pkg/ecs"
)

const xvcDirName = ".xvc"

// RepositoryConfig holds configuration for initializing a repository.
type RepositoryConfig struct {
	// Root is the repository's working directory. The .xvc directory
	// is created directly beneath it.
	Root string
}

// RepositoryInfo holds information about an initialized repository.
type RepositoryInfo struct {
	Root         string
	XvcDir       string
	StoreDir     string
	ECDir        string
	PipelinesDir string
}

// InitRepository initializes a new xvc repository. This function is
// idempotent: calling it multiple times on the same root is safe and
// never overwrites existing state.
//
// The function creates, under <Root>/.xvc:
//   - store/      component type records (pkg/ecs.Store persistence)
//   - ec/         the monotonic entity-id counter (pkg/ecs.Generator)
//   - pipelines/  one file per defined pipeline
//
// Parameters:
//   - config: repository configuration
//   - logger: optional logger (nil uses default)
func InitRepository(config RepositoryConfig, logger *slog.Logger) (*RepositoryInfo, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Root == "" {
		return nil, fmt.Errorf("root is required")
	}

	xvcDir := filepath.Join(config.Root, xvcDirName)
	storeDir := filepath.Join(xvcDir, "store")
	ecDir := filepath.Join(xvcDir, "ec")
	pipelinesDir := filepath.Join(xvcDir, "pipelines")

	logger.Info("bootstrap.repository.init.start", "root", config.Root)

	for _, dir := range []string{xvcDir, storeDir, ecDir, pipelinesDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}

	// LoadGenerator is idempotent: it restores the existing counter
	// under xvcDir/ec if present, or creates a fresh one at zero.
	// ecDir was created above purely to make the layout visible before
	// any entity is ever allocated; Generator owns the counter file
	// itself under the same directory.
	if _, err := ecs.LoadGenerator(xvcDir); err != nil {
		return nil, fmt.Errorf("init entity-id generator: %w", err)
	}

	logger.Info("bootstrap.repository.init.success", "root", config.Root, "xvc_dir", xvcDir)

	return &RepositoryInfo{
		Root:         config.Root,
		XvcDir:       xvcDir,
		StoreDir:     storeDir,
		ECDir:        ecDir,
		PipelinesDir: pipelinesDir,
	}, nil
}

// IsRepository reports whether dir (or any of its ancestors) contains
// a .xvc directory, and if so returns the directory that contains it.
func IsRepository(dir string) (string, bool) {
	for {
		if info, err := os.Stat(filepath.Join(dir, xvcDirName)); err == nil && info.IsDir() {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// XvcDir returns the path to the .xvc directory beneath root.
func XvcDir(root string) string {
	return filepath.Join(root, xvcDirName)
}
