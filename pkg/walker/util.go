// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package walker

import (
	"os"
	"path/filepath"
)

func readDirSorted(dir string) ([]os.DirEntry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func joinPath(dir, name string) string {
	return filepath.Join(dir, name)
}

func relSlash(root, path string) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}
