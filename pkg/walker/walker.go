// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

// Package walker discovers tracked-candidate paths under a repository
// root, honoring the layered ignore rules in pkg/ignore and always
// skipping xvc's and competing tools' bookkeeping directories.
package walker

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/kraklabs/xvc/pkg/ignore"
	"github.com/kraklabs/xvc/pkg/xvcpath"
)

// Entry is one discovered filesystem entry.
type Entry struct {
	Path     xvcpath.XvcPath
	Metadata xvcpath.XvcMetadata
}

// Walk performs a single-goroutine depth-first walk of root, applying
// rs (which may be nil to skip ignore filtering) and always excluding
// ignore.AlwaysIgnoredDirs. Entries are returned sorted by path so
// serial and parallel walks (pkg/walker/parallel.go) are directly
// comparable, which is what the set-equality invariant checks.
func Walk(root string, rs *ignore.RuleSet) ([]Entry, error) {
	var entries []Entry
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if ignore.AlwaysIgnoredDirs[d.Name()] {
				return filepath.SkipDir
			}
			if rs != nil && rs.Matches(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if rs != nil && rs.Matches(rel, false) {
			return nil
		}

		info, infoErr := d.Info()
		if infoErr != nil {
			return infoErr
		}
		xp, pathErr := xvcpath.New(rel)
		if pathErr != nil {
			return nil
		}
		entries = append(entries, Entry{
			Path:     xp,
			Metadata: xvcpath.MetadataFromInfo(info),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortEntries(entries)
	return entries, nil
}

func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Path.Compare(entries[j].Path) < 0
	})
}
