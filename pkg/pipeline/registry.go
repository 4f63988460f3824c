// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kraklabs/xvc/internal/errors"
)

// Dir returns the repository's pipelines directory given its .xvc
// directory.
func Dir(xvcDir string) string {
	return filepath.Join(xvcDir, "pipelines")
}

var recognizedExts = []string{".yaml", ".yml", ".json"}

// ListNames returns every pipeline name recorded under dir, sorted,
// derived from the base name of each recognized pipeline file.
func ListNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.IoError(fmt.Sprintf("cannot list pipelines directory %q", dir), err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		for _, want := range recognizedExts {
			if ext == want {
				names = append(names, strings.TrimSuffix(e.Name(), ext))
				break
			}
		}
	}
	sort.Strings(names)
	return names, nil
}

// PathForName returns the on-disk path for pipeline name under dir,
// preferring an existing file of any recognized extension and
// defaulting to name+".yaml" when none exists yet.
func PathForName(dir, name string) string {
	for _, ext := range recognizedExts {
		candidate := filepath.Join(dir, name+ext)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return filepath.Join(dir, name+".yaml")
}

// New creates and persists a new, empty pipeline named name, rejecting
// a name collision with an existing pipeline file.
func New(dir, name, workdir string) (*Schema, string, error) {
	names, err := ListNames(dir)
	if err != nil {
		return nil, "", err
	}
	for _, n := range names {
		if n == name {
			return nil, "", errors.KeyAlreadyFound(fmt.Sprintf("pipeline %q", name))
		}
	}
	path := PathForName(dir, name)
	schema := NewSchema(name, workdir)
	if err := Save(schema, path); err != nil {
		return nil, "", err
	}
	return schema, path, nil
}

// Delete removes the on-disk file for pipeline name, refusing to
// delete the configured default pipeline or the last remaining
// pipeline (spec.md §3 invariants).
func Delete(dir, name, defaultName string) error {
	names, err := ListNames(dir)
	if err != nil {
		return err
	}
	found := false
	for _, n := range names {
		if n == name {
			found = true
			break
		}
	}
	if !found {
		return errors.KeyNotFound(fmt.Sprintf("pipeline %q", name))
	}
	if name == defaultName {
		return errors.CannotDeleteDefaultPipeline(name)
	}
	if len(names) <= 1 {
		return errors.CannotDeleteLastPipeline()
	}
	path := PathForName(dir, name)
	if err := os.Remove(path); err != nil {
		return errors.IoError(fmt.Sprintf("cannot delete pipeline file %q", path), err)
	}
	return nil
}
