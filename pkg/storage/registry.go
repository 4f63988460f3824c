// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/kraklabs/xvc/internal/errors"
)

// Record is one named remote storage definition, persisted in the
// repository's storages.yaml registry (spec.md §4.8 'xvc storage new').
// Kind currently only ever holds "local-dir", matching the only
// backend this package implements (LocalDirStorage); it is kept as a
// field rather than hardcoded so a second backend can be added without
// changing the registry's on-disk shape.
type Record struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"`
	Root string `yaml:"root"`
	GUID string `yaml:"guid,omitempty"`
}

// RegistryPath returns the on-disk path of the storage registry given
// a repository's .xvc directory.
func RegistryPath(xvcDir string) string {
	return filepath.Join(xvcDir, "storages.yaml")
}

// LoadRegistry reads every recorded storage, returning an empty map
// (never an error) if the registry file does not exist yet.
func LoadRegistry(path string) (map[string]Record, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return map[string]Record{}, nil
	}
	if err != nil {
		return nil, errors.IoError(fmt.Sprintf("cannot read storage registry %q", path), err)
	}
	var records map[string]Record
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, errors.SerializationError(fmt.Sprintf("cannot parse storage registry %q", path), err)
	}
	if records == nil {
		records = map[string]Record{}
	}
	return records, nil
}

// SaveRegistry writes every recorded storage back to path.
func SaveRegistry(path string, records map[string]Record) error {
	data, err := yaml.Marshal(records)
	if err != nil {
		return errors.SerializationError("cannot encode storage registry", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.IoError(fmt.Sprintf("cannot write storage registry %q", path), err)
	}
	return nil
}

// AddRecord appends a new storage record, rejecting a name already
// present in the registry.
func AddRecord(path string, rec Record) error {
	records, err := LoadRegistry(path)
	if err != nil {
		return err
	}
	if _, exists := records[rec.Name]; exists {
		return errors.KeyAlreadyFound(fmt.Sprintf("storage %q", rec.Name))
	}
	records[rec.Name] = rec
	return SaveRegistry(path, records)
}

// RemoveRecord deletes a storage record by name, rejecting an unknown
// name.
func RemoveRecord(path, name string) error {
	records, err := LoadRegistry(path)
	if err != nil {
		return err
	}
	if _, exists := records[name]; !exists {
		return errors.KeyNotFound(fmt.Sprintf("storage %q", name))
	}
	delete(records, name)
	return SaveRegistry(path, records)
}

// ListRecords returns every recorded storage, sorted by name.
func ListRecords(path string) ([]Record, error) {
	records, err := LoadRegistry(path)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(records))
	for n := range records {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make([]Record, 0, len(names))
	for _, n := range names {
		out = append(out, records[n])
	}
	return out, nil
}
