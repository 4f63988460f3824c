// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package ecs

import (
	"fmt"
	"os"

	"github.com/vmihailenco/msgpack/v5"
)

func loadRelationFile(storeRoot, name string, out *map[XvcEntity]map[XvcEntity]struct{}) error {
	path := relationPath(storeRoot, name)
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			*out = make(map[XvcEntity]map[XvcEntity]struct{})
			return nil
		}
		return fmt.Errorf("ecs: cannot read relation %q: %w", path, err)
	}
	if len(raw) == 0 {
		*out = make(map[XvcEntity]map[XvcEntity]struct{})
		return nil
	}
	var flat map[XvcEntity][]XvcEntity
	if err := msgpack.Unmarshal(raw, &flat); err != nil {
		return fmt.Errorf("ecs: cannot decode relation %q: %w", path, err)
	}
	result := make(map[XvcEntity]map[XvcEntity]struct{}, len(flat))
	for k, vs := range flat {
		set := make(map[XvcEntity]struct{}, len(vs))
		for _, v := range vs {
			set[v] = struct{}{}
		}
		result[k] = set
	}
	*out = result
	return nil
}

func saveRelationFile(storeRoot, name string, in map[XvcEntity]map[XvcEntity]struct{}) error {
	flat := make(map[XvcEntity][]XvcEntity, len(in))
	for k, set := range in {
		vs := make([]XvcEntity, 0, len(set))
		for v := range set {
			vs = append(vs, v)
		}
		flat[k] = vs
	}
	raw, err := msgpack.Marshal(flat)
	if err != nil {
		return fmt.Errorf("ecs: cannot encode relation %q: %w", name, err)
	}
	path := relationPath(storeRoot, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("ecs: cannot write relation %q: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("ecs: cannot rename relation %q: %w", name, err)
	}
	return nil
}
