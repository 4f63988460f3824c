// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileProvider loads one YAML configuration file into dotted
// section.key pairs, grounded on the teacher's config.go LoadConfig
// (gopkg.in/yaml.v3, same error-wrapping style). A missing file is not
// an error — it simply contributes nothing, since system/user/local
// config files are all optional layers in the chain.
type FileProvider struct {
	Path string
}

func (f *FileProvider) Name() string { return f.Path }

func (f *FileProvider) Load() (map[string]string, error) {
	data, err := os.ReadFile(f.Path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: cannot read %q: %w", f.Path, err)
	}

	var raw map[string]map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("config: cannot parse %q: %w", f.Path, err)
	}

	flat := make(map[string]string, len(raw))
	for section, kv := range raw {
		for key, value := range kv {
			flat[section+"."+key] = fmt.Sprint(value)
		}
	}
	return flat, nil
}
