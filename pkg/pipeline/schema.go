// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kraklabs/xvc/internal/errors"
)

// InvalidatePolicy selects when a step must rerun regardless of what
// its dependency diffs say (spec.md §4.7 step 3b/3c).
type InvalidatePolicy string

const (
	InvalidateByDependencies InvalidatePolicy = "by-dependencies"
	InvalidateAlways         InvalidatePolicy = "always"
	InvalidateNever          InvalidatePolicy = "never"
)

// DepSpec is one step's serialized dependency declaration. It is a
// flat struct covering every dependency Kind pkg/dependency defines,
// rather than a polymorphic type, so the pipeline export schema
// (spec.md §6) round-trips through plain JSON/YAML without a custom
// tagged-union codec.
type DepSpec struct {
	Kind    string `yaml:"kind" json:"kind"`
	Path    string `yaml:"path,omitempty" json:"path,omitempty"`
	Pattern string `yaml:"pattern,omitempty" json:"pattern,omitempty"`
	Key     string `yaml:"key,omitempty" json:"key,omitempty"`
	Begin   int    `yaml:"begin,omitempty" json:"begin,omitempty"`
	End     int    `yaml:"end,omitempty" json:"end,omitempty"`
	URL     string `yaml:"url,omitempty" json:"url,omitempty"`
	Name    string `yaml:"name,omitempty" json:"name,omitempty"`
	Command string `yaml:"command,omitempty" json:"command,omitempty"`
}

// OutputSpec is one step's declared output.
type OutputSpec struct {
	Kind string `yaml:"kind" json:"kind"`
	Path string `yaml:"path" json:"path"`
}

// StepSchema is one pipeline step as exported/imported on disk.
type StepSchema struct {
	Name         string           `yaml:"name" json:"name"`
	Command      string           `yaml:"command" json:"command"`
	Invalidate   InvalidatePolicy `yaml:"invalidate" json:"invalidate"`
	Dependencies []DepSpec        `yaml:"dependencies" json:"dependencies"`
	Outputs      []OutputSpec     `yaml:"outputs" json:"outputs"`
}

// Schema is the pipeline export schema v1 (spec.md §6).
type Schema struct {
	Version int          `yaml:"version" json:"version"`
	Name    string       `yaml:"name" json:"name"`
	Workdir string       `yaml:"workdir" json:"workdir"`
	Steps   []StepSchema `yaml:"steps" json:"steps"`
}

const CurrentVersion = 1

// NewSchema returns an empty v1 pipeline named name, rooted at workdir.
func NewSchema(name, workdir string) *Schema {
	return &Schema{Version: CurrentVersion, Name: name, Workdir: workdir}
}

// StepByName returns a step and its index, or ok=false if none named
// name exists.
func (s *Schema) StepByName(name string) (StepSchema, int, bool) {
	for i, st := range s.Steps {
		if st.Name == name {
			return st, i, true
		}
	}
	return StepSchema{}, -1, false
}

// AddStep appends step, rejecting a name collision (step names are
// unique within a pipeline, spec.md §3 invariants).
func (s *Schema) AddStep(step StepSchema) error {
	if _, _, ok := s.StepByName(step.Name); ok {
		return errors.StepAlreadyFoundInPipeline(step.Name, s.Name)
	}
	s.Steps = append(s.Steps, step)
	return nil
}

// RemoveStep deletes the step named name, rejecting an unknown name.
func (s *Schema) RemoveStep(name string) error {
	_, idx, ok := s.StepByName(name)
	if !ok {
		return errors.StepNotFoundInPipeline(name, s.Name)
	}
	s.Steps = append(s.Steps[:idx], s.Steps[idx+1:]...)
	return nil
}

// ReplaceStep overwrites the step named step.Name, rejecting an
// unknown name (use AddStep for a new one).
func (s *Schema) ReplaceStep(step StepSchema) error {
	_, idx, ok := s.StepByName(step.Name)
	if !ok {
		return errors.StepNotFoundInPipeline(step.Name, s.Name)
	}
	s.Steps[idx] = step
	return nil
}

// fileFormat is the on-disk encoding a pipeline file is read/written
// with, inferred from its extension (spec.md §6: "format inferred
// from extension; unsupported extensions -> CannotInferFormatFromExtension").
type fileFormat int

const (
	formatYAML fileFormat = iota
	formatJSON
)

func inferFormat(path string) (fileFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return formatYAML, nil
	case ".json":
		return formatJSON, nil
	default:
		return 0, errors.SerializationError(
			fmt.Sprintf("cannot infer pipeline schema format from extension of %q", path), nil)
	}
}

// Load reads a pipeline schema from path, the format inferred from
// its extension.
func Load(path string) (*Schema, error) {
	format, err := inferFormat(path)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.IoError(fmt.Sprintf("cannot read pipeline file %q", path), err)
	}
	var s Schema
	switch format {
	case formatJSON:
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, errors.SerializationError(fmt.Sprintf("cannot parse pipeline file %q", path), err)
		}
	default:
		if err := yaml.Unmarshal(raw, &s); err != nil {
			return nil, errors.SerializationError(fmt.Sprintf("cannot parse pipeline file %q", path), err)
		}
	}
	return &s, nil
}

// Save writes s to path, the format inferred from its extension, via
// a temp-file-then-rename write matching the ECS store's crash-safety
// convention (pkg/ecs/store.go's Save).
func Save(s *Schema, path string) error {
	format, err := inferFormat(path)
	if err != nil {
		return err
	}
	var raw []byte
	switch format {
	case formatJSON:
		raw, err = json.MarshalIndent(s, "", "  ")
	default:
		raw, err = yaml.Marshal(s)
	}
	if err != nil {
		return errors.SerializationError(fmt.Sprintf("cannot encode pipeline %q", s.Name), err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.IoError("cannot create pipelines directory", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return errors.IoError(fmt.Sprintf("cannot write pipeline file %q", path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return errors.IoError(fmt.Sprintf("cannot rename pipeline file into place %q", path), err)
	}
	return nil
}
