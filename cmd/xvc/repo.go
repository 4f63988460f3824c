// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kraklabs/xvc/internal/bootstrap"
	"github.com/kraklabs/xvc/internal/errors"
	"github.com/kraklabs/xvc/pkg/config"
	"github.com/kraklabs/xvc/pkg/digest"
)

// openRepo is every subcommand's entry point into an existing
// repository: it finds the repository root (honoring configPath when
// given), loads the standard configuration chain, and fails with the
// structured NotAnXvcRepo error the CLI surface promises (spec.md §6
// exit code 3) when none is found.
type openRepo struct {
	Root     string
	XvcDir   string
	StoreDir string
	Config   *config.Config
}

func mustOpenRepo(configPath string, globals GlobalFlags, cliPairs ...string) *openRepo {
	cwd, err := os.Getwd()
	if err != nil {
		errors.FatalError(errors.IoError("cannot determine current directory", err), globals.JSON)
	}

	root := cwd
	if configPath != "" {
		root = configPath
	}

	repoRoot, ok := bootstrap.IsRepository(root)
	if !ok {
		errors.FatalError(errors.NotAnXvcRepo(root), globals.JSON)
	}

	xvcDir := bootstrap.XvcDir(repoRoot)
	cfg, err := config.Standard(xvcDir, cliPairs).Resolve()
	if err != nil {
		errors.FatalError(errors.IoError("cannot resolve configuration", err), globals.JSON)
	}

	return &openRepo{
		Root:     repoRoot,
		XvcDir:   xvcDir,
		StoreDir: filepath.Join(xvcDir, "store"),
		Config:   cfg,
	}
}

// writeProjectConfigKey sets section.key = value in the project
// config.yaml at path, preserving any other sections and keys already
// there. Used by 'pipeline update --default' to persist
// pipeline.default (spec.md §9 open question (b)).
func writeProjectConfigKey(path, section, key, value string) error {
	raw := map[string]map[string]any{}
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return err
		}
	} else if !os.IsNotExist(err) {
		return err
	}

	if raw[section] == nil {
		raw[section] = map[string]any{}
	}
	raw[section][key] = value

	out, err := yaml.Marshal(raw)
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o644)
}

// algorithm returns the repository's configured cache.algorithm,
// falling back to Blake3 (spec.md §6 default) on an unparsable value.
func (r *openRepo) algorithm() digest.HashAlgorithm {
	algo, err := digest.ParseHashAlgorithm(r.Config.String("cache.algorithm", "blake3"))
	if err != nil {
		return digest.Blake3
	}
	return algo
}
