// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package config

// DefaultProvider supplies the built-in defaults for every key the
// core reads (spec.md §6's Configuration surface), forming the lowest
// layer of the precedence chain. It never fails to load.
type DefaultProvider struct{}

func (DefaultProvider) Name() string { return "default" }

func (DefaultProvider) Load() (map[string]string, error) {
	return map[string]string{
		"cache.algorithm":     "blake3",
		"file.track.force":    "false",
		"file.recheck.method": "copy",
		"pipeline.default":    "default",
		"core.verbosity":      "warn",
	}, nil
}
