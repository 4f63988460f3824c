// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

// Package config implements xvc's layered configuration surface
// (spec.md §6): an opaque key→value Provider interface the core reads
// from, a YAML-file-backed default implementation in the teacher's
// style (cmd/cie/config.go's LoadConfig/applyEnvOverrides), and the
// precedence chain default < system < user < project < local < env <
// CLI, confirmed against original_source's
// test_config_precedence.rs/test_config_from_env.rs.
//
// Keys are dotted section.key strings matching upstream's own
// notation ("core.verbosity", "cache.algorithm"); values are kept as
// strings and parsed on read, mirroring how environment variables and
// CLI overrides naturally arrive as strings.
package config

// Provider supplies a flat set of dotted-key configuration values for
// one layer of the precedence chain. A provider that has nothing to
// contribute (e.g. a missing optional file) returns an empty map, not
// an error.
type Provider interface {
	// Name identifies the provider for diagnostics (e.g. the file
	// path for a FileProvider).
	Name() string
	// Load returns this layer's key→value pairs.
	Load() (map[string]string, error)
}
