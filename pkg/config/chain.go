// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package config

import "fmt"

// Chain resolves a list of Providers into a single merged Config,
// consulted low-to-high: later providers in the slice override keys
// set by earlier ones. Callers build the chain in the spec's
// precedence order (default < system < user < project < local < env
// < CLI, spec.md §6) — Chain itself has no opinion on what the
// layers are, matching the teacher's generalization-friendly
// applyEnvOverrides-as-one-more-layer shape.
type Chain struct {
	providers []Provider
}

// NewChain builds a Chain from providers in ascending precedence
// order (first = lowest precedence, last = highest).
func NewChain(providers ...Provider) *Chain {
	return &Chain{providers: providers}
}

// Resolve loads every provider in order and merges their key sets,
// returning the final Config plus, per key, which provider's value
// won (useful for `xvc config` style introspection).
func (c *Chain) Resolve() (*Config, error) {
	values := make(map[string]string)
	sources := make(map[string]string)

	for _, p := range c.providers {
		layer, err := p.Load()
		if err != nil {
			return nil, fmt.Errorf("config: provider %q failed: %w", p.Name(), err)
		}
		for k, v := range layer {
			values[k] = v
			sources[k] = p.Name()
		}
	}

	return &Config{values: values, sources: sources}, nil
}
