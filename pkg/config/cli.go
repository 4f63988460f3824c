// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"strings"
)

// CLIProvider carries config overrides passed directly on the command
// line as "section.key=value" pairs (e.g. --set core.verbosity=trace),
// the highest-precedence layer in the chain.
type CLIProvider struct {
	Pairs []string
}

func (CLIProvider) Name() string { return "cli" }

func (c CLIProvider) Load() (map[string]string, error) {
	values := make(map[string]string, len(c.Pairs))
	for _, pair := range c.Pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("config: invalid --set value %q, want key=value", pair)
		}
		values[strings.TrimSpace(key)] = value
	}
	return values, nil
}
