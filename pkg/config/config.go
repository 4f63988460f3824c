// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package config

import "strconv"

// Config is the fully-resolved, merged view of a Chain: one winning
// value per dotted key, plus which provider contributed it.
type Config struct {
	values  map[string]string
	sources map[string]string
}

// String returns the value at key, or fallback if unset.
func (c *Config) String(key, fallback string) string {
	if v, ok := c.values[key]; ok {
		return v
	}
	return fallback
}

// Bool parses the value at key as a bool, or returns fallback if
// unset or unparsable.
func (c *Config) Bool(key string, fallback bool) bool {
	v, ok := c.values[key]
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// Int parses the value at key as an int, or returns fallback if unset
// or unparsable.
func (c *Config) Int(key string, fallback int) int {
	v, ok := c.values[key]
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// Has reports whether key was set by any provider in the chain.
func (c *Config) Has(key string) bool {
	_, ok := c.values[key]
	return ok
}

// Source returns the name of the provider whose value for key won,
// and whether key is set at all.
func (c *Config) Source(key string) (string, bool) {
	s, ok := c.sources[key]
	return s, ok
}

// Keys returns every dotted key with a resolved value, in no
// particular order.
func (c *Config) Keys() []string {
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	return keys
}
