// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
)

const (
	systemConfigPath  = "/etc/xvc/config.yaml"
	userConfigName    = "config.yaml"
	projectConfigName = "config.yaml"
	localConfigName   = "config.local.yaml"
)

// Standard builds the spec's full seven-layer precedence chain:
// default < system < user < project < local < env < CLI (spec.md
// §6). repoXvcDir is the repository's .xvc directory
// (project/local config live at <repoXvcDir>/config.yaml and
// config.local.yaml); cliPairs are --set key=value overrides.
func Standard(repoXvcDir string, cliPairs []string) *Chain {
	userConfigDir, err := os.UserConfigDir()
	var userConfigPath string
	if err == nil {
		userConfigPath = filepath.Join(userConfigDir, "xvc", userConfigName)
	}

	return NewChain(
		DefaultProvider{},
		&FileProvider{Path: systemConfigPath},
		&FileProvider{Path: userConfigPath},
		&FileProvider{Path: filepath.Join(repoXvcDir, projectConfigName)},
		&FileProvider{Path: filepath.Join(repoXvcDir, localConfigName)},
		EnvProvider{},
		CLIProvider{Pairs: cliPairs},
	)
}
