// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"
	"path/filepath"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/xvc/internal/bootstrap"
	"github.com/kraklabs/xvc/internal/errors"
	"github.com/kraklabs/xvc/internal/ui"
	"github.com/kraklabs/xvc/pkg/pipeline"
)

// runInit executes the 'init' CLI command: it creates the .xvc
// repository layout (internal/bootstrap.InitRepository) and, unless a
// pipeline already exists, a "default" pipeline so pipeline.default
// always names something real.
func runInit(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: xvc init [options]

Creates a .xvc repository in the current directory.

Examples:
  xvc init
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(errors.ExitUsage)
	}

	cwd, err := os.Getwd()
	if err != nil {
		errors.FatalError(errors.IoError("cannot determine current directory", err), globals.JSON)
	}

	info, err := bootstrap.InitRepository(bootstrap.RepositoryConfig{Root: cwd}, nil)
	if err != nil {
		errors.FatalError(errors.IoError("cannot initialize repository", err), globals.JSON)
	}

	names, err := pipeline.ListNames(info.PipelinesDir)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}
	if len(names) == 0 {
		if _, _, err := pipeline.New(info.PipelinesDir, "default", ""); err != nil {
			errors.FatalError(err, globals.JSON)
		}
	}

	ignorePath := filepath.Join(cwd, ".xvcignore")
	if _, err := os.Stat(ignorePath); os.IsNotExist(err) {
		_ = os.WriteFile(ignorePath, []byte("/.xvc\n"), 0o644)
	}

	if !globals.Quiet {
		ui.Success(fmt.Sprintf("Initialized xvc repository in %s", info.XvcDir))
	}
}
