// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/xvc/internal/errors"
	"github.com/kraklabs/xvc/internal/output"
)

// runRoot executes the 'root' CLI command, printing the repository
// root directory discovered from the current directory.
func runRoot(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("root", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: xvc root\n\nPrints the repository root directory.\n")
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(errors.ExitUsage)
	}

	repo := mustOpenRepo("", globals)

	if globals.JSON {
		if err := output.JSON(map[string]string{"root": repo.Root}); err != nil {
			errors.FatalError(errors.SerializationError("cannot encode root as JSON", err), globals.JSON)
		}
		return
	}
	fmt.Println(repo.Root)
}
