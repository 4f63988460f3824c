// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/xvc/internal/errors"
	"github.com/kraklabs/xvc/internal/output"
	"github.com/kraklabs/xvc/internal/ui"
	"github.com/kraklabs/xvc/pkg/ecs"
	"github.com/kraklabs/xvc/pkg/storage"
)

// runStorage dispatches 'storage new|list|remove' (spec.md §4.8),
// grounded on the teacher's cmd/cie/main.go command-switch idiom.
func runStorage(args []string, configPath string, globals GlobalFlags) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: xvc storage <new|list|remove> [options]")
		os.Exit(errors.ExitUsage)
	}
	sub := args[0]
	rest := args[1:]
	switch sub {
	case "new":
		runStorageNew(rest, configPath, globals)
	case "list":
		runStorageList(rest, configPath, globals)
	case "remove":
		runStorageRemove(rest, configPath, globals)
	default:
		fmt.Fprintf(os.Stderr, "Unknown storage subcommand: %s\n", sub)
		os.Exit(errors.ExitUsage)
	}
}

func runStorageNew(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("storage new", flag.ExitOnError)
	name := fs.String("name", "", "Storage name (required)")
	path := fs.String("path", "", "Local directory backing the storage (required)")
	if err := fs.Parse(args); err != nil {
		os.Exit(errors.ExitUsage)
	}
	if *name == "" || *path == "" {
		fmt.Fprintln(os.Stderr, "Error: --name and --path are required")
		os.Exit(errors.ExitUsage)
	}

	repo := mustOpenRepo(configPath, globals)

	backend, err := storage.NewLocalDirStorage(*path)
	if err != nil {
		errors.FatalError(errors.IoError("cannot create storage backend", err), globals.JSON)
	}
	guid, err := backend.Init(context.Background())
	if err != nil {
		errors.FatalError(errors.IoError("cannot initialize storage", err), globals.JSON)
	}

	rec := storage.Record{Name: *name, Kind: "local-dir", Root: *path, GUID: guid}
	if err := storage.AddRecord(storage.RegistryPath(repo.XvcDir), rec); err != nil {
		errors.FatalError(err, globals.JSON)
	}
	persistStorageEvents(repo, backend, globals)
	if !globals.Quiet {
		ui.Success(fmt.Sprintf("Created storage %q at %s", *name, *path))
	}
}

func runStorageList(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("storage list", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		os.Exit(errors.ExitUsage)
	}

	repo := mustOpenRepo(configPath, globals)
	records, err := storage.ListRecords(storage.RegistryPath(repo.XvcDir))
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}

	if globals.JSON {
		if err := output.JSON(records); err != nil {
			errors.FatalError(errors.SerializationError("cannot encode storage list", err), globals.JSON)
		}
		return
	}
	for _, rec := range records {
		fmt.Printf("%s\t%s\t%s\n", rec.Name, rec.Kind, rec.Root)
	}
}

func runStorageRemove(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("storage remove", flag.ExitOnError)
	name := fs.String("name", "", "Storage name (required)")
	if err := fs.Parse(args); err != nil {
		os.Exit(errors.ExitUsage)
	}
	if *name == "" {
		fmt.Fprintln(os.Stderr, "Error: --name is required")
		os.Exit(errors.ExitUsage)
	}

	repo := mustOpenRepo(configPath, globals)
	if err := storage.RemoveRecord(storage.RegistryPath(repo.XvcDir), *name); err != nil {
		errors.FatalError(err, globals.JSON)
	}
	if !globals.Quiet {
		ui.Success(fmt.Sprintf("Removed storage %q", *name))
	}
}

// mustOpenStorageBackend resolves a named storage record to a usable
// Storage backend, used by 'file send'/'file bring'. It returns the
// concrete *storage.LocalDirStorage (rather than the Storage
// interface) so callers can drain its recorded Events afterward.
func mustOpenStorageBackend(repo *openRepo, name string, globals GlobalFlags) *storage.LocalDirStorage {
	records, err := storage.LoadRegistry(storage.RegistryPath(repo.XvcDir))
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}
	rec, ok := records[name]
	if !ok {
		errors.FatalError(errors.KeyNotFound(fmt.Sprintf("storage %q", name)), globals.JSON)
	}
	backend, err := storage.NewLocalDirStorage(rec.Root)
	if err != nil {
		errors.FatalError(errors.IoError("cannot open storage backend", err), globals.JSON)
	}
	if _, err := backend.Init(context.Background()); err != nil {
		errors.FatalError(errors.IoError("cannot initialize storage backend", err), globals.JSON)
	}
	return backend
}

// persistStorageEvents drains backend's recorded operations into the
// repository's storage-event component store, one entity per event,
// so 'storage new/send/bring' leave an audit trail a future 'xvc
// storage log'-style command could replay.
func persistStorageEvents(repo *openRepo, backend *storage.LocalDirStorage, globals GlobalFlags) {
	events := backend.DrainEvents()
	if len(events) == 0 {
		return
	}
	gen, err := ecs.LoadGenerator(repo.XvcDir)
	if err != nil {
		errors.FatalError(errors.IoError("cannot load entity generator", err), globals.JSON)
	}
	store, err := ecs.Load[storage.Event](repo.StoreDir)
	if err != nil {
		errors.FatalError(errors.IoError("cannot load storage event store", err), globals.JSON)
	}
	for _, ev := range events {
		entity, err := gen.Next()
		if err != nil {
			errors.FatalError(errors.IoError("cannot allocate entity", err), globals.JSON)
		}
		store.Insert(entity, ev)
	}
	if err := store.Save(repo.StoreDir); err != nil {
		errors.FatalError(errors.IoError("cannot save storage event store", err), globals.JSON)
	}
}
