// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/xvc/internal/errors"
	"github.com/kraklabs/xvc/internal/ui"
	"github.com/kraklabs/xvc/pkg/dependency"
	"github.com/kraklabs/xvc/pkg/digest"
	"github.com/kraklabs/xvc/pkg/ecs"
	"github.com/kraklabs/xvc/pkg/storage"
	"github.com/kraklabs/xvc/pkg/xvcpath"
)

// runFile dispatches 'file hash|track|recheck|send|bring' (spec.md
// §4.1/§4.8), grounded on the teacher's cmd/cie/main.go command-switch
// idiom.
func runFile(args []string, configPath string, globals GlobalFlags) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: xvc file <hash|track|recheck|send|bring> [options]")
		os.Exit(errors.ExitUsage)
	}
	sub := args[0]
	rest := args[1:]
	switch sub {
	case "hash":
		runFileHash(rest, configPath, globals)
	case "track":
		runFileTrack(rest, configPath, globals)
	case "recheck":
		runFileRecheck(rest, configPath, globals)
	case "send":
		runFileSend(rest, configPath, globals)
	case "bring":
		runFileBring(rest, configPath, globals)
	default:
		fmt.Fprintf(os.Stderr, "Unknown file subcommand: %s\n", sub)
		os.Exit(errors.ExitUsage)
	}
}

// runFileHash implements 'xvc file hash <path>', printing
// "<hex-digest>\t<path>" for each argument (spec.md S1).
func runFileHash(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("file hash", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		os.Exit(errors.ExitUsage)
	}
	paths := fs.Args()
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: xvc file hash <path> [path...]")
		os.Exit(errors.ExitUsage)
	}

	repo := mustOpenRepo(configPath, globals)
	algo := repo.algorithm()

	for _, p := range paths {
		d, err := digest.FromFile(p, algo, digest.Auto)
		if err != nil {
			errors.FatalError(errors.IoError(fmt.Sprintf("cannot hash %q", p), err), globals.JSON)
		}
		fmt.Printf("%s\t%s\n", d.Hex(), p)
	}
}

// runFileTrack implements 'xvc file track <path>', recording each
// path's metadata and content digest as a FileDep entity.
func runFileTrack(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("file track", flag.ExitOnError)
	force := fs.Bool("force", false, "Re-track even if an unchanged record already exists")
	if err := fs.Parse(args); err != nil {
		os.Exit(errors.ExitUsage)
	}
	paths := fs.Args()
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: xvc file track <path> [path...]")
		os.Exit(errors.ExitUsage)
	}

	repo := mustOpenRepo(configPath, globals)
	algo := repo.algorithm()

	gen, err := ecs.LoadGenerator(repo.XvcDir)
	if err != nil {
		errors.FatalError(errors.IoError("cannot load entity generator", err), globals.JSON)
	}
	files, err := ecs.Load[dependency.FileDep](repo.StoreDir)
	if err != nil {
		errors.FatalError(errors.IoError("cannot load file dependency store", err), globals.JSON)
	}

	entities := make(map[string]ecs.XvcEntity)
	files.Iter(func(e ecs.XvcEntity, dep dependency.FileDep) bool {
		entities[dep.Path.String()] = e
		return true
	})

	forceTrack := *force || repo.Config.Bool("file.track.force", false)

	for _, rel := range paths {
		xp, err := xvcpath.New(rel)
		if err != nil {
			errors.FatalError(errors.IoError(fmt.Sprintf("cannot track %q", rel), err), globals.JSON)
		}
		abs := filepath.Join(repo.Root, rel)
		info, err := os.Stat(abs)
		if err != nil {
			errors.FatalError(errors.IoError(fmt.Sprintf("cannot stat %q", rel), err), globals.JSON)
		}
		meta := xvcpath.MetadataFromInfo(info)

		entity, known := entities[rel]
		if known && !forceTrack {
			if existing, err := files.Get(entity); err == nil && existing.Metadata.Equal(meta) {
				if !globals.Quiet {
					ui.Info(fmt.Sprintf("%s unchanged, skipping", rel))
				}
				continue
			}
		}

		contentDigest, err := digest.FromFile(abs, algo, digest.Auto)
		if err != nil {
			errors.FatalError(errors.IoError(fmt.Sprintf("cannot hash %q", rel), err), globals.JSON)
		}
		if !known {
			entity, err = gen.Next()
			if err != nil {
				errors.FatalError(errors.IoError("cannot allocate entity", err), globals.JSON)
			}
			entities[rel] = entity
		}
		files.Insert(entity, dependency.FileDep{
			Path:     xp,
			Metadata: meta,
			Content:  digest.NewContentDigest(contentDigest),
		})
		if err := copyIntoCache(repo, abs, algo, contentDigest); err != nil {
			errors.FatalError(err, globals.JSON)
		}
		if !globals.Quiet {
			ui.Success(fmt.Sprintf("Tracked %s", rel))
		}
	}

	if err := files.Save(repo.StoreDir); err != nil {
		errors.FatalError(errors.IoError("cannot save file dependency store", err), globals.JSON)
	}
}

// runFileRecheck implements 'xvc file recheck <path>': it
// re-materializes a tracked path according to file.recheck.method
// (copy, symlink, hardlink, or reflink), matching spec.md §4.1's
// recheck methods. Only copy is implemented directly; symlink and
// hardlink use the corresponding os calls, and reflink falls back to
// copy since Go's standard library has no portable reflink syscall.
func runFileRecheck(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("file recheck", flag.ExitOnError)
	method := fs.String("method", "", "Recheck method: copy|symlink|hardlink|reflink (default: file.recheck.method)")
	if err := fs.Parse(args); err != nil {
		os.Exit(errors.ExitUsage)
	}
	paths := fs.Args()
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: xvc file recheck <path> [path...]")
		os.Exit(errors.ExitUsage)
	}

	repo := mustOpenRepo(configPath, globals)
	recheckMethod := *method
	if recheckMethod == "" {
		recheckMethod = repo.Config.String("file.recheck.method", "copy")
	}

	for _, rel := range paths {
		if err := recheckOne(repo, rel, recheckMethod); err != nil {
			errors.FatalError(err, globals.JSON)
		}
		if !globals.Quiet {
			ui.Success(fmt.Sprintf("Rechecked %s (%s)", rel, recheckMethod))
		}
	}
}

func recheckOne(repo *openRepo, rel, method string) error {
	src, err := cacheContentPath(repo, rel)
	if err != nil {
		return err
	}
	target := filepath.Join(repo.Root, rel)
	_ = os.Remove(target)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return errors.IoError(fmt.Sprintf("cannot create parent directory of %q", rel), err)
	}

	switch method {
	case "symlink":
		if err := os.Symlink(src, target); err != nil {
			return errors.IoError(fmt.Sprintf("cannot symlink %q", rel), err)
		}
	case "hardlink":
		if err := os.Link(src, target); err != nil {
			return errors.IoError(fmt.Sprintf("cannot hardlink %q", rel), err)
		}
	case "copy", "reflink":
		if err := copyFile(src, target); err != nil {
			return errors.IoError(fmt.Sprintf("cannot copy %q", rel), err)
		}
	default:
		return errors.SerializationError(fmt.Sprintf("unknown recheck method %q", method), nil)
	}
	return nil
}

// cachePath returns the on-disk, content-addressed location of d under
// the repository's local cache, matching spec.md §6's layout
// ("<root>/.xvc/b3/<aa>/<bb…>"): one two-hex-character shard directory
// per algorithm, keyed purely on digest so identical content is stored
// once regardless of how many tracked paths reference it.
func cachePath(repo *openRepo, algo digest.HashAlgorithm, d digest.XvcDigest) string {
	hex := d.Hex()
	return filepath.Join(repo.XvcDir, algo.ShortCode(), hex[:2], hex[2:])
}

// copyIntoCache copies a just-hashed file's content into the local
// cache if it is not already present there, so 'file recheck' always
// has a source to re-materialize from.
func copyIntoCache(repo *openRepo, abs string, algo digest.HashAlgorithm, d digest.XvcDigest) error {
	dest := cachePath(repo, algo, d)
	if _, err := os.Stat(dest); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return errors.IoError("cannot create cache shard directory", err)
	}
	tmp := dest + ".tmp"
	if err := copyFile(abs, tmp); err != nil {
		return errors.IoError(fmt.Sprintf("cannot copy %q into cache", abs), err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return errors.IoError("cannot rename cache entry into place", err)
	}
	return nil
}

// cacheContentPath resolves the FileDep record for rel and returns the
// content-addressed path its digest maps to under the repository's
// local cache.
func cacheContentPath(repo *openRepo, rel string) (string, error) {
	files, err := ecs.Load[dependency.FileDep](repo.StoreDir)
	if err != nil {
		return "", errors.IoError("cannot load file dependency store", err)
	}
	dep, ok := findFileDep(files, rel)
	if !ok {
		return "", errors.KeyNotFound(fmt.Sprintf("tracked path %q", rel))
	}
	return cachePath(repo, repo.algorithm(), dep.Content.Digest()), nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, in)
	return err
}

// runFileSend implements 'xvc file send --storage NAME <path>'.
func runFileSend(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("file send", flag.ExitOnError)
	storageName := fs.String("storage", "", "Storage name (required)")
	if err := fs.Parse(args); err != nil {
		os.Exit(errors.ExitUsage)
	}
	paths := fs.Args()
	if *storageName == "" || len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: xvc file send --storage <name> <path> [path...]")
		os.Exit(errors.ExitUsage)
	}

	repo := mustOpenRepo(configPath, globals)
	backend := mustOpenStorageBackend(repo, *storageName, globals)

	ctx := context.Background()
	files, err := ecs.Load[dependency.FileDep](repo.StoreDir)
	if err != nil {
		errors.FatalError(errors.IoError("cannot load file dependency store", err), globals.JSON)
	}

	for _, rel := range paths {
		dep, ok := findFileDep(files, rel)
		if !ok {
			errors.FatalError(errors.KeyNotFound(fmt.Sprintf("tracked path %q", rel)), globals.JSON)
		}
		abs := filepath.Join(repo.Root, rel)
		f, err := os.Open(abs)
		if err != nil {
			errors.FatalError(errors.IoError(fmt.Sprintf("cannot open %q", rel), err), globals.JSON)
		}
		item := storage.Item{Digest: dep.Content.Digest(), Path: rel}
		err = backend.Send(ctx, item, f)
		f.Close()
		if err != nil {
			errors.FatalError(errors.IoError(fmt.Sprintf("cannot send %q", rel), err), globals.JSON)
		}
		if !globals.Quiet {
			ui.Success(fmt.Sprintf("Sent %s to %s", rel, *storageName))
		}
	}
	persistStorageEvents(repo, backend, globals)
}

// runFileBring implements 'xvc file bring --storage NAME <path>'.
func runFileBring(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("file bring", flag.ExitOnError)
	storageName := fs.String("storage", "", "Storage name (required)")
	if err := fs.Parse(args); err != nil {
		os.Exit(errors.ExitUsage)
	}
	paths := fs.Args()
	if *storageName == "" || len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: xvc file bring --storage <name> <path> [path...]")
		os.Exit(errors.ExitUsage)
	}

	repo := mustOpenRepo(configPath, globals)
	backend := mustOpenStorageBackend(repo, *storageName, globals)

	ctx := context.Background()
	files, err := ecs.Load[dependency.FileDep](repo.StoreDir)
	if err != nil {
		errors.FatalError(errors.IoError("cannot load file dependency store", err), globals.JSON)
	}

	for _, rel := range paths {
		dep, ok := findFileDep(files, rel)
		if !ok {
			errors.FatalError(errors.KeyNotFound(fmt.Sprintf("tracked path %q", rel)), globals.JSON)
		}
		item := storage.Item{Digest: dep.Content.Digest(), Path: rel}
		rc, err := backend.Receive(ctx, item)
		if err != nil {
			errors.FatalError(errors.IoError(fmt.Sprintf("cannot bring %q", rel), err), globals.JSON)
		}
		abs := filepath.Join(repo.Root, rel)
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			rc.Close()
			errors.FatalError(errors.IoError(fmt.Sprintf("cannot create parent directory of %q", rel), err), globals.JSON)
		}
		out, err := os.Create(abs)
		if err != nil {
			rc.Close()
			errors.FatalError(errors.IoError(fmt.Sprintf("cannot create %q", rel), err), globals.JSON)
		}
		_, copyErr := io.Copy(out, rc)
		rc.Close()
		out.Close()
		if copyErr != nil {
			errors.FatalError(errors.IoError(fmt.Sprintf("cannot write %q", rel), copyErr), globals.JSON)
		}

		// Verify the fetched content's digest before trusting it's on
		// disk (spec.md §4.8: receive "verifies content digest on
		// arrival"), catching silent corruption in transit or in the
		// remote cache rather than letting a bad file sit at rel.
		got, digestErr := digest.FromFile(abs, dep.Content.Digest().Algorithm, digest.Auto)
		if digestErr != nil {
			_ = os.Remove(abs)
			errors.FatalError(errors.IoError(fmt.Sprintf("cannot verify digest of %q", rel), digestErr), globals.JSON)
		}
		if got != dep.Content.Digest() {
			_ = os.Remove(abs)
			errors.FatalError(errors.IoError(fmt.Sprintf("digest mismatch bringing %q: expected %s, got %s", rel, dep.Content.Digest().Hex(), got.Hex()), nil), globals.JSON)
		}

		if !globals.Quiet {
			ui.Success(fmt.Sprintf("Brought %s from %s", rel, *storageName))
		}
	}
	persistStorageEvents(repo, backend, globals)
}

func findFileDep(files *ecs.Store[dependency.FileDep], rel string) (dependency.FileDep, bool) {
	var found dependency.FileDep
	ok := false
	files.Iter(func(_ ecs.XvcEntity, dep dependency.FileDep) bool {
		if dep.Path.String() == rel {
			found = dep
			ok = true
			return false
		}
		return true
	})
	return found, ok
}
