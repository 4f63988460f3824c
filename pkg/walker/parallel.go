// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package walker

import (
	"sync"

	"github.com/kraklabs/xvc/pkg/ignore"
	"github.com/kraklabs/xvc/pkg/xvcpath"
)

// WalkParallel first enumerates directories serially (cheap, and
// directory pruning must stay sequential so ignored subtrees are never
// visited), then fans the leaf-listing work for each surviving
// directory out across a bounded worker pool. The worker-pool shape
// (jobs channel + fixed goroutines + results channel + sync.WaitGroup)
// is grounded on the teacher's parseFilesParallel
// (pkg/ingestion/local_pipeline.go).
//
// For small trees WalkParallel falls back to Walk: spinning up workers
// only pays off once there is enough directory fan-out to amortize the
// channel overhead, matching the teacher's own "len(files) < 10" bypass.
func WalkParallel(root string, rs *ignore.RuleSet, numWorkers int) ([]Entry, error) {
	dirs, err := listDirs(root, rs)
	if err != nil {
		return nil, err
	}
	if len(dirs) < 4 || numWorkers <= 1 {
		return Walk(root, rs)
	}

	jobs := make(chan string, len(dirs))
	type dirResult struct {
		entries []Entry
		err     error
	}
	resultsChan := make(chan dirResult, len(dirs))

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for dir := range jobs {
				entries, listErr := listFilesInDir(root, dir, rs)
				resultsChan <- dirResult{entries: entries, err: listErr}
			}
		}()
	}

	for _, d := range dirs {
		jobs <- d
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	var all []Entry
	for r := range resultsChan {
		if r.err != nil {
			return nil, r.err
		}
		all = append(all, r.entries...)
	}
	sortEntries(all)
	return all, nil
}

// listDirs returns every non-ignored directory under root, including
// root itself, by walking serially so pruning decisions stay correct.
func listDirs(root string, rs *ignore.RuleSet) ([]string, error) {
	var dirs []string
	err := walkDirsOnly(root, root, rs, &dirs)
	return dirs, err
}

func walkDirsOnly(root, dir string, rs *ignore.RuleSet, out *[]string) error {
	*out = append(*out, dir)
	entries, err := readDirSorted(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if ignore.AlwaysIgnoredDirs[e.Name()] {
			continue
		}
		childAbs := joinPath(dir, e.Name())
		rel, relErr := relSlash(root, childAbs)
		if relErr != nil {
			return relErr
		}
		if rs != nil && rs.Matches(rel, true) {
			continue
		}
		if err := walkDirsOnly(root, childAbs, rs, out); err != nil {
			return err
		}
	}
	return nil
}

// listFilesInDir lists the non-ignored regular files directly inside
// dir (no recursion: subdirectories are separate jobs).
func listFilesInDir(root, dir string, rs *ignore.RuleSet) ([]Entry, error) {
	entries, err := readDirSorted(dir)
	if err != nil {
		return nil, err
	}
	var out []Entry
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		childAbs := joinPath(dir, e.Name())
		rel, relErr := relSlash(root, childAbs)
		if relErr != nil {
			return nil, relErr
		}
		if rs != nil && rs.Matches(rel, false) {
			continue
		}
		info, infoErr := e.Info()
		if infoErr != nil {
			return nil, infoErr
		}
		xp, pathErr := xvcpath.New(rel)
		if pathErr != nil {
			continue
		}
		out = append(out, Entry{Path: xp, Metadata: xvcpath.MetadataFromInfo(info)})
	}
	return out, nil
}
