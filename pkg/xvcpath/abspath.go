// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package xvcpath

import (
	"fmt"
	"os"
	"path/filepath"
)

// AbsolutePath is always canonicalized at construction. Construction
// is reproduced from upstream xvc's AbsolutePath::from(PathBuf):
// relative input is joined to the current working directory and then
// canonicalized; where upstream panics on a failed canonicalization,
// we return an error instead.
type AbsolutePath struct {
	p string
}

// NewAbsolutePath canonicalizes p, joining it to the current working
// directory first if it is relative.
func NewAbsolutePath(p string) (AbsolutePath, error) {
	if !filepath.IsAbs(p) {
		cwd, err := os.Getwd()
		if err != nil {
			return AbsolutePath{}, fmt.Errorf("xvcpath: cannot determine current dir: %w", err)
		}
		p = filepath.Join(cwd, p)
	}
	resolved, err := filepath.EvalSymlinks(p)
	if err != nil {
		// The path may not exist yet (e.g. a destination being
		// created); fall back to Abs+Clean without requiring the
		// path to already be on disk.
		resolved = filepath.Clean(p)
	}
	abs, err := filepath.Abs(resolved)
	if err != nil {
		return AbsolutePath{}, fmt.Errorf("xvcpath: cannot canonicalize %q: %w", p, err)
	}
	return AbsolutePath{p: abs}, nil
}

// String returns the canonical absolute path.
func (a AbsolutePath) String() string { return a.p }

// Join appends a repository-relative XvcPath.
func (a AbsolutePath) Join(rel XvcPath) AbsolutePath {
	return AbsolutePath{p: filepath.Join(a.p, filepath.FromSlash(rel.String()))}
}

// RelativeTo computes the XvcPath of target relative to this absolute
// path, which must be an ancestor of target.
func (a AbsolutePath) RelativeTo(target string) (XvcPath, error) {
	rel, err := filepath.Rel(a.p, target)
	if err != nil {
		return XvcPath{}, fmt.Errorf("xvcpath: %q is not under %q: %w", target, a.p, err)
	}
	return New(rel)
}
