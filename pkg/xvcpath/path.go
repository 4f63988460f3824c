// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

// Package xvcpath implements xvc's repository-relative and absolute
// path types and the file metadata record attached to them.
package xvcpath

import (
	"fmt"
	"path/filepath"
	"strings"
)

// XvcPath is a repository-relative, forward-slash-normalized path that
// never ends in "/". Construction is grounded on the teacher's
// normalizePath helper (pkg/ingestion/ids.go): strip a leading "./",
// clean the path, and normalize separators to "/" for cross-platform
// stability.
type XvcPath struct {
	rel string
}

// New validates and normalizes a repository-relative path string.
func New(p string) (XvcPath, error) {
	normalized := normalize(p)
	if normalized == "" {
		return XvcPath{}, fmt.Errorf("xvcpath: empty path")
	}
	if filepath.IsAbs(p) {
		return XvcPath{}, fmt.Errorf("xvcpath: %q must be repository-relative", p)
	}
	if normalized == ".xvc" || strings.HasPrefix(normalized, ".xvc/") ||
		normalized == ".git" || strings.HasPrefix(normalized, ".git/") ||
		normalized == ".dvc" || strings.HasPrefix(normalized, ".dvc/") {
		return XvcPath{}, fmt.Errorf("xvcpath: %q is reserved", normalized)
	}
	return XvcPath{rel: normalized}, nil
}

// MustNew is New but panics on error; useful in tests and literals.
func MustNew(p string) XvcPath {
	xp, err := New(p)
	if err != nil {
		panic(err)
	}
	return xp
}

func normalize(p string) string {
	p = strings.TrimPrefix(p, "./")
	p = filepath.ToSlash(filepath.Clean(p))
	p = strings.TrimPrefix(p, "/")
	p = strings.TrimSuffix(p, "/")
	if p == "." {
		return ""
	}
	return p
}

// String returns the normalized relative path.
func (x XvcPath) String() string { return x.rel }

// Compare gives XvcPath a total order so component stores that key on
// it (or embed it) serialize deterministically.
func (x XvcPath) Compare(other XvcPath) int {
	return strings.Compare(x.rel, other.rel)
}

// IsZero reports whether this is the unset path.
func (x XvcPath) IsZero() bool { return x.rel == "" }
