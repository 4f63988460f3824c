// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package dependency

import (
	"github.com/kraklabs/xvc/pkg/diff"
	"github.com/kraklabs/xvc/pkg/digest"
	"github.com/kraklabs/xvc/pkg/xvcpath"
)

// FileDep invalidates a step when a single tracked file's metadata
// (Superficial) or content digest (Thorough) changes.
type FileDep struct {
	Path     xvcpath.XvcPath
	Metadata xvcpath.XvcMetadata
	Content  digest.ContentDigest
}

func (FileDep) Kind() Kind              { return KindFile }
func (FileDep) TypeDescription() string { return "file-dependency" }

// DiffSuperficial compares only cheap, stat-derived metadata; it never
// reads file content, so it is safe to run on every pipeline
// invocation regardless of file size.
func (FileDep) DiffSuperficial(record, actual FileDep) diff.Diff[FileDep] {
	if record.Path != actual.Path {
		return diff.Diff[FileDep]{Case: diff.Different, Record: record, Actual: actual}
	}
	if record.Metadata.Equal(actual.Metadata) {
		return diff.Diff[FileDep]{Case: diff.Identical, Record: record, Actual: actual}
	}
	return diff.Diff[FileDep]{Case: diff.Different, Record: record, Actual: actual}
}

// DiffThorough compares content digests, which requires the caller to
// have already hashed actual's current content.
func (FileDep) DiffThorough(record, actual FileDep) diff.Diff[FileDep] {
	if record.Content.Digest() == actual.Content.Digest() {
		return diff.Diff[FileDep]{Case: diff.Identical, Record: record, Actual: actual}
	}
	return diff.Diff[FileDep]{Case: diff.Different, Record: record, Actual: actual}
}
