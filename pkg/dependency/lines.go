// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package dependency

import (
	"github.com/kraklabs/xvc/pkg/diff"
	"github.com/kraklabs/xvc/pkg/xvcpath"
)

// LinesDep invalidates a step when a specific [Begin, End) line range
// of a file changes, independent of the rest of the file. Metadata is
// the file's stat-derived metadata at record time, checked by
// DiffSuperficial before the line range is ever re-read.
type LinesDep struct {
	FilePath string
	Begin    int
	End      int
	Content  string
	Metadata xvcpath.XvcMetadata
}

func (LinesDep) Kind() Kind              { return KindLines }
func (LinesDep) TypeDescription() string { return "lines-dependency" }

// DiffSuperficial compares the file's metadata only, per spec.md
// §4.6's table; it never re-reads the line range.
func (LinesDep) DiffSuperficial(record, actual LinesDep) diff.Diff[LinesDep] {
	if record.FilePath == actual.FilePath && record.Begin == actual.Begin && record.End == actual.End && record.Metadata.Equal(actual.Metadata) {
		return diff.Diff[LinesDep]{Case: diff.Identical, Record: record, Actual: actual}
	}
	return diff.Diff[LinesDep]{Case: diff.Different, Record: record, Actual: actual}
}

// DiffThorough compares the line range's content, requiring the
// caller to have re-read [Begin, End) from the file.
func (LinesDep) DiffThorough(record, actual LinesDep) diff.Diff[LinesDep] {
	if record.FilePath == actual.FilePath && record.Begin == actual.Begin && record.End == actual.End && record.Content == actual.Content {
		return diff.Diff[LinesDep]{Case: diff.Identical, Record: record, Actual: actual}
	}
	return diff.Diff[LinesDep]{Case: diff.Different, Record: record, Actual: actual}
}
