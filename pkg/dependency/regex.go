// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package dependency

import (
	"github.com/kraklabs/xvc/pkg/diff"
	"github.com/kraklabs/xvc/pkg/xvcpath"
)

// RegexDep invalidates a step when the set of lines in a file matching
// Pattern changes. Matches holds the captured matching lines at
// record time so DiffThorough can tell an added match from a removed
// one, not just "something changed". Metadata is the file's
// stat-derived metadata at record time, checked by DiffSuperficial
// before the file is ever re-scanned for matches.
type RegexDep struct {
	FilePath string
	Pattern  string
	Matches  []string
	Metadata xvcpath.XvcMetadata
}

func (RegexDep) Kind() Kind              { return KindRegex }
func (RegexDep) TypeDescription() string { return "regex-dependency" }

// DiffSuperficial compares the file's metadata only, per spec.md
// §4.6's table; it never re-scans the file for matches.
func (RegexDep) DiffSuperficial(record, actual RegexDep) diff.Diff[RegexDep] {
	if record.FilePath == actual.FilePath && record.Pattern == actual.Pattern && record.Metadata.Equal(actual.Metadata) {
		return diff.Diff[RegexDep]{Case: diff.Identical, Record: record, Actual: actual}
	}
	return diff.Diff[RegexDep]{Case: diff.Different, Record: record, Actual: actual}
}

// DiffThorough compares the matched lines, requiring the caller to
// have re-scanned the file for Pattern.
func (RegexDep) DiffThorough(record, actual RegexDep) diff.Diff[RegexDep] {
	if record.FilePath == actual.FilePath && record.Pattern == actual.Pattern && stringsEqual(record.Matches, actual.Matches) {
		return diff.Diff[RegexDep]{Case: diff.Identical, Record: record, Actual: actual}
	}
	return diff.Diff[RegexDep]{Case: diff.Different, Record: record, Actual: actual}
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
