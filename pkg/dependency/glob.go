// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package dependency

import (
	"github.com/kraklabs/xvc/pkg/diff"
	"github.com/kraklabs/xvc/pkg/digest"
)

// GlobDep invalidates a step when the set of paths matching Pattern,
// or their content, changes. It records two independent folds over
// the matched set (pkg/digest): MetadataCollection digests each
// matched path's metadata, ContentCollection digests each matched
// path's content — the Superficial/Thorough split spec.md §4.6's
// table requires for glob dependencies.
type GlobDep struct {
	Pattern            string
	MetadataCollection digest.PathCollectionDigestAttr
	ContentCollection  digest.PathCollectionDigestAttr
}

func (GlobDep) Kind() Kind              { return KindGlob }
func (GlobDep) TypeDescription() string { return "glob-dependency" }

// DiffSuperficial compares the metadata-collection digest only, never
// reading any matched file's content.
func (GlobDep) DiffSuperficial(record, actual GlobDep) diff.Diff[GlobDep] {
	if record.Pattern == actual.Pattern && record.MetadataCollection.Digest() == actual.MetadataCollection.Digest() {
		return diff.Diff[GlobDep]{Case: diff.Identical, Record: record, Actual: actual}
	}
	return diff.Diff[GlobDep]{Case: diff.Different, Record: record, Actual: actual}
}

// DiffThorough compares the content-collection digest, requiring the
// caller to have hashed every matched path's current content.
func (GlobDep) DiffThorough(record, actual GlobDep) diff.Diff[GlobDep] {
	if record.Pattern == actual.Pattern && record.ContentCollection.Digest() == actual.ContentCollection.Digest() {
		return diff.Diff[GlobDep]{Case: diff.Identical, Record: record, Actual: actual}
	}
	return diff.Diff[GlobDep]{Case: diff.Different, Record: record, Actual: actual}
}
