// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package dependency

import (
	"github.com/kraklabs/xvc/pkg/diff"
	"github.com/kraklabs/xvc/pkg/xvcpath"
)

// ParamsDep invalidates a step when a specific key's value inside a
// YAML/JSON/TOML parameters file changes. Value is the parameter's
// serialized scalar or structure captured at record time, not the
// whole file — two pipelines reading different keys from the same
// params file must not invalidate each other. Metadata is the params
// file's stat-derived metadata at record time, checked by
// DiffSuperficial before KeyPath's value is ever re-extracted.
type ParamsDep struct {
	FilePath string
	KeyPath  string
	Value    string
	Metadata xvcpath.XvcMetadata
}

func (ParamsDep) Kind() Kind              { return KindParams }
func (ParamsDep) TypeDescription() string { return "param-dependency" }

// DiffSuperficial compares the params file's metadata only, per
// spec.md §4.6's table; it never re-parses or re-extracts the key.
func (ParamsDep) DiffSuperficial(record, actual ParamsDep) diff.Diff[ParamsDep] {
	if record.FilePath == actual.FilePath && record.KeyPath == actual.KeyPath && record.Metadata.Equal(actual.Metadata) {
		return diff.Diff[ParamsDep]{Case: diff.Identical, Record: record, Actual: actual}
	}
	return diff.Diff[ParamsDep]{Case: diff.Different, Record: record, Actual: actual}
}

// DiffThorough compares the extracted value, requiring the caller to
// have re-parsed the params file and re-extracted KeyPath.
func (ParamsDep) DiffThorough(record, actual ParamsDep) diff.Diff[ParamsDep] {
	if record.FilePath == actual.FilePath && record.KeyPath == actual.KeyPath && record.Value == actual.Value {
		return diff.Diff[ParamsDep]{Case: diff.Identical, Record: record, Actual: actual}
	}
	return diff.Diff[ParamsDep]{Case: diff.Different, Record: record, Actual: actual}
}
