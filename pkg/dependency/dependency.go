// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

// Package dependency implements xvc's tagged XvcDependency union
// (File, Glob, Params, Regex, Lines, UrlGet, UrlHead, Step, Generic)
// and the per-variant diff dispatch that decides whether a pipeline
// step must rerun. The tagged-enum-plus-dispatch-table shape, rather
// than a deep type hierarchy, is grounded on the teacher's
// pkg/llm/provider.go (three provider variants behind one interface,
// selected by a config string) and pkg/ingestion/config.go's tagged
// ParserMode field.
package dependency

import "github.com/kraklabs/xvc/pkg/diff"

// Kind tags which variant of XvcDependency a value holds.
type Kind int

const (
	KindFile Kind = iota
	KindGlob
	KindParams
	KindRegex
	KindLines
	KindUrlGet
	KindUrlHead
	KindStep
	KindGeneric
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindGlob:
		return "glob"
	case KindParams:
		return "param"
	case KindRegex:
		return "regex"
	case KindLines:
		return "lines"
	case KindUrlGet:
		return "url-get"
	case KindUrlHead:
		return "url-head"
	case KindStep:
		return "step"
	case KindGeneric:
		return "generic"
	default:
		return "unknown"
	}
}

// Variant is implemented by each concrete dependency type (FileDep,
// GlobDep, ...). TypeDescription lets dependency component stores
// (pkg/ecs) serialize heterogenous dependency lists under one
// tagged-union store.
type Variant interface {
	Kind() Kind
	TypeDescription() string
}

// XvcDependency wraps a concrete Variant so a pipeline step's
// dependency list can hold a mix of kinds.
type XvcDependency struct {
	Value Variant
}

func (d XvcDependency) Kind() Kind { return d.Value.Kind() }

// Comparator is implemented once per Variant type to provide the
// Superficial/Thorough diff dispatch the scheduler drives a step's
// invalidation check through (spec.md §4.5/§4.6). Superficial and
// Thorough are intentionally distinct methods, not one method plus a
// Level switch, since several variants (FileDep, GlobDep) compare
// different attributes at each level rather than the same comparison
// at different cost.
type Comparator[T any] interface {
	DiffSuperficial(record, actual T) diff.Diff[T]
	DiffThorough(record, actual T) diff.Diff[T]
}
