// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package dependency

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kraklabs/xvc/pkg/digest"
	"github.com/kraklabs/xvc/pkg/xvcpath"
)

func TestStepDepDiffIdenticalAndDifferent(t *testing.T) {
	a := StepDep{Name: "build"}
	b := StepDep{Name: "build"}
	c := StepDep{Name: "test"}

	require.Equal(t, "identical", a.DiffThorough(a, b).Case.String())
	require.Equal(t, "different", a.DiffThorough(a, c).Case.String())
}

func TestRegexDepThoroughComparesMatches(t *testing.T) {
	a := RegexDep{FilePath: "x.go", Pattern: "TODO", Matches: []string{"l1", "l2"}}
	b := RegexDep{FilePath: "x.go", Pattern: "TODO", Matches: []string{"l1", "l2"}}
	c := RegexDep{FilePath: "x.go", Pattern: "TODO", Matches: []string{"l1"}}

	require.Equal(t, 0, int(a.DiffThorough(a, b).Case))
	require.NotEqual(t, 0, int(a.DiffThorough(a, c).Case))
}

func TestGlobDepSuperficialIgnoresContentCollection(t *testing.T) {
	metaA, err := digest.FromString("metadata-a", digest.Blake3)
	require.NoError(t, err)
	contentA, err := digest.FromString("content-a", digest.Blake3)
	require.NoError(t, err)
	contentB, err := digest.FromString("content-b", digest.Blake3)
	require.NoError(t, err)

	record := GlobDep{Pattern: "*.go", MetadataCollection: digest.NewPathCollectionDigestAttr(metaA), ContentCollection: digest.NewPathCollectionDigestAttr(contentA)}
	// Same pattern and metadata fold, but the content fold differs —
	// Superficial must not notice, since it never looks at content.
	actual := GlobDep{Pattern: "*.go", MetadataCollection: digest.NewPathCollectionDigestAttr(metaA), ContentCollection: digest.NewPathCollectionDigestAttr(contentB)}

	require.Equal(t, "identical", record.DiffSuperficial(record, actual).Case.String())
	require.Equal(t, "different", record.DiffThorough(record, actual).Case.String())
}

func TestParamsDepSuperficialIgnoresValue(t *testing.T) {
	meta := xvcpath.XvcMetadata{FileType: xvcpath.File}
	record := ParamsDep{FilePath: "params.yaml", KeyPath: "lr", Value: "0.1", Metadata: meta}
	actual := ParamsDep{FilePath: "params.yaml", KeyPath: "lr", Value: "0.2", Metadata: meta}

	require.Equal(t, "identical", record.DiffSuperficial(record, actual).Case.String())
	require.Equal(t, "different", record.DiffThorough(record, actual).Case.String())
}

func TestRegexDepSuperficialIgnoresMatches(t *testing.T) {
	meta := xvcpath.XvcMetadata{FileType: xvcpath.File}
	record := RegexDep{FilePath: "x.go", Pattern: "TODO", Matches: []string{"l1"}, Metadata: meta}
	actual := RegexDep{FilePath: "x.go", Pattern: "TODO", Matches: []string{"l1", "l2"}, Metadata: meta}

	require.Equal(t, "identical", record.DiffSuperficial(record, actual).Case.String())
	require.Equal(t, "different", record.DiffThorough(record, actual).Case.String())
}

func TestLinesDepSuperficialIgnoresContent(t *testing.T) {
	meta := xvcpath.XvcMetadata{FileType: xvcpath.File}
	record := LinesDep{FilePath: "x.go", Begin: 1, End: 5, Content: "old", Metadata: meta}
	actual := LinesDep{FilePath: "x.go", Begin: 1, End: 5, Content: "new", Metadata: meta}

	require.Equal(t, "identical", record.DiffSuperficial(record, actual).Case.String())
	require.Equal(t, "different", record.DiffThorough(record, actual).Case.String())
}

func TestUrlGetDepSuperficialIgnoresBody(t *testing.T) {
	head, err := digest.NewUrlHeadDigest(`"etag1"`, "Mon, 01 Jan 2024 00:00:00 GMT", digest.Blake3)
	require.NoError(t, err)
	bodyA, err := digest.NewUrlGetDigest("body-a", digest.Blake3)
	require.NoError(t, err)
	bodyB, err := digest.NewUrlGetDigest("body-b", digest.Blake3)
	require.NoError(t, err)

	record := UrlGetDep{URL: "https://example.com/f", Head: head, Body: bodyA}
	actual := UrlGetDep{URL: "https://example.com/f", Head: head, Body: bodyB}

	require.Equal(t, "identical", record.DiffSuperficial(record, actual).Case.String())
	require.Equal(t, "different", record.DiffThorough(record, actual).Case.String())
}

func TestComputeBackoffWithJitterRespectsCap(t *testing.T) {
	d := computeBackoffWithJitter(100*time.Millisecond, 10, 2.0, time.Second)
	require.LessOrEqual(t, d, time.Second)
	require.GreaterOrEqual(t, d, time.Duration(0))
}

func TestIsRetryableHTTPError(t *testing.T) {
	require.True(t, isRetryableHTTPError(nil, 503))
	require.True(t, isRetryableHTTPError(nil, 429))
	require.False(t, isRetryableHTTPError(nil, 404))
}
