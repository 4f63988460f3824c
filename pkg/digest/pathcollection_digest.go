// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package digest

import "sort"

// PathEntry is the minimal (path, metadata-digest) pair
// PathCollectionDigest needs; pkg/xvcpath and pkg/ecs supply these
// from their richer types.
type PathEntry struct {
	Path           string
	MetadataDigest [32]byte
}

// PathCollectionDigest hashes a sorted snapshot of (path, metadata)
// pairs, giving a stable summary of a directory or glob result.
// Construction is reproduced from upstream xvc's PathCollectionDigest::new:
// sort the entries, fold path-bytes||metadata-digest-bytes into one
// buffer, then hash once.
func PathCollectionDigest(entries []PathEntry, algorithm HashAlgorithm) (XvcDigest, error) {
	sorted := make([]PathEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	var buf []byte
	for _, e := range sorted {
		buf = append(buf, []byte(e.Path)...)
		buf = append(buf, e.MetadataDigest[:]...)
	}
	return FromBytes(buf, algorithm)
}
