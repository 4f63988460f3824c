// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package digest

import "encoding/binary"

// XvcMetadataDigest packs a file's type/mtime/size into the 32-byte
// digest slot with algorithm AsIs, giving a cheap superficial equality
// probe that avoids reading file content. The byte layout is
// reproduced exactly from upstream xvc's XvcMetadataDigest: bytes
// [0:8) are the file-type tag, [8:16) the modified-time in Unix
// seconds, [16:24) the size, and [24:32) are left zero.
type XvcMetadataDigest struct {
	digest XvcDigest
}

// NewMetadataDigest packs fileType, modifiedUnixSecs and size into a digest.
func NewMetadataDigest(fileType uint64, modifiedUnixSecs uint64, size uint64) XvcMetadataDigest {
	var raw [32]byte
	binary.LittleEndian.PutUint64(raw[0:8], fileType)
	binary.LittleEndian.PutUint64(raw[8:16], modifiedUnixSecs)
	binary.LittleEndian.PutUint64(raw[16:24], size)
	return XvcMetadataDigest{digest: XvcDigest{Algorithm: AsIs, Digest: raw}}
}

// Digest returns the underlying 32-byte digest.
func (m XvcMetadataDigest) Digest() XvcDigest { return m.digest }

// Attribute returns the attribute-tag used when composing filenames.
func (XvcMetadataDigest) Attribute() string { return "xvc-metadata-digest" }

// Equal reports whether two metadata digests carry the same bytes.
func (m XvcMetadataDigest) Equal(other XvcMetadataDigest) bool {
	return m.digest == other.digest
}
