// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package xvcpath

import (
	"os"
	"time"
)

// FileType classifies what kind of filesystem entry a path is.
// The zero value is RecordOnly, matching upstream xvc's default
// (core/src/types/xvcfiletype.rs).
type FileType int

const (
	// RecordOnly means xvc has a record for the path but no
	// corresponding filesystem entry was found (or none was checked).
	RecordOnly FileType = iota
	File
	Directory
	Symlink
	Hardlink
	Reflink
)

func (t FileType) String() string {
	switch t {
	case File:
		return "file"
	case Directory:
		return "directory"
	case Symlink:
		return "symlink"
	case Hardlink:
		return "hardlink"
	case Reflink:
		return "reflink"
	default:
		return "record-only"
	}
}

// XvcMetadata carries the cheap, non-content attributes of a path.
type XvcMetadata struct {
	FileType FileType
	Size     *uint64
	Modified *time.Time
}

// FileTypeFromInfo classifies os.FileInfo the way upstream xvc's
// From<fs::Metadata> impl does: directory first, then regular file,
// then symlink, else RecordOnly.
func FileTypeFromInfo(info os.FileInfo) FileType {
	if info == nil {
		return RecordOnly
	}
	mode := info.Mode()
	switch {
	case mode.IsDir():
		return Directory
	case mode.IsRegular():
		return File
	case mode&os.ModeSymlink != 0:
		return Symlink
	default:
		return RecordOnly
	}
}

// MetadataFromInfo builds an XvcMetadata from os.FileInfo.
func MetadataFromInfo(info os.FileInfo) XvcMetadata {
	if info == nil {
		return XvcMetadata{FileType: RecordOnly}
	}
	size := uint64(info.Size())
	modified := info.ModTime()
	return XvcMetadata{
		FileType: FileTypeFromInfo(info),
		Size:     &size,
		Modified: &modified,
	}
}

// Equal compares the (file_type, size, modified) tuple, which is what
// XvcMetadataDigest equality is defined in terms of (spec invariant 4).
func (m XvcMetadata) Equal(other XvcMetadata) bool {
	if m.FileType != other.FileType {
		return false
	}
	if (m.Size == nil) != (other.Size == nil) {
		return false
	}
	if m.Size != nil && *m.Size != *other.Size {
		return false
	}
	if (m.Modified == nil) != (other.Modified == nil) {
		return false
	}
	if m.Modified != nil && !m.Modified.Equal(*other.Modified) {
		return false
	}
	return true
}
