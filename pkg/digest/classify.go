// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package digest

import (
	"bytes"
	"os"
)

// sniffSize is how much of a file Auto-mode samples before deciding
// whether it is text or binary.
const sniffSize = 8 << 10 // 8 KiB

// IsBinary classifies a byte sample the way the teacher's truncation
// guards in its embedding pipeline bound a file before using it
// (pkg/ingestion/embedding.go's maxChars sampling), generalized here
// into a text/binary sniff: a NUL byte anywhere in the sample, or more
// than 30% non-printable non-whitespace bytes, marks the content binary.
func IsBinary(data []byte) bool {
	sample := data
	if len(sample) > sniffSize {
		sample = sample[:sniffSize]
	}
	if bytes.IndexByte(sample, 0) != -1 {
		return true
	}
	if len(sample) == 0 {
		return false
	}

	var nonPrintable int
	for _, b := range sample {
		if isPrintableOrWhitespace(b) {
			continue
		}
		nonPrintable++
	}
	return float64(nonPrintable)/float64(len(sample)) > 0.30
}

func isPrintableOrWhitespace(b byte) bool {
	switch b {
	case '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return b >= 0x20 && b < 0x7f || b >= 0x80
}

// IsBinaryFile samples the first sniffSize bytes of the file at path
// and classifies it. It never reads the whole file into memory.
func IsBinaryFile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	buf := make([]byte, sniffSize)
	n, err := f.Read(buf)
	if err != nil && n == 0 && err.Error() != "EOF" {
		return false, err
	}
	return IsBinary(buf[:n]), nil
}
