// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package digest computes the 32-byte content-addressed digests xvc uses
// to identify file content, URL bodies, captured command output, and
// metadata snapshots.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	"golang.org/x/crypto/blake2s"
	"golang.org/x/crypto/sha3"

	"github.com/zeebo/blake3"
)

// HashAlgorithm selects the function used to produce a digest.
type HashAlgorithm int

const (
	// Blake3 is the default algorithm.
	Blake3 HashAlgorithm = iota
	// Blake2s is a faster, smaller-state alternative to Blake3.
	Blake2s
	// SHA2_256 is offered for FIPS/NIST compatibility.
	SHA2_256
	// SHA3_256 is offered for NIST compatibility.
	SHA3_256
	// AsIs is reserved for payloads that are already exactly 32 bytes
	// (e.g. packed metadata). It must never be used for user content.
	AsIs
)

// shortCode is the two-letter on-disk prefix for each algorithm, taken
// verbatim from upstream xvc's cache-path convention.
var shortCode = map[HashAlgorithm]string{
	AsIs:     "a0",
	Blake3:   "b3",
	Blake2s:  "b2",
	SHA2_256: "s2",
	SHA3_256: "s3",
}

var longName = map[HashAlgorithm]string{
	AsIs:     "asis",
	Blake3:   "blake3",
	Blake2s:  "blake2",
	SHA2_256: "sha2",
	SHA3_256: "sha3",
}

// ShortCode returns the two-letter cache-path prefix for the algorithm.
func (a HashAlgorithm) ShortCode() string {
	if s, ok := shortCode[a]; ok {
		return s
	}
	return "??"
}

// String returns the long config-file spelling of the algorithm
// (blake3, blake2, sha2, sha3, asis).
func (a HashAlgorithm) String() string {
	if s, ok := longName[a]; ok {
		return s
	}
	return "unknown"
}

// ParseHashAlgorithm accepts either the long config spelling
// (cache.algorithm values: blake3, blake2, sha2, sha3) or the short
// on-disk code and returns the matching algorithm.
func ParseHashAlgorithm(s string) (HashAlgorithm, error) {
	for algo, name := range longName {
		if name == s {
			return algo, nil
		}
	}
	for algo, code := range shortCode {
		if code == s {
			return algo, nil
		}
	}
	return 0, fmt.Errorf("unknown hash algorithm %q", s)
}

// XvcDigest is a 32-byte content-addressed identifier tagged with the
// algorithm that produced it.
type XvcDigest struct {
	Algorithm HashAlgorithm
	Digest    [32]byte
}

// Hex returns the 64-character hex encoding of the digest bytes.
func (d XvcDigest) Hex() string {
	return hex.EncodeToString(d.Digest[:])
}

func (d XvcDigest) String() string {
	return fmt.Sprintf("%s-%s", d.Algorithm.ShortCode(), d.Hex())
}

// FromBytes hashes raw bytes with the given algorithm.
func FromBytes(data []byte, algorithm HashAlgorithm) (XvcDigest, error) {
	var out [32]byte
	switch algorithm {
	case Blake3:
		sum := blake3.Sum256(data)
		out = sum
	case Blake2s:
		sum := blake2s.Sum256(data)
		out = sum
	case SHA2_256:
		out = sha256.Sum256(data)
	case SHA3_256:
		out = sha3.Sum256(data)
	case AsIs:
		if len(data) != 32 {
			return XvcDigest{}, fmt.Errorf("digest.AsIs requires exactly 32 bytes, got %d", len(data))
		}
		copy(out[:], data)
	default:
		return XvcDigest{}, fmt.Errorf("unknown hash algorithm %d", algorithm)
	}
	return XvcDigest{Algorithm: algorithm, Digest: out}, nil
}

// FromString hashes a string's UTF-8 bytes with the given algorithm.
func FromString(s string, algorithm HashAlgorithm) (XvcDigest, error) {
	return FromBytes([]byte(s), algorithm)
}

// TextOrBinary selects how a file's content is read before hashing.
type TextOrBinary int

const (
	// Auto samples the file and classifies it as text or binary.
	Auto TextOrBinary = iota
	// Text normalizes line endings to LF before hashing.
	Text
	// Binary hashes the raw bytes.
	Binary
)

// FromFile hashes the content of the file at path. In Text mode line
// endings are normalized to LF before hashing so the digest is
// line-ending-invariant for logically identical content (spec
// invariant 5). In Auto mode the file is sampled and classified as
// text or binary first.
func FromFile(path string, algorithm HashAlgorithm, mode TextOrBinary) (XvcDigest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return XvcDigest{}, fmt.Errorf("read %s: %w", path, err)
	}

	effective := mode
	if effective == Auto {
		if IsBinary(data) {
			effective = Binary
		} else {
			effective = Text
		}
	}

	if effective == Text {
		data = normalizeLineEndings(data)
	}

	return FromBytes(data, algorithm)
}

// normalizeLineEndings rewrites CRLF and lone CR to LF.
func normalizeLineEndings(data []byte) []byte {
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		b := data[i]
		if b == '\r' {
			out = append(out, '\n')
			if i+1 < len(data) && data[i+1] == '\n' {
				i++
			}
			continue
		}
		out = append(out, b)
	}
	return out
}
