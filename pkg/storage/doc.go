// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage defines xvc's remote cache contract: Init, List,
// Send, Receive, and Delete over a content-addressed layout keyed by
// a file's digest. LocalDirStorage is the reference implementation,
// backing a plain directory tree as a "remote" for development and
// testing; real deployments add network-backed implementations of the
// same Storage interface.
//
// # Quick start
//
//	backend, err := storage.NewLocalDirStorage("/path/to/remote")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if _, err := backend.Init(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	err = backend.Send(ctx, storage.Item{Digest: d, Path: "data/large.bin"}, reader)
//
// # Layout
//
// A digest's bytes are used to shard the directory tree so no single
// directory accumulates millions of entries:
//
//	<prefix>/<guid>/<algorithm-short-code>/<first-3-hex>/<remaining-hex>
//
// # Concurrency
//
// Send is safe to call concurrently for the same digest from multiple
// goroutines or processes sharing one LocalDirStorage: PathSync
// (pkg/pathsync) serializes writers per destination path so two
// concurrent sends of the same content produce exactly one upload,
// matching the at-most-once semantics spec.md §4.8 requires.
package storage
