// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"context"
	"io"

	"github.com/kraklabs/xvc/pkg/digest"
)

// Item identifies one piece of remote-stored content: the digest used
// to compute its content-addressed location, plus the repository-
// relative path it was tracked under (recorded in the storage's events;
// Send/Receive/Delete address content purely by Digest). Items returned
// by LocalDirStorage.List carry only Path, set to the content's location
// below its algorithm directory (<first-3-hex>/<remaining-hex>); their
// Digest is left zero.
type Item struct {
	Digest digest.XvcDigest
	Path   string
}

// Storage is xvc's backend-agnostic remote cache contract (spec.md
// §4.8): Init/List/Send/Receive/Delete over a content-addressed
// layout. A concrete implementation owns how that layout is realized
// — a local directory tree (LocalDirStorage), S3, SSH, or anything
// else — none of which xvc's core logic needs to know about.
type Storage interface {
	// Init prepares the remote for use (e.g. creating its root
	// layout) and returns the GUID identifying it, generating one on
	// first Init if the remote has none yet.
	Init(ctx context.Context) (guid string, err error)
	// List enumerates every item currently stored.
	List(ctx context.Context) ([]Item, error)
	// Send uploads content addressed by item.Digest. Two concurrent
	// Send calls for the same digest must result in exactly one
	// upload (spec.md's at-most-once invariant); implementations
	// achieve this via pkg/pathsync.
	Send(ctx context.Context, item Item, content io.Reader) error
	// Receive downloads the content addressed by item.Digest.
	Receive(ctx context.Context, item Item) (io.ReadCloser, error)
	// Delete removes the content addressed by item.Digest.
	Delete(ctx context.Context, item Item) error
}
