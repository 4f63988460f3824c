// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/kraklabs/xvc/pkg/digest"
	"github.com/kraklabs/xvc/pkg/pathsync"
)

const guidFile = ".xvc-guid"

// LocalDirStorage is the reference Storage implementation: a plain
// directory tree used as a "remote" for local development, testing,
// and single-machine setups. It is the one concrete backend this
// module ships since spec.md §1 scopes concrete S3/SSH backends out —
// the interface needs at least one real implementation to be
// exerciseable at all.
type LocalDirStorage struct {
	root string

	mu     sync.RWMutex
	guid   string
	events []Event

	sync *pathsync.PathSync
}

// record appends an Event for the given operation to the in-memory
// log; callers persist it (e.g. to the ECS) as they see fit via
// Events/DrainEvents.
func (s *LocalDirStorage) record(kind EventKind, paths []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, newEvent(kind, s.guid, paths))
}

// Events returns every operation recorded so far, oldest first.
func (s *LocalDirStorage) Events() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event(nil), s.events...)
}

// DrainEvents returns every recorded operation and clears the log, so
// a caller can persist each batch exactly once.
func (s *LocalDirStorage) DrainEvents() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.events
	s.events = nil
	return out
}

// NewLocalDirStorage creates a LocalDirStorage rooted at root. The
// directory need not exist yet; Init creates it.
func NewLocalDirStorage(root string) (*LocalDirStorage, error) {
	return &LocalDirStorage{root: root, sync: pathsync.New()}, nil
}

func (s *LocalDirStorage) Init(ctx context.Context) (string, error) {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return "", fmt.Errorf("storage: cannot create root %q: %w", s.root, err)
	}
	path := filepath.Join(s.root, guidFile)
	raw, err := os.ReadFile(path)
	if err == nil {
		guid := string(raw)
		s.mu.Lock()
		s.guid = guid
		s.mu.Unlock()
		s.record(EventInit, nil)
		return guid, nil
	}
	if !os.IsNotExist(err) {
		return "", fmt.Errorf("storage: cannot read guid file: %w", err)
	}

	guid, genErr := newGUID()
	if genErr != nil {
		return "", genErr
	}
	if err := os.WriteFile(path, []byte(guid), 0o644); err != nil {
		return "", fmt.Errorf("storage: cannot write guid file: %w", err)
	}
	s.mu.Lock()
	s.guid = guid
	s.mu.Unlock()
	s.record(EventInit, nil)
	return guid, nil
}

func newGUID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("storage: cannot generate guid: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// contentPath computes the sharded, content-addressed location for an
// item: <root>/<guid>/<algorithm-short-code>/<first-3-hex>/
// <remaining-hex>, per spec.md §4.8's remote layout. The guid segment
// scopes the CAS namespace to this storage's own identity (set by
// Init) rather than letting every caller of the same root share one
// flat namespace.
func (s *LocalDirStorage) contentPath(d digest.XvcDigest) string {
	s.mu.RLock()
	guid := s.guid
	s.mu.RUnlock()
	hexDigest := d.Hex()
	shard := hexDigest[:3]
	rest := hexDigest[3:]
	return filepath.Join(s.root, guid, d.Algorithm.ShortCode(), shard, rest)
}

func (s *LocalDirStorage) List(ctx context.Context) ([]Item, error) {
	s.mu.RLock()
	guid := s.guid
	s.mu.RUnlock()

	var items []Item
	algos := []digest.HashAlgorithm{digest.Blake3, digest.Blake2s, digest.SHA2_256, digest.SHA3_256, digest.AsIs}
	for _, algo := range algos {
		algoDir := filepath.Join(s.root, guid, algo.ShortCode())
		if _, err := os.Stat(algoDir); os.IsNotExist(err) {
			continue
		}
		err := filepath.WalkDir(algoDir, func(path string, d os.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			rel, relErr := filepath.Rel(algoDir, path)
			if relErr != nil {
				return relErr
			}
			items = append(items, Item{Path: rel})
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("storage: cannot list %q: %w", algoDir, err)
		}
	}
	s.record(EventList, nil)
	return items, nil
}

// Send uploads content for item.Digest, serialized per-destination
// via pkg/pathsync so two concurrent Send calls for the same digest
// result in exactly one file write.
func (s *LocalDirStorage) Send(ctx context.Context, item Item, content io.Reader) error {
	dest := s.contentPath(item.Digest)
	err := s.sync.WithSyncPath(dest, func(path string) error {
		if _, err := os.Stat(path); err == nil {
			_, _ = io.Copy(io.Discard, content)
			return nil
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("storage: cannot create shard dir: %w", err)
		}
		tmp := path + ".tmp"
		f, err := os.Create(tmp)
		if err != nil {
			return fmt.Errorf("storage: cannot create temp file: %w", err)
		}
		if _, err := io.Copy(f, content); err != nil {
			f.Close()
			_ = os.Remove(tmp)
			return fmt.Errorf("storage: cannot write content: %w", err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("storage: cannot close content: %w", err)
		}
		if err := os.Rename(tmp, path); err != nil {
			_ = os.Remove(tmp)
			return fmt.Errorf("storage: cannot rename content into place: %w", err)
		}
		return nil
	})
	if err == nil {
		s.record(EventSend, []string{item.Path})
	}
	return err
}

func (s *LocalDirStorage) Receive(ctx context.Context, item Item) (io.ReadCloser, error) {
	path := s.contentPath(item.Digest)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open %q: %w", path, err)
	}
	s.record(EventReceive, []string{item.Path})
	return f, nil
}

func (s *LocalDirStorage) Delete(ctx context.Context, item Item) error {
	path := s.contentPath(item.Digest)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: cannot delete %q: %w", path, err)
	}
	s.record(EventDelete, []string{item.Path})
	return nil
}
