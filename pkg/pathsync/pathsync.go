// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

// Package pathsync provides per-path scoped locking so concurrent
// operations racing on the same destination path serialize instead of
// corrupting each other, while operations on different paths still
// run in parallel. Reproduced from upstream xvc's PathSync
// (original_source/walker/src/sync.rs): a map of path to a per-path
// mutex, itself guarded by a coarser lock only while the entry is
// being created or looked up.
package pathsync

import (
	"path/filepath"
	"sync"
)

// PathSync hands out a *sync.Mutex scoped to one path, creating it on
// first use. The guarding mutex is only ever held for the map lookup
// itself, never for the caller's critical section, so unrelated paths
// never block each other.
type PathSync struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates an empty PathSync.
func New() *PathSync {
	return &PathSync{locks: make(map[string]*sync.Mutex)}
}

func (p *PathSync) lockFor(path string) *sync.Mutex {
	key := filepath.Clean(path)
	p.mu.Lock()
	defer p.mu.Unlock()
	l, ok := p.locks[key]
	if !ok {
		l = &sync.Mutex{}
		p.locks[key] = l
	}
	return l
}

// WithSyncPath runs fn while holding path's scoped lock, matching
// upstream's with_sync_path.
func (p *PathSync) WithSyncPath(path string, fn func(string) error) error {
	l := p.lockFor(path)
	l.Lock()
	defer l.Unlock()
	return fn(path)
}
