// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

// Package pmp implements the Path/Metadata Provider: a live,
// watcher-refreshed snapshot of the repository's path-to-metadata map
// that the ECS, diff, and scheduler layers query without re-walking
// the filesystem on every call.
package pmp

import (
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/kraklabs/xvc/pkg/ignore"
	"github.com/kraklabs/xvc/pkg/walker"
	"github.com/kraklabs/xvc/pkg/xvcpath"
)

// Provider holds the current path→metadata snapshot for a repository
// root and keeps it fresh via an fsnotify watcher. The guard pattern
// (RWMutex plus a closed bool checked under the same lock) is
// grounded on the teacher's EmbeddedBackend (pkg/storage/embedded.go).
type Provider struct {
	root   string
	rules  *ignore.RuleSet
	mu     sync.RWMutex
	byPath map[string]xvcpath.XvcMetadata
	closed bool

	watcher *fsnotify.Watcher
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// New builds a Provider for root with an initial synchronous snapshot.
// It does not start watching; call Watch to begin live updates.
func New(root string) (*Provider, error) {
	rules, err := ignore.Load(root)
	if err != nil {
		return nil, err
	}
	p := &Provider{root: root, rules: rules, byPath: make(map[string]xvcpath.XvcMetadata)}
	if err := p.refresh(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Provider) refresh() error {
	entries, err := walker.Walk(p.root, p.rules)
	if err != nil {
		return err
	}
	snapshot := make(map[string]xvcpath.XvcMetadata, len(entries))
	for _, e := range entries {
		snapshot[e.Path.String()] = e.Metadata
	}
	p.mu.Lock()
	p.byPath = snapshot
	p.mu.Unlock()
	return nil
}

// PathPresent reports whether rel currently has a snapshot entry.
func (p *Provider) PathPresent(rel xvcpath.XvcPath) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.byPath[rel.String()]
	return ok
}

// Metadata returns the current snapshot metadata for rel, if present.
func (p *Provider) Metadata(rel xvcpath.XvcPath) (xvcpath.XvcMetadata, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	m, ok := p.byPath[rel.String()]
	return m, ok
}

// GlobPaths returns every snapshot path whose normalized form matches
// pattern, using the same gitignore-flavored glob semantics as
// pkg/ignore (a glob dependency's source-of-truth is the live
// snapshot, not a fresh walk).
func (p *Provider) GlobPaths(pattern string) []xvcpath.XvcPath {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var out []xvcpath.XvcPath
	for rel := range p.byPath {
		if ignoreGlobMatch(rel, pattern) {
			out = append(out, xvcpath.MustNew(rel))
		}
	}
	return out
}

// CurrentPathMetadataMapClone returns a defensive copy of the full
// snapshot, named to match the operation the spec and upstream xvc
// both call out explicitly (core/src/types/xvcpath.rs's
// current_path_metadata_map equivalent).
func (p *Provider) CurrentPathMetadataMapClone() map[string]xvcpath.XvcMetadata {
	p.mu.RLock()
	defer p.mu.RUnlock()
	clone := make(map[string]xvcpath.XvcMetadata, len(p.byPath))
	for k, v := range p.byPath {
		clone[k] = v
	}
	return clone
}

// Close stops the watcher goroutine, if running, and marks the
// provider unusable for further refreshes.
func (p *Provider) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	watcher := p.watcher
	stopCh := p.stopCh
	p.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
	}
	p.wg.Wait()
	if watcher != nil {
		return watcher.Close()
	}
	return nil
}

func ignoreGlobMatch(path, pattern string) bool {
	return ignore.MatchGlob(path, pattern)
}
