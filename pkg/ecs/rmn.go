// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package ecs

import (
	"path/filepath"
	"sync"
)

// RMNStore is a many-to-many relation store: arbitrary bindings
// between two entity namespaces with no further semantics, reproduced
// from upstream xvc's RMNStore (original_source/ecs/src/ecs/rmnstore.rs).
// Left and Right there are themselves Storable component stores;
// LeftToRight/RightToLeft record the bindings in both directions so
// either side can be queried without a linear scan.
type RMNStore[T, U Storable] struct {
	mu          sync.RWMutex
	Left        *Store[T]
	Right       *Store[U]
	leftToRight map[XvcEntity]map[XvcEntity]struct{}
	rightToLeft map[XvcEntity]map[XvcEntity]struct{}
}

// NewRMNStore creates an empty many-to-many relation store.
func NewRMNStore[T, U Storable]() *RMNStore[T, U] {
	return &RMNStore[T, U]{
		Left:        NewStore[T](),
		Right:       NewStore[U](),
		leftToRight: make(map[XvcEntity]map[XvcEntity]struct{}),
		rightToLeft: make(map[XvcEntity]map[XvcEntity]struct{}),
	}
}

// LoadRMNStore restores both component stores and both relation
// directions from storeRoot, matching upstream's load_rmnstore.
func LoadRMNStore[T, U Storable](storeRoot string) (*RMNStore[T, U], error) {
	left, err := Load[T](storeRoot)
	if err != nil {
		return nil, err
	}
	right, err := Load[U](storeRoot)
	if err != nil {
		return nil, err
	}
	s := &RMNStore[T, U]{
		Left:        left,
		Right:       right,
		leftToRight: make(map[XvcEntity]map[XvcEntity]struct{}),
		rightToLeft: make(map[XvcEntity]map[XvcEntity]struct{}),
	}
	if err := loadRelationFile(storeRoot, "rmn-left-to-right", &s.leftToRight); err != nil {
		return nil, err
	}
	if err := loadRelationFile(storeRoot, "rmn-right-to-left", &s.rightToLeft); err != nil {
		return nil, err
	}
	return s, nil
}

// Save persists both component stores and both relation directions,
// matching upstream's save_rmnstore.
func (s *RMNStore[T, U]) Save(storeRoot string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.Left.Save(storeRoot); err != nil {
		return err
	}
	if err := s.Right.Save(storeRoot); err != nil {
		return err
	}
	if err := saveRelationFile(storeRoot, "rmn-left-to-right", s.leftToRight); err != nil {
		return err
	}
	return saveRelationFile(storeRoot, "rmn-right-to-left", s.rightToLeft)
}

// Bind relates left and right in both directions.
func (s *RMNStore[T, U]) Bind(left, right XvcEntity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.leftToRight[left] == nil {
		s.leftToRight[left] = make(map[XvcEntity]struct{})
	}
	s.leftToRight[left][right] = struct{}{}
	if s.rightToLeft[right] == nil {
		s.rightToLeft[right] = make(map[XvcEntity]struct{})
	}
	s.rightToLeft[right][left] = struct{}{}
}

// RightsOf returns every right entity bound to left.
func (s *RMNStore[T, U]) RightsOf(left XvcEntity) []XvcEntity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return keysOf(s.leftToRight[left])
}

// LeftsOf returns every left entity bound to right.
func (s *RMNStore[T, U]) LeftsOf(right XvcEntity) []XvcEntity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return keysOf(s.rightToLeft[right])
}

func keysOf(m map[XvcEntity]struct{}) []XvcEntity {
	out := make([]XvcEntity, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func relationPath(storeRoot, name string) string {
	return filepath.Join(storeRoot, name+".msgpack")
}
