// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package ecs

// Storable marks a type suitable for use in a component Store. The
// kebab-case TypeDescription is used to name the on-disk file xvc
// persists the store under, matching upstream xvc's Storable trait
// (original_source/ecs/src/ecs/storable.rs): Serialize + Deserialize +
// Clone + Debug + Ord + PartialEq there becomes "is msgpack-codable
// and carries its own store filename" here, since Go has no trait
// bound equivalent to Ord that the store itself needs.
type Storable interface {
	TypeDescription() string
}
