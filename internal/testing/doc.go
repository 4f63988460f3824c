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

// Package testing provides test helpers for xvc integration tests.
//
// It wraps internal/bootstrap and pkg/ecs with repository-specific
// fixture builders so package tests don't each hand-roll a temporary
// .xvc layout.
//
// # Quick Start
//
// Use SetupTestRepository to create a temporary, fully initialized
// repository:
//
//	func TestMyFeature(t *testing.T) {
//	    repo := testing.SetupTestRepository(t)
//
//	    entity := testing.InsertTestFileDep(t, repo, "src/main.go", "package main\n")
//	    // ... exercise the feature against repo.XvcDir ...
//	}
package testing
