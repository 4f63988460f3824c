// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

// Package pipeline defines xvc's on-disk pipeline schema (a named set
// of steps with their commands, invalidation policy, dependencies and
// outputs), persists it under a repository's .xvc/pipelines
// directory, and adapts it to pkg/scheduler's StepRunner contract so
// `xvc pipeline run` can drive it through the two-level diff protocol.
package pipeline
