// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package params defines the parameter sets that govern a simulation box
// (cosmological and user parameters), their defaults, derived values, and
// the canonical fingerprinting used as the cache key.
package params
