// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package output provides sorting, filtering, and emission utilities used by
// commands to present cache listings in various formats.
package output
