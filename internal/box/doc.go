// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package box defines the output artifacts of a run: named field-array
// buffers sized by the governing parameter sets, with fill-state tracking
// and fingerprint-keyed persistence through a store.
package box
