// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package compute orchestrates the cache: allocate an empty box, consult the
// store, and either load a stored match or drive the external generator and
// persist its output. The generator itself sits behind the Computer
// interface and is out of scope here.
package compute
