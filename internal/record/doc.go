// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package record implements the on-disk container for a serialized box: a
// small JSON header carrying the artifact type, the governing parameter
// snapshots, and the buffer directory, followed by raw little-endian buffer
// payloads. The JSON header lets tooling inspect and diff stored boxes
// without decoding the payloads.
package record
