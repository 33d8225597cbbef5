// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package command defines the boxctl CLI subcommands (ls, inspect, diff,
// purge, completion) and the shared flag and store plumbing between them.
package command
