// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package store maps fingerprints to durable storage locations and performs
// the actual reads and writes of box records. Two backends are provided: a
// local directory with atomic temp-then-rename commits, and an S3 bucket.
package store
