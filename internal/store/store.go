// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/staranto/boxctl/internal/config"
	"github.com/staranto/boxctl/internal/record"
)

// Common store errors.
var (
	// ErrNotFound means no record exists at the requested location. Callers
	// treat it as a cache miss.
	ErrNotFound = errors.New("box record not found")

	// ErrCorrupt means a record exists but fails structural validation.
	// Callers treat it as a miss; it never crashes the process.
	ErrCorrupt = errors.New("box record is corrupt")
)

// Extension is the file extension for box records.
const Extension = ".box"

// Key identifies a record: artifact type, seedless fingerprint, and the
// realized seed as the distinguishing suffix. Multiple seeds may share a
// fingerprint; the seed suffix keeps their locations distinct.
type Key struct {
	Type        string
	Fingerprint string
	Seed        int64
}

// Filename renders the key into its filesystem-safe location name. The
// fingerprint is already hex so the name needs no further escaping.
func (k Key) Filename() string {
	return fmt.Sprintf("%s-%s-r%d%s", k.Type, k.Fingerprint, k.Seed, Extension)
}

// Prefix is the portion of the filename shared by all seeds of a
// fingerprint. Used for candidate enumeration when seed matching is off.
func (k Key) Prefix() string {
	return fmt.Sprintf("%s-%s-r", k.Type, k.Fingerprint)
}

// Entry describes one stored record, for listing and maintenance.
type Entry struct {
	Location    string
	Type        string
	Fingerprint string
	Seed        int64
	Size        int64
	ModTime     time.Time
}

// Store is the persistence boundary for box records.
//
// Locate is a pure function of the key. Candidates enumerates the locations
// sharing the key's seedless fingerprint in deterministic (lexicographic)
// order, so lookups are reproducible. Read returns ErrNotFound or ErrCorrupt
// as appropriate; Write commits atomically so a concurrent reader never
// observes a half-written record.
type Store interface {
	Locate(k Key) string
	Candidates(ctx context.Context, k Key) ([]string, error)
	Read(ctx context.Context, location string) (*record.Record, error)
	Write(ctx context.Context, location string, rec *record.Record) error
	Entries(ctx context.Context) ([]Entry, error)
	Remove(ctx context.Context, location string) error
}

// entryRegex parses a record filename back into its key components.
var entryRegex = regexp.MustCompile(`^([a-z0-9_]+)-([0-9a-f]{32})-r(\d+)\.box$`)

// parseEntryName splits a record base name into type, fingerprint, and seed.
func parseEntryName(name string) (typ, fp string, seed int64, ok bool) {
	m := entryRegex.FindStringSubmatch(name)
	if m == nil {
		return "", "", 0, false
	}
	seed, err := strconv.ParseInt(m[3], 10, 64)
	if err != nil {
		return "", "", 0, false
	}
	return m[1], m[2], seed, true
}

// ResolveDir resolves the local store directory.
// Precedence:
//  1. BOXCTL_CACHE_DIR, if set and non-empty
//  2. cache.dir from the config file
//  3. os.UserCacheDir()/boxctl
func ResolveDir(cfg config.Type) (string, error) {
	if d, ok := os.LookupEnv("BOXCTL_CACHE_DIR"); ok && d != "" {
		return d, nil
	}
	if d, err := cfg.GetString("cache.dir"); err == nil && d != "" {
		return d, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve cache directory: %w", err)
	}
	return filepath.Join(base, "boxctl"), nil
}
