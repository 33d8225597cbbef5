// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/apex/log"

	"github.com/staranto/boxctl/internal/record"
)

// FileStore keeps records as flat files under a single root directory. The
// root is injected by the caller; the store never consults config itself.
type FileStore struct {
	root string
}

// NewFileStore creates the root directory if needed and returns the store.
func NewFileStore(root string) (*FileStore, error) {
	if root == "" {
		return nil, errors.New("store root directory cannot be empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &FileStore{root: root}, nil
}

// Root returns the store's root directory.
func (s *FileStore) Root() string { return s.root }

// Locate implements Store.
func (s *FileStore) Locate(k Key) string {
	return filepath.Join(s.root, k.Filename())
}

// Candidates implements Store. Locations come back sorted so that
// seed-agnostic lookups are reproducible.
func (s *FileStore) Candidates(_ context.Context, k Key) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.root, k.Prefix()+"*"+Extension))
	if err != nil {
		return nil, fmt.Errorf("failed to scan store directory: %w", err)
	}
	sort.Strings(matches)
	return matches, nil
}

// Read implements Store.
func (s *FileStore) Read(_ context.Context, location string) (*record.Record, error) {
	f, err := os.Open(location)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, location)
		}
		return nil, fmt.Errorf("failed to open record %s: %w", location, err)
	}
	defer f.Close()

	rec, err := record.Decode(f)
	if err != nil {
		if errors.Is(err, record.ErrFormat) {
			return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, location, err)
		}
		return nil, fmt.Errorf("failed to read record %s: %w", location, err)
	}
	return rec, nil
}

// Write implements Store. The record is staged in a temp file in the same
// directory and published with a rename, so concurrent readers only ever see
// complete records and concurrent writers cannot interleave.
func (s *FileStore) Write(_ context.Context, location string, rec *record.Record) error {
	var buf bytes.Buffer
	if err := rec.Encode(&buf); err != nil {
		return err
	}

	dir := filepath.Dir(location)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(location)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to stage record: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write record: %w", err)
	}

	if err := os.Rename(tmpName, location); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to publish record: %w", err)
	}

	log.Debugf("wrote record %s (%d bytes)", location, buf.Len())
	return nil
}

// Entries implements Store. Files that don't parse as record names (temp
// files, strays) are skipped.
func (s *FileStore) Entries(_ context.Context) ([]Entry, error) {
	dirents, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read store directory: %w", err)
	}

	var entries []Entry
	for _, de := range dirents {
		if de.IsDir() {
			continue
		}
		typ, fp, seed, ok := parseEntryName(de.Name())
		if !ok {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		entries = append(entries, Entry{
			Location:    filepath.Join(s.root, de.Name()),
			Type:        typ,
			Fingerprint: fp,
			Seed:        seed,
			Size:        info.Size(),
			ModTime:     info.ModTime(),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Location < entries[j].Location
	})
	return entries, nil
}

// Remove implements Store. Removing a missing record is not an error.
func (s *FileStore) Remove(_ context.Context, location string) error {
	if err := os.Remove(location); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove record: %w", err)
	}
	return nil
}

// Purge removes records older than maxAge. A non-positive maxAge is a no-op.
// Returns the number of records removed.
func (s *FileStore) Purge(ctx context.Context, maxAge time.Duration) (int, error) {
	if maxAge <= 0 {
		log.Debug("store purge disabled")
		return 0, nil
	}

	entries, err := s.Entries(ctx)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, e := range entries {
		if time.Since(e.ModTime) <= maxAge {
			continue
		}
		if err := s.Remove(ctx, e.Location); err != nil {
			log.WithError(err).Warnf("failed to purge %s", e.Location)
			continue
		}
		log.Debugf("purged %s", e.Location)
		removed++
	}
	return removed, nil
}
