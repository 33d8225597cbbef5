// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/boxctl/internal/config"
	"github.com/staranto/boxctl/internal/record"
)

func testRecord(seed string) *record.Record {
	rec := record.New("initial_conditions")
	rec.AddParams("cosmo", map[string]string{"RANDOM_SEED": seed, "SIGMA_8": "0.82"})
	rec.AddFloat32("hires_density", []int{2, 2, 2}, []float32{1, 2, 3, 4, 5, 6, 7, 8})
	return rec
}

func TestKeyFilename(t *testing.T) {
	k := Key{Type: "initial_conditions", Fingerprint: strings.Repeat("ab", 16), Seed: 42}
	assert.Equal(t, "initial_conditions-"+strings.Repeat("ab", 16)+"-r42.box", k.Filename())

	typ, fp, seed, ok := parseEntryName(k.Filename())
	require.True(t, ok)
	assert.Equal(t, "initial_conditions", typ)
	assert.Equal(t, strings.Repeat("ab", 16), fp)
	assert.Equal(t, int64(42), seed)
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	st, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	k := Key{Type: "initial_conditions", Fingerprint: strings.Repeat("0", 32), Seed: 7}
	loc := st.Locate(k)

	_, err = st.Read(ctx, loc)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, st.Write(ctx, loc, testRecord("7")))

	got, err := st.Read(ctx, loc)
	require.NoError(t, err)
	assert.Equal(t, "initial_conditions", got.Header.Type)

	data, err := got.Float32("hires_density")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6, 7, 8}, data)
}

func TestFileStoreWriteLeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	st, err := NewFileStore(dir)
	require.NoError(t, err)

	k := Key{Type: "initial_conditions", Fingerprint: strings.Repeat("1", 32), Seed: 1}
	require.NoError(t, st.Write(ctx, st.Locate(k), testRecord("1")))

	dirents, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, dirents, 1)
	assert.Equal(t, k.Filename(), dirents[0].Name())
}

func TestFileStoreCorruptRecord(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	st, err := NewFileStore(dir)
	require.NoError(t, err)

	k := Key{Type: "initial_conditions", Fingerprint: strings.Repeat("2", 32), Seed: 2}
	loc := st.Locate(k)
	require.NoError(t, os.WriteFile(loc, []byte("not a box record"), 0o644))

	_, err = st.Read(ctx, loc)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestFileStoreCandidatesSorted(t *testing.T) {
	ctx := context.Background()
	st, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	fp := strings.Repeat("3", 32)
	for _, seed := range []int64{30, 3, 12} {
		k := Key{Type: "initial_conditions", Fingerprint: fp, Seed: seed}
		require.NoError(t, st.Write(ctx, st.Locate(k), testRecord("x")))
	}

	// A different fingerprint must not appear among the candidates.
	other := Key{Type: "initial_conditions", Fingerprint: strings.Repeat("4", 32), Seed: 3}
	require.NoError(t, st.Write(ctx, st.Locate(other), testRecord("x")))

	got, err := st.Candidates(ctx, Key{Type: "initial_conditions", Fingerprint: fp})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.True(t, sortedStrings(got), "candidate order must be deterministic")
	for _, loc := range got {
		assert.Contains(t, loc, fp)
	}
}

func sortedStrings(s []string) bool {
	for i := 1; i < len(s); i++ {
		if s[i-1] > s[i] {
			return false
		}
	}
	return true
}

func TestFileStoreEntries(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	st, err := NewFileStore(dir)
	require.NoError(t, err)

	k := Key{Type: "perturbed_field", Fingerprint: strings.Repeat("5", 32), Seed: 99}
	require.NoError(t, st.Write(ctx, st.Locate(k), testRecord("99")))

	// Strays are skipped.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.txt"), []byte("hi"), 0o644))

	entries, err := st.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "perturbed_field", entries[0].Type)
	assert.Equal(t, int64(99), entries[0].Seed)
	assert.Positive(t, entries[0].Size)
}

func TestFileStorePurge(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	st, err := NewFileStore(dir)
	require.NoError(t, err)

	oldKey := Key{Type: "initial_conditions", Fingerprint: strings.Repeat("6", 32), Seed: 1}
	newKey := Key{Type: "initial_conditions", Fingerprint: strings.Repeat("7", 32), Seed: 1}
	require.NoError(t, st.Write(ctx, st.Locate(oldKey), testRecord("1")))
	require.NoError(t, st.Write(ctx, st.Locate(newKey), testRecord("1")))

	stale := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(st.Locate(oldKey), stale, stale))

	removed, err := st.Purge(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = st.Read(ctx, st.Locate(oldKey))
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = st.Read(ctx, st.Locate(newKey))
	assert.NoError(t, err)
}

func TestResolveDirPrecedence(t *testing.T) {
	t.Setenv("BOXCTL_CACHE_DIR", "/tmp/boxctl-test-cache")
	dir, err := ResolveDir(config.Type{})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/boxctl-test-cache", dir)

	t.Setenv("BOXCTL_CACHE_DIR", "")
	cfg := config.Type{Data: map[string]interface{}{
		"cache": map[string]interface{}{"dir": "/var/cache/boxes"},
	}}
	dir, err = ResolveDir(cfg)
	require.NoError(t, err)
	assert.Equal(t, "/var/cache/boxes", dir)
}
