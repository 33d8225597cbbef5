// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/staranto/boxctl/internal/config"
	"github.com/staranto/boxctl/internal/meta"
	"github.com/staranto/boxctl/internal/record"
	"github.com/staranto/boxctl/internal/store"
)

func TestGetMeta_MissingMetadata(t *testing.T) {
	assert.Equal(t, meta.Meta{}, GetMeta(nil))
	assert.Equal(t, meta.Meta{}, GetMeta(&cli.Command{}))
	assert.Equal(t, meta.Meta{}, GetMeta(&cli.Command{
		Metadata: map[string]any{"meta": "not a meta"},
	}))
}

func TestGetMeta_RoundTrip(t *testing.T) {
	m := meta.Meta{Args: []string{"boxctl", "ls"}}
	cmd := &cli.Command{Metadata: map[string]any{"meta": m}}
	assert.Equal(t, m, GetMeta(cmd))
}

func TestOutputValidator(t *testing.T) {
	assert.NoError(t, OutputValidator("text"))
	assert.NoError(t, OutputValidator("json"))
	assert.NoError(t, OutputValidator("yaml"))
	assert.Error(t, OutputValidator("raw"))
	assert.Error(t, OutputValidator(""))
}

func TestJammedFlagValidator(t *testing.T) {
	assert.NoError(t, JammedFlagValidator("params.user"))
	assert.Error(t, JammedFlagValidator("--oops"))
}

func TestReadRecord_ResolvesBareName(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	fs, err := store.NewFileStore(dir)
	require.NoError(t, err)

	rec := record.New("initial_conditions")
	rec.AddParams("user", map[string]string{"DIM": "12"})
	name := store.Key{
		Type:        "initial_conditions",
		Fingerprint: "0123456789abcdef0123456789abcdef",
		Seed:        7,
	}.Filename()
	require.NoError(t, fs.Write(ctx, filepath.Join(dir, name), rec))

	// Absolute path works directly.
	got, err := readRecord(ctx, fs, filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, "initial_conditions", got.Header.Type)

	// A bare record name resolves against the store root.
	got, err = readRecord(ctx, fs, name)
	require.NoError(t, err)
	assert.Equal(t, "12", got.Header.Params["user"]["DIM"])
}

func TestReadRecord_Missing(t *testing.T) {
	ctx := context.Background()
	fs, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = readRecord(ctx, fs, "no-such-record.box")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestInitApp_Commands(t *testing.T) {
	app, err := InitApp(context.Background(), []string{"boxctl", "ls"}, config.Type{})
	require.NoError(t, err)

	var names []string
	for _, cmd := range app.Commands {
		names = append(names, cmd.Name)
	}
	assert.ElementsMatch(t,
		[]string{"diff", "inspect", "ls", "purge", "completion"}, names)
}

func TestInitApp_NamespaceFromArgs(t *testing.T) {
	app, err := InitApp(context.Background(), []string{"boxctl", "ls"}, config.Type{})
	require.NoError(t, err)

	for _, cmd := range app.Commands {
		if cmd.Name != "ls" {
			continue
		}
		m := GetMeta(cmd)
		assert.Equal(t, "ls", m.Config.Namespace)
	}
}
