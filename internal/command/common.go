// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"os"
	"os/exec"

	"github.com/urfave/cli/v3"

	"github.com/staranto/boxctl/internal/aws"
	"github.com/staranto/boxctl/internal/meta"
	"github.com/staranto/boxctl/internal/store"
)

// ShortCircuitTLDR checks the --tldr flag and, if present and available,
// runs `tldr boxctl <subcmd>` and returns true so the caller can exit early.
func ShortCircuitTLDR(ctx context.Context, cmd *cli.Command, subcmd string) bool {
	if cmd.Bool("tldr") {
		if _, err := exec.LookPath("tldr"); err == nil {
			c := exec.CommandContext(ctx, "tldr", "boxctl", subcmd)
			c.Stdout = os.Stdout
			c.Stderr = os.Stderr
			_ = c.Run()
		}
		return true
	}
	return false
}

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// OpenStore resolves the store a command operates on. An S3 bucket (flag or
// config) wins over a local directory; otherwise the usual directory
// resolution applies.
func OpenStore(ctx context.Context, cmd *cli.Command) (store.Store, error) {
	if bucket := cmd.String("bucket"); bucket != "" {
		var opts []aws.Option
		if p := cmd.String("profile"); p != "" {
			opts = append(opts, aws.WithProfile(p))
		}
		if r := cmd.String("region"); r != "" {
			opts = append(opts, aws.WithRegion(r))
		}
		cfg, err := aws.LoadAWSConfig(ctx, opts...)
		if err != nil {
			return nil, err
		}
		return store.NewS3Store(aws.NewS3(cfg), bucket, cmd.String("prefix"))
	}
	return OpenFileStore(cmd)
}

// OpenFileStore resolves the local record store. Used directly by commands
// that only make sense on the filesystem (purge).
func OpenFileStore(cmd *cli.Command) (*store.FileStore, error) {
	dir := cmd.String("dir")
	if dir == "" {
		var err error
		if dir, err = store.ResolveDir(GetMeta(cmd).Config); err != nil {
			return nil, err
		}
	}
	return store.NewFileStore(dir)
}

// BoxCommandBuilder constructs a cli.Command for boxctl subcommands using a
// consistent pattern: metadata is wired, the tldr flag is added, and store
// plus global output flags are appended.
type BoxCommandBuilder struct {
	Name      string
	Usage     string
	UsageText string
	Flags     []cli.Flag
	Action    func(context.Context, *cli.Command) error
	Meta      meta.Meta
}

// Build returns a configured cli.Command from the builder.
func (bcb *BoxCommandBuilder) Build() *cli.Command {
	return &cli.Command{
		Name:      bcb.Name,
		Usage:     bcb.Usage,
		UsageText: bcb.UsageText,
		Metadata: map[string]any{
			"meta": bcb.Meta,
		},
		Flags: append(bcb.Flags, append(
			append([]cli.Flag{NewTLDRFlag()}, NewStoreFlags(bcb.Name, bcb.Meta.Config.Source)...),
			NewGlobalFlags(bcb.Name, bcb.Meta.Config.Source)...)...),
		Action: bcb.Action,
	}
}
