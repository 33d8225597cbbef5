// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"time"

	"github.com/apex/log"
	"github.com/dustin/go-humanize/english"
	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/staranto/boxctl/internal/meta"
)

// PurgeCommandAction removes local records older than --hours. Purge is
// filesystem-only; S3 retention belongs to bucket lifecycle rules.
func PurgeCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	if ShortCircuitTLDR(ctx, cmd, "purge") {
		return nil
	}

	st, err := OpenFileStore(cmd)
	if err != nil {
		return err
	}

	maxAge := time.Duration(cmd.Int("hours")) * time.Hour
	removed, err := st.Purge(ctx, maxAge)
	if err != nil {
		return err
	}

	fmt.Printf("purged %s from %s\n",
		english.Plural(removed, "record", ""), st.Root())
	return nil
}

// PurgeCommandBuilder constructs the cli.Command definition for the "purge"
// command.
func PurgeCommandBuilder(cmd *cli.Command, m meta.Meta) *cli.Command {
	return (&BoxCommandBuilder{
		Name:      "purge",
		Usage:     "remove records older than a cutoff from the local store",
		UsageText: `boxctl purge [options]`,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "hours",
				Usage: "remove records older than this many hours",
				Sources: cli.NewValueSourceChain(
					yaml.YAML("purge.hours", altsrc.StringSourcer(m.Config.Source)),
				),
				Value: 0,
			},
		},
		Action: PurgeCommandAction,
		Meta:   m,
	}).Build()
}
