// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/boxctl/internal/config"
	"github.com/staranto/boxctl/internal/meta"
)

// InitApp builds the boxctl command tree. cfg is the already-loaded config;
// the subcommand name (args[1], unless it looks like a flag) becomes the
// config namespace so `ls.output: json` style keys resolve.
func InitApp(ctx context.Context, args []string, cfg config.Type) (*cli.Command, error) {
	if len(args) > 1 && !strings.HasPrefix(args[1], "-") {
		cfg.Namespace = args[1]
	}

	m := meta.Meta{
		Args:    args,
		Config:  cfg,
		Context: ctx,
	}

	app := &cli.Command{
		Name:  "boxctl",
		Usage: "simulation box cache control",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "version",
				Aliases:     []string{"v"},
				Usage:       "boxctl version info",
				HideDefault: true,
			},
		},
	}

	app.Commands = append(app.Commands,
		DiffCommandBuilder(app, m),
		InspectCommandBuilder(app, m),
		LsCommandBuilder(app, m),
		PurgeCommandBuilder(app, m),
		CompletionCommandBuilder(app, m),
	)

	// Make sure flags are sorted for the --help text.
	for _, cmd := range app.Commands {
		sort.Slice(cmd.Flags, func(i, j int) bool {
			return cmd.Flags[i].Names()[0] < cmd.Flags[j].Names()[0]
		})
	}

	return app, nil
}
