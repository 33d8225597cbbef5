// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"os"
	"path"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/staranto/boxctl/internal/meta"
	"github.com/staranto/boxctl/internal/output"
)

// lsColumns are the displayed columns. The dataset rows also carry a raw
// "bytes" key so --sort and --filter can work on exact sizes.
var lsColumns = []output.Column{
	{Key: "type", Title: "TYPE"},
	{Key: "fingerprint", Title: "FINGERPRINT"},
	{Key: "seed", Title: "SEED"},
	{Key: "size", Title: "SIZE"},
	{Key: "age", Title: "AGE"},
	{Key: "name", Title: "NAME"},
}

// LsCommandAction lists the records in the store according to the common
// output/sort/filter flags.
func LsCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	if ShortCircuitTLDR(ctx, cmd, "ls") {
		return nil
	}

	st, err := OpenStore(ctx, cmd)
	if err != nil {
		return err
	}

	entries, err := st.Entries(ctx)
	if err != nil {
		return err
	}

	dataset := make([]map[string]interface{}, 0, len(entries))
	for _, e := range entries {
		dataset = append(dataset, map[string]interface{}{
			"type":        e.Type,
			"fingerprint": e.Fingerprint,
			"seed":        e.Seed,
			"size":        humanize.Bytes(uint64(e.Size)),
			"bytes":       e.Size,
			"age":         humanize.Time(e.ModTime),
			"name":        path.Base(e.Location),
			"location":    e.Location,
		})
	}

	return output.Spit(dataset, lsColumns, cmd, os.Stdout)
}

// LsCommandBuilder constructs the cli.Command definition for the "ls"
// command.
func LsCommandBuilder(cmd *cli.Command, m meta.Meta) *cli.Command {
	return (&BoxCommandBuilder{
		Name:      "ls",
		Usage:     "list stored box records",
		UsageText: `boxctl ls [options]`,
		Action:    LsCommandAction,
		Meta:      m,
	}).Build()
}
