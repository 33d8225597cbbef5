// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/apex/log"
	"github.com/tidwall/gjson"
	"github.com/urfave/cli/v3"

	"github.com/staranto/boxctl/internal/meta"
	"github.com/staranto/boxctl/internal/record"
	"github.com/staranto/boxctl/internal/store"
)

// InspectCommandAction prints the header of a stored record. With --attr, a
// gjson path is evaluated against the header instead of dumping all of it.
func InspectCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	if ShortCircuitTLDR(ctx, cmd, "inspect") {
		return nil
	}

	name := cmd.Args().First()
	if name == "" {
		return errors.New("inspect requires a record name or path")
	}

	st, err := OpenStore(ctx, cmd)
	if err != nil {
		return err
	}

	rec, err := readRecord(ctx, st, name)
	if err != nil {
		return err
	}

	hdr, err := rec.HeaderJSON()
	if err != nil {
		return err
	}

	if attr := cmd.String("attr"); attr != "" {
		result := gjson.GetBytes(hdr, attr)
		if !result.Exists() {
			return fmt.Errorf("attribute not found: %s", attr)
		}
		fmt.Println(result.String())
		return nil
	}

	var pretty map[string]interface{}
	if err := json.Unmarshal(hdr, &pretty); err != nil {
		return err
	}
	out, err := json.MarshalIndent(pretty, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// readRecord reads a record by bare name or explicit path. A bare name is
// resolved against the file store root; S3 locations are used as-is.
func readRecord(ctx context.Context, st store.Store, name string) (*record.Record, error) {
	rec, err := st.Read(ctx, name)
	if err == nil || !errors.Is(err, store.ErrNotFound) {
		return rec, err
	}

	if fs, ok := st.(*store.FileStore); ok && !filepath.IsAbs(name) {
		if _, statErr := os.Stat(name); os.IsNotExist(statErr) {
			return fs.Read(ctx, filepath.Join(fs.Root(), name))
		}
	}
	return nil, err
}

// InspectCommandBuilder constructs the cli.Command definition for the
// "inspect" command.
func InspectCommandBuilder(cmd *cli.Command, m meta.Meta) *cli.Command {
	return (&BoxCommandBuilder{
		Name:      "inspect",
		Usage:     "show the header of a box record",
		UsageText: `boxctl inspect <record> [options]`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "attr",
				Aliases: []string{"a"},
				Usage:   "gjson path into the record header",
				Validator: func(value string) error {
					return FlagValidators(value, JammedFlagValidator)
				},
			},
		},
		Action: InspectCommandAction,
		Meta:   m,
	}).Build()
}
