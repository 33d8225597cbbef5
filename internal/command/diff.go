// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"
	"github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"
	"golang.org/x/term"

	"github.com/staranto/boxctl/internal/meta"
)

// DiffCommandAction compares the headers of two stored records and prints
// the differences. Two records of the same type differ in their parameter
// snapshots, which is usually what a cache mismatch hunt is after.
func DiffCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	if ShortCircuitTLDR(ctx, cmd, "diff") {
		return nil
	}

	if cmd.Args().Len() != 2 {
		return errors.New("diff requires exactly two record names or paths")
	}

	st, err := OpenStore(ctx, cmd)
	if err != nil {
		return err
	}

	left, err := readRecord(ctx, st, cmd.Args().Get(0))
	if err != nil {
		return err
	}
	right, err := readRecord(ctx, st, cmd.Args().Get(1))
	if err != nil {
		return err
	}

	leftJSON, err := left.HeaderJSON()
	if err != nil {
		return err
	}
	rightJSON, err := right.HeaderJSON()
	if err != nil {
		return err
	}

	d, err := gojsondiff.New().Compare(leftJSON, rightJSON)
	if err != nil {
		return fmt.Errorf("failed to diff record headers: %w", err)
	}
	if !d.Modified() {
		return nil
	}

	var leftDoc map[string]interface{}
	if err := json.Unmarshal(leftJSON, &leftDoc); err != nil {
		return err
	}

	colored := cmd.Bool("color") && term.IsTerminal(int(os.Stdout.Fd()))
	f := formatter.NewAsciiFormatter(leftDoc, formatter.AsciiFormatterConfig{
		ShowArrayIndex: true,
		Coloring:       colored,
	})
	out, err := f.Format(d)
	if err != nil {
		return fmt.Errorf("failed to format diff: %w", err)
	}

	fmt.Print(out)
	return nil
}

// DiffCommandBuilder constructs the cli.Command definition for the "diff"
// command.
func DiffCommandBuilder(cmd *cli.Command, m meta.Meta) *cli.Command {
	return (&BoxCommandBuilder{
		Name:      "diff",
		Usage:     "compare the headers of two box records",
		UsageText: `boxctl diff <record> <record> [options]`,
		Action:    DiffCommandAction,
		Meta:      m,
	}).Build()
}
