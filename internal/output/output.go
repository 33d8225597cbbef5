// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/apex/log"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
	"gopkg.in/yaml.v2"

	"github.com/staranto/boxctl/internal/config"
	"github.com/staranto/boxctl/internal/meta"
)

// Column names one output column: the dataset key and its table title.
type Column struct {
	Key   string
	Title string
}

// Spit filters, sorts, and renders a dataset according to the command's
// common flags (--filter, --sort, --output, --color, --titles).
func Spit(dataset []map[string]interface{}, cols []Column, cmd *cli.Command, w io.Writer) error {
	if w == nil {
		w = os.Stdout
	}

	dataset = FilterDataset(dataset, cmd.String("filter"))
	SortDataset(dataset, cmd.String("sort"))

	switch cmd.String("output") {
	case "json":
		jsonOutput, err := json.Marshal(dataset)
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		_, _ = w.Write(jsonOutput)
		fmt.Fprintln(w)
	case "yaml":
		yamlOutput, err := yaml.Marshal(dataset)
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		_, _ = w.Write(yamlOutput)
	default:
		TableWriter(dataset, cols, cmd, w)
	}

	return nil
}

// TableWriter renders the result set in a tabular form honoring color and
// titles options.
func TableWriter(resultSet []map[string]interface{}, cols []Column, cmd *cli.Command, w io.Writer) {
	if len(resultSet) == 0 {
		return
	}

	cfg := metaConfig(cmd)

	var (
		headerStyle  = lipgloss.NewStyle().Align(lipgloss.Left)
		cellStyle    = lipgloss.NewStyle().Align(lipgloss.Left)
		evenRowStyle = cellStyle
		oddRowStyle  = cellStyle
	)

	// Color is only honored on a real terminal.
	if cmd.Bool("color") && term.IsTerminal(int(os.Stdout.Fd())) {
		headerColor, evenColor, oddColor := getColors(cfg, "colors")

		headerStyle = headerStyle.Foreground(lipgloss.Color(headerColor))
		evenRowStyle = evenRowStyle.Foreground(lipgloss.Color(evenColor))
		oddRowStyle = oddRowStyle.Foreground(lipgloss.Color(oddColor))
	}

	var rows [][]string
	for _, result := range resultSet {
		row := make([]string, 0, len(cols))
		for _, col := range cols {
			row = append(row, InterfaceToString(result[col.Key], "-"))
		}
		rows = append(rows, row)
	}

	t := table.New().
		BorderBottom(false).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Border(lipgloss.HiddenBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			pad, _ := cfg.GetInt("padding", 1)

			var style lipgloss.Style
			switch {
			case row == table.HeaderRow:
				style = headerStyle
			case row%2 == 0:
				style = evenRowStyle
			default:
				style = oddRowStyle
			}

			if col > 0 {
				style = style.PaddingLeft(pad)
			}

			return style
		}).
		Rows(rows...)

	if cmd.Bool("titles") {
		titles := make([]string, 0, len(cols))
		for _, col := range cols {
			titles = append(titles, col.Title)
		}
		t = t.Headers(titles...).BorderHeader(false)
	}

	fmt.Fprintln(w, t)
}

// metaConfig pulls the loaded config out of the command's metadata. Commands
// that don't carry one get the zero value, whose getters return defaults.
func metaConfig(cmd *cli.Command) config.Type {
	if cmd == nil || cmd.Metadata == nil {
		return config.Type{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m.Config
	}
	return config.Type{}
}

// getColors returns configured color values for table rendering.
func getColors(cfg config.Type, key string) (header string, even string, odd string) {
	header, _ = cfg.GetString(fmt.Sprintf("%s.title", key), "#f6be00")
	even, _ = cfg.GetString(fmt.Sprintf("%s.even", key), "#ffffff")
	odd, _ = cfg.GetString(fmt.Sprintf("%s.odd", key), "#00c8f0")
	return
}

// SortDataset sorts rows in place by a comma-separated spec of keys. A
// leading "-" on a key sorts that key descending. Numeric values compare
// numerically, everything else as strings.
func SortDataset(dataset []map[string]interface{}, spec string) {
	if spec == "" {
		return
	}

	type sortKey struct {
		key  string
		desc bool
	}

	var keys []sortKey
	for _, k := range strings.Split(spec, ",") {
		k = strings.TrimSpace(k)
		// A ! prefix (case-sensitivity marker) is accepted and ignored; all
		// comparisons here are case-sensitive already.
		k = strings.TrimPrefix(k, "!")
		if k == "" {
			continue
		}
		desc := strings.HasPrefix(k, "-")
		keys = append(keys, sortKey{key: strings.TrimPrefix(k, "-"), desc: desc})
	}
	if len(keys) == 0 {
		return
	}

	sort.SliceStable(dataset, func(i, j int) bool {
		for _, sk := range keys {
			a, b := dataset[i][sk.key], dataset[j][sk.key]

			af, aok := toFloat(a)
			bf, bok := toFloat(b)

			var less, more bool
			if aok && bok {
				less, more = af < bf, af > bf
			} else {
				as, bs := InterfaceToString(a, ""), InterfaceToString(b, "")
				less, more = as < bs, as > bs
			}

			if !less && !more {
				continue
			}
			if sk.desc {
				return more
			}
			return less
		}
		return false
	})
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	default:
		return 0, false
	}
}

// InterfaceToString renders a value for table output. Floats are rounded to
// the nearest integer; nil becomes emptyVal.
func InterfaceToString(value interface{}, emptyVal string) string {
	switch v := value.(type) {
	case nil:
		return emptyVal
	case string:
		if v == "" {
			return emptyVal
		}
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(math.Round(v), 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		log.Debugf("stringifying unexpected type %T", value)
		return fmt.Sprintf("%v", value)
	}
}
