// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"os/exec"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"
)

// NewTLDRFlag constructs the --tldr flag, hidden when the tldr binary is not
// on PATH.
func NewTLDRFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:        "tldr",
		Usage:       "show tldr page",
		Hidden:      !pathHas("tldr"),
		HideDefault: true,
	}
}

// NewStoreFlags constructs the flags that select which store a command
// operates on: a local directory or an S3 bucket/prefix. cfgSource is the
// path of the loaded config file; flag values fall back to it.
func NewStoreFlags(ns string, cfgSource string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "dir",
			Aliases: []string{"d"},
			Usage:   "store directory holding box records",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("BOXCTL_CACHE_DIR"),
				yaml.YAML(ns+"."+"dir", altsrc.StringSourcer(cfgSource)),
				yaml.YAML("cache.dir", altsrc.StringSourcer(cfgSource)),
			),
		},
		&cli.StringFlag{
			Name:  "bucket",
			Usage: "S3 bucket holding box records. Overrides --dir",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("BOXCTL_BUCKET"),
				yaml.YAML("s3.bucket", altsrc.StringSourcer(cfgSource)),
			),
		},
		&cli.StringFlag{
			Name:  "prefix",
			Usage: "key prefix within the S3 bucket",
			Sources: cli.NewValueSourceChain(
				yaml.YAML("s3.prefix", altsrc.StringSourcer(cfgSource)),
			),
		},
		&cli.StringFlag{
			Name:  "region",
			Usage: "AWS region for the S3 bucket",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("BOXCTL_REGION"),
				yaml.YAML("s3.region", altsrc.StringSourcer(cfgSource)),
			),
		},
		&cli.StringFlag{
			Name:  "profile",
			Usage: "AWS shared config profile for the S3 bucket",
			Sources: cli.NewValueSourceChain(
				yaml.YAML("s3.profile", altsrc.StringSourcer(cfgSource)),
			),
		},
	}
}

// NewGlobalFlags constructs the output-shaping flags common to all query
// style commands. ns is the command name; namespaced config keys win over
// bare ones.
func NewGlobalFlags(ns string, cfgSource string) []cli.Flag {
	return []cli.Flag{
		&cli.BoolWithInverseFlag{
			Name:    "color",
			Aliases: []string{"c"},
			Usage:   "enable colored text output",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+"."+"color", altsrc.StringSourcer(cfgSource)),
				yaml.YAML("color", altsrc.StringSourcer(cfgSource)),
			),
			Value: false,
		},
		&cli.StringFlag{
			Name:    "filter",
			Aliases: []string{"f"},
			Usage:   "comma-separated list of filters to apply to results",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+"."+"output", altsrc.StringSourcer(cfgSource)),
				yaml.YAML("output", altsrc.StringSourcer(cfgSource)),
			),
			Value: "text",
			Validator: func(value string) error {
				return FlagValidators(value, OutputValidator)
			},
		},
		&cli.StringFlag{
			Name:    "sort",
			Aliases: []string{"s"},
			Usage:   "comma-separated list of attributes to sort the results by",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+"."+"sort", altsrc.StringSourcer(cfgSource)),
			),
		},
		&cli.BoolWithInverseFlag{
			Name:    "titles",
			Aliases: []string{"t"},
			Usage:   "show titles with text output",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+"."+"titles", altsrc.StringSourcer(cfgSource)),
				yaml.YAML("titles", altsrc.StringSourcer(cfgSource)),
			),
			Value: false,
		},
	}
}

// pathHas checks if the given executable exists on PATH.
func pathHas(target string) bool {
	_, err := exec.LookPath(target)
	return err == nil
}
