// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"os/exec"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/staranto/envcachego/internal/config"
)

var defaults = config.Default()

func newTLDRFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:        "tldr",
		Usage:       "show tldr page",
		Hidden:      !pathHas("tldr"),
		HideDefault: true,
	}
}

// NewGlobalFlags returns the output flags shared by every command. Values come
// from the flag, then the environment, then the config file at cfg.Source.
func NewGlobalFlags(cfg config.Type, _ string) (flags []cli.Flag) {
	flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "attrs",
			Aliases: []string{"a"},
			Usage:   "comma-separated list of attributes to include in results",
		},
		&cli.BoolWithInverseFlag{
			Name:    "color",
			Aliases: []string{"c"},
			Usage:   "enable colored text output",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("ENVCACHE_COLOR"),
				yaml.YAML("color", altsrc.StringSourcer(cfg.Source)),
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
			Usage:   "output format (text, json, yaml)",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("ENVCACHE_OUTPUT"),
				yaml.YAML("output", altsrc.StringSourcer(cfg.Source)),
			),
			Value: defaults.Output,
			Validator: func(value string) error {
				return FlagValidators(value, JammedFlagValidator, OutputValidator)
			},
		},
		&cli.StringFlag{
			Name:    "sort",
			Aliases: []string{"s"},
			Usage:   "comma-separated list of attributes to sort the results by",
		},
		&cli.BoolWithInverseFlag{
			Name:    "titles",
			Aliases: []string{"t"},
			Usage:   "show titles with text output",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("ENVCACHE_TITLES"),
				yaml.YAML("titles", altsrc.StringSourcer(cfg.Source)),
			),
			Value: false,
		},
	}

	return
}

// NewCacheDirFlag constructs the --cache-dir flag.
func NewCacheDirFlag(cfg config.Type) *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "cache-dir",
		Usage: "directory holding cache entries",
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("ENVCACHE_CACHE_DIR"),
			yaml.YAML("cache_dir", altsrc.StringSourcer(cfg.Source)),
		),
		Validator: func(value string) error {
			return FlagValidators(value, JammedFlagValidator)
		},
	}
}

// NewKeyFlags returns the flags that determine an entry's key and codec.
func NewKeyFlags(cfg config.Type) []cli.Flag {
	return []cli.Flag{
		NewCacheDirFlag(cfg),
		&cli.IntFlag{
			Name:    "window",
			Aliases: []string{"k"},
			Usage:   "envelope pooling window",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("ENVCACHE_K"),
				yaml.YAML("envelope.k", altsrc.StringSourcer(cfg.Source)),
			),
			Value: defaults.Envelope.K,
		},
		&cli.StringSliceFlag{
			Name:    "param",
			Aliases: []string{"p"},
			Usage:   "extra key parameter as name=value, may be repeated",
		},
		&cli.BoolFlag{
			Name:  "compress",
			Usage: "zstd compress cache entries",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("ENVCACHE_COMPRESS"),
				yaml.YAML("compress", altsrc.StringSourcer(cfg.Source)),
			),
			Value: defaults.Compress,
		},
		&cli.StringFlag{
			Name:  "on-corrupt",
			Usage: "corrupt entry policy (fail, recompute)",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("ENVCACHE_ON_CORRUPT"),
				yaml.YAML("on_corrupt", altsrc.StringSourcer(cfg.Source)),
			),
			Value: defaults.OnCorrupt,
			Validator: func(value string) error {
				return FlagValidators(value, JammedFlagValidator, OnCorruptValidator)
			},
		},
	}
}

// NewLogFlags returns the routed logging flags.
func NewLogFlags(cfg config.Type) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "log-to",
			Usage: "run log destination (terminal, file, both)",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("ENVCACHE_LOG_TO"),
				yaml.YAML("log.destination", altsrc.StringSourcer(cfg.Source)),
			),
			Value: defaults.Log.Destination,
			Validator: func(value string) error {
				return FlagValidators(value, JammedFlagValidator, DestinationValidator)
			},
		},
		&cli.StringFlag{
			Name:  "log-file",
			Usage: "file receiving run logs",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("ENVCACHE_LOG_FILE"),
				yaml.YAML("log.file", altsrc.StringSourcer(cfg.Source)),
			),
			Validator: func(value string) error {
				return FlagValidators(value, JammedFlagValidator)
			},
		},
	}
}

// pathHas checks if the given executable is on the PATH.
func pathHas(target string) bool {
	_, err := exec.LookPath(target)
	return err == nil
}
