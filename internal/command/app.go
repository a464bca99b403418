// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT
package command

import (
	"context"
	"fmt"
	"sort"

	"github.com/urfave/cli/v3"

	"github.com/staranto/envcachego/internal/meta"
)

// Version is reported by --version.
var Version = "dev"

// InitApp builds the envcache command tree around m. The config in m has
// already been loaded and is validated here.
func InitApp(ctx context.Context, m meta.Meta) (*cli.Command, error) {
	if err := m.Config.Validate(); err != nil {
		if m.Config.Source != "" {
			return nil, fmt.Errorf("invalid config %s: %w", m.Config.Source, err)
		}
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if m.Context == nil {
		m.Context = ctx
	}

	app := &cli.Command{
		Name:  "envcache",
		Usage: "Envelope Cache",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "version",
				Aliases:     []string{"v"},
				Usage:       "envcache version info",
				HideDefault: true,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Bool("version") {
				_, err := fmt.Fprintln(c.Root().Writer, Version)
				return err
			}
			return cli.ShowAppHelp(c)
		},
	}

	app.Commands = append(app.Commands,
		EnvelopeCommandBuilder(app, m),
		KeyCommandBuilder(app, m),
		LsCommandBuilder(app, m),
		ShowCommandBuilder(app, m),
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
