// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/envcachego/internal/envelope"
	"github.com/staranto/envcachego/internal/meta"
)

// ShowCommandAction is the action handler for the "show" subcommand. It loads
// an existing entry without computing and reports one row per channel,
// numbered from 1. The samples themselves are available through --attrs
// values.
func ShowCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args)

	if ShortCircuitTLDR(ctx, cmd, "show") {
		return nil
	}

	al, err := BuildAttrs(cmd, "channel", "samples", "peak", "mean")
	if err != nil {
		return err
	}

	if cmd.Args().Len() != 1 {
		return fmt.Errorf("show takes exactly one source, got %d", cmd.Args().Len())
	}
	src := cmd.Args().First()

	params, err := BuildParams(cmd, cmd.Int("window"))
	if err != nil {
		return err
	}

	cache, err := OpenCache(cmd)
	if err != nil {
		return err
	}

	key, err := cache.Key(src, params)
	if err != nil {
		return err
	}

	env, ok, err := cache.Load(key)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no cache entry for %s (%s)", src, cache.Path(key))
	}

	rows := make([]map[string]interface{}, 0, len(env))
	for i, ch := range env {
		s := envelope.Stats([][]float64{ch})
		rows = append(rows, map[string]interface{}{
			"channel": i + 1,
			"samples": s.Samples,
			"peak":    s.Peak,
			"mean":    s.Mean,
			"values":  ch,
		})
	}

	return Emit(cmd, rows, al)
}

// ShowCommandBuilder constructs the cli.Command definition for the "show"
// command.
func ShowCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "show",
		Usage:     "show a cached envelope without computing",
		UsageText: `envcache show [options] <source>`,
		Flags:     NewKeyFlags(meta.Config),
		Action:    ShowCommandAction,
		Meta:      meta,
	}).Build()
}
