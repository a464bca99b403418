// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/envcachego/internal/meta"
)

// KeyCommandAction is the action handler for the "key" subcommand. It prints
// the derived key, entry name and path of each source and whether the entry
// exists, without loading or computing anything.
func KeyCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args)

	if ShortCircuitTLDR(ctx, cmd, "key") {
		return nil
	}

	al, err := BuildAttrs(cmd, "source", "entry", "exists", "!key", "!encoding", "!path")
	if err != nil {
		return err
	}

	params, err := BuildParams(cmd, cmd.Int("window"))
	if err != nil {
		return err
	}

	// Keys are derived from names only, so sources need not exist.
	sources := cmd.Args().Slice()
	if len(sources) == 0 {
		return errNoSources
	}

	cache, err := OpenCache(cmd)
	if err != nil {
		return err
	}

	//nolint:prealloc
	var rows []map[string]interface{}
	for _, src := range sources {
		key, err := cache.Key(src, params)
		if err != nil {
			return err
		}
		exists, err := cache.Exists(key)
		if err != nil {
			return err
		}

		path := cache.Path(key)
		rows = append(rows, map[string]interface{}{
			"source":   src,
			"key":      key.String(),
			"encoding": key.Encoding,
			"entry":    key.Filename(cache.Ext()),
			"path":     path,
			"exists":   exists,
		})
	}

	return Emit(cmd, rows, al)
}

// KeyCommandBuilder constructs the cli.Command definition for the "key"
// command.
func KeyCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "key",
		Usage:     "show derived cache keys",
		UsageText: `envcache key [options] <source>...`,
		Flags:     NewKeyFlags(meta.Config),
		Action:    KeyCommandAction,
		Meta:      meta,
	}).Build()
}
