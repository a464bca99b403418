// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/staranto/envcachego/internal/cacheutil"
	"github.com/staranto/envcachego/internal/meta"
)

// LsCommandAction is the action handler for the "ls" subcommand. It lists
// the entries in the cache directory with humanized size and age. The raw
// "bytes" and "modified" attrs are hidden but usable with --filter and
// --sort.
func LsCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args)

	if ShortCircuitTLDR(ctx, cmd, "ls") {
		return nil
	}

	al, err := BuildAttrs(cmd, "name", "source", "k", "size", "age", "!bytes", "!modified", "!ext", "!path")
	if err != nil {
		return err
	}

	dir, err := cacheDir(cmd)
	if err != nil {
		return err
	}

	entries, err := cacheutil.List(dir)
	if err != nil {
		return err
	}
	log.Debugf("%d entries in %s", len(entries), dir)

	rows := make([]map[string]interface{}, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, map[string]interface{}{
			"name":     e.Name,
			"source":   e.Source,
			"k":        e.Encoding,
			"ext":      e.Ext,
			"path":     e.Path,
			"size":     humanize.Bytes(uint64(e.Size)), //nolint:gosec
			"bytes":    e.Size,
			"age":      humanize.Time(e.ModTime),
			"modified": e.ModTime.UTC().Format("2006-01-02T15:04:05Z"),
		})
	}

	return Emit(cmd, rows, al)
}

// LsCommandBuilder constructs the cli.Command definition for the "ls"
// command.
func LsCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "ls",
		Usage:     "list cache entries",
		UsageText: `envcache ls [options]`,
		Flags:     []cli.Flag{NewCacheDirFlag(meta.Config)},
		Action:    LsCommandAction,
		Meta:      meta,
	}).Build()
}
