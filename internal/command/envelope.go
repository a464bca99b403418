// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/envcachego/internal/artifact"
	"github.com/staranto/envcachego/internal/audio"
	"github.com/staranto/envcachego/internal/cacheutil"
	"github.com/staranto/envcachego/internal/envelope"
	"github.com/staranto/envcachego/internal/meta"
)

// EnvelopeCommandAction is the action handler for the "envelope" subcommand.
// It returns the cached envelope of each source, computing and storing it on
// a miss, and reports one row per source.
func EnvelopeCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args)

	if ShortCircuitTLDR(ctx, cmd, "envelope") {
		return nil
	}

	al, err := BuildAttrs(cmd, "source", "entry", "hit", "channels", "samples", "peak", "mean")
	if err != nil {
		return err
	}
	log.Debugf("attrs: %v", al)

	k := cmd.Int("window")
	params, err := BuildParams(cmd, k)
	if err != nil {
		return err
	}

	sources, err := Sources(cmd)
	if err != nil {
		return err
	}

	router, dest, done, err := RunRouter(cmd)
	if err != nil {
		return err
	}
	defer done()

	var cache *artifact.Cache[[][]float64]
	if cacheutil.Enabled() {
		if cache, err = OpenCache(cmd); err != nil {
			return err
		}
	} else {
		router.Log(dest, log.InfoLevel, "caching disabled by ENVCACHE_CACHE")
	}

	ext := artifact.NewCodec[[][]float64](cmd.Bool("compress")).Ext()

	var rows []map[string]interface{}
	hits := 0
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return err
		}

		compute := func() ([][]float64, error) {
			w, err := audio.LoadWAV(src)
			if err != nil {
				return nil, err
			}
			return envelope.ComputeChannels(w.Channels, k)
		}

		row, err := envelopeRow(cache, ext, src, params, compute)
		if err != nil {
			router.Entry(dest).WithError(err).WithField("source", src).Error("envelope failed")
			return fmt.Errorf("%s: %w", src, err)
		}
		if row["hit"] == "hit" {
			hits++
		}

		router.Entry(dest).WithFields(log.Fields{
			"source": src,
			"entry":  row["entry"],
			"hit":    row["hit"],
		}).Info("envelope")

		rows = append(rows, row)
	}

	router.Log(dest, log.InfoLevel, fmt.Sprintf("%d sources, %d hits, %d computed", len(rows), hits, len(rows)-hits))

	return Emit(cmd, rows, al)
}

// envelopeRow fetches one envelope. A nil cache computes without reading or
// writing entries.
func envelopeRow(
	cache *artifact.Cache[[][]float64],
	ext string,
	src string,
	params artifact.Params,
	compute artifact.ComputeFunc[[][]float64],
) (map[string]interface{}, error) {
	var (
		env  [][]float64
		name string
		hit  string
	)

	if cache == nil {
		key, err := artifact.NewKey(src, params)
		if err != nil {
			return nil, err
		}
		if env, err = compute(); err != nil {
			return nil, err
		}
		name = key.Filename(ext)
		hit = "off"
	} else {
		res, err := cache.Fetch(src, params, compute)
		if err != nil {
			return nil, err
		}
		env = res.Value
		name = res.Key.Filename(ext)
		hit = "miss"
		if res.Hit {
			hit = "hit"
		}
	}

	s := envelope.Stats(env)
	return map[string]interface{}{
		"source":   src,
		"entry":    name,
		"hit":      hit,
		"channels": s.Channels,
		"samples":  s.Samples,
		"peak":     s.Peak,
		"mean":     s.Mean,
	}, nil
}

// EnvelopeCommandBuilder constructs the cli.Command definition for the
// "envelope" command.
func EnvelopeCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "envelope",
		Aliases:   []string{"env"},
		Usage:     "compute or load cached amplitude envelopes",
		UsageText: `envcache envelope [options] <source|dir>...`,
		Flags:     append(NewKeyFlags(meta.Config), NewLogFlags(meta.Config)...),
		Action:    EnvelopeCommandAction,
		Meta:      meta,
	}).Build()
}
