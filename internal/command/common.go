// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/staranto/envcachego/internal/artifact"
	"github.com/staranto/envcachego/internal/attrs"
	"github.com/staranto/envcachego/internal/cacheutil"
	mylog "github.com/staranto/envcachego/internal/log"
	"github.com/staranto/envcachego/internal/meta"
	"github.com/staranto/envcachego/internal/output"
	"github.com/staranto/envcachego/internal/util"
)

var errNoSources = errors.New("no sources specified")

// ShortCircuitTLDR checks the --tldr flag and, if present and available,
// runs `tldr envcache <subcmd>` and returns true so the caller can exit early.
func ShortCircuitTLDR(ctx context.Context, cmd *cli.Command, subcmd string) bool {
	if cmd.Bool("tldr") {
		if _, err := exec.LookPath("tldr"); err == nil {
			c := exec.CommandContext(ctx, "tldr", "envcache", subcmd)
			c.Stdout = os.Stdout
			c.Stderr = os.Stderr
			_ = c.Run()
		}
		return true
	}
	return false
}

// BuildAttrs constructs an AttrList with defaults and optional extras from
// --attrs, then applies the global transform spec.
func BuildAttrs(cmd *cli.Command, defaults ...string) (al attrs.AttrList, err error) {
	for _, d := range defaults {
		if err = al.Set(d); err != nil {
			return nil, err
		}
	}
	if extras := cmd.String("attrs"); extras != "" {
		if err = al.Set(extras); err != nil {
			return nil, fmt.Errorf("invalid --attrs: %w", err)
		}
	}
	err = al.SetGlobalTransformSpec()
	return
}

// Emit renders rows per the common output flags.
func Emit(cmd *cli.Command, rows []map[string]interface{}, al attrs.AttrList) error {
	m := GetMeta(cmd)
	w := writer(cmd)

	opts := output.Options{
		Format:  cmd.String("output"),
		Filter:  cmd.String("filter"),
		Sort:    cmd.String("sort"),
		Titles:  cmd.Bool("titles"),
		Color:   cmd.Bool("color") && isTerminal(w),
		Padding: m.Config.Padding,
		Colors:  m.Config.Colors,
	}
	log.Debugf("output options: %+v", opts)

	return output.SliceDiceSpit(w, rows, al, opts)
}

// writer returns the root command's writer.
func writer(cmd *cli.Command) io.Writer {
	if root := cmd.Root(); root != nil && root.Writer != nil {
		return root.Writer
	}
	return os.Stdout
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// cacheDir resolves --cache-dir, falling back to the user cache directory.
func cacheDir(cmd *cli.Command) (string, error) {
	if dir := cmd.String("cache-dir"); dir != "" {
		return dir, nil
	}
	dir, ok := cacheutil.Dir()
	if !ok {
		return "", errors.New("unable to resolve a cache directory, use --cache-dir")
	}
	return dir, nil
}

// OpenCache builds the envelope cache from the cache flags.
func OpenCache(cmd *cli.Command) (*artifact.Cache[[][]float64], error) {
	dir, err := cacheDir(cmd)
	if err != nil {
		return nil, err
	}

	policy, err := artifact.ParseCorruptPolicy(cmd.String("on-corrupt"))
	if err != nil {
		return nil, err
	}

	codec := artifact.NewCodec[[][]float64](cmd.Bool("compress"))
	log.Debugf("cache dir=%s codec=%s policy=%s", dir, codec.Ext(), policy)

	return artifact.New(dir, codec, artifact.WithCorruptPolicy(policy))
}

// BuildParams returns the key parameters for window k plus any --param
// entries. k may only be given through --window.
func BuildParams(cmd *cli.Command, k int) (artifact.Params, error) {
	if k < 1 {
		return nil, fmt.Errorf("--window must be at least 1, got %d", k)
	}

	params := artifact.Params{"k": k}
	for _, spec := range cmd.StringSlice("param") {
		name, value, err := util.ParseParam(spec)
		if err != nil {
			return nil, err
		}
		if name == "k" {
			return nil, fmt.Errorf("invalid --param %q: use --window for k", spec)
		}
		params[name] = value
	}
	return params, nil
}

// Sources expands the positional arguments into source files.
func Sources(cmd *cli.Command) ([]string, error) {
	args := cmd.Args().Slice()
	if len(args) == 0 {
		return nil, errNoSources
	}
	exts := GetMeta(cmd).Config.Envelope.Extensions
	files, err := util.ExpandSources(args, exts...)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no sources matching %v found in %v", exts, args)
	}
	return files, nil
}

// RunRouter returns the router for this invocation and its destination. A
// router is built when --log-file overrides the configured file or there is
// no shared router; the caller closes it with the returned func.
func RunRouter(cmd *cli.Command) (*mylog.Router, mylog.Destination, func(), error) {
	m := GetMeta(cmd)

	dest, err := mylog.ParseDestination(cmd.String("log-to"))
	if err != nil {
		return nil, 0, nil, err
	}

	file := cmd.String("log-file")
	if m.Router != nil && (file == "" || file == m.Router.FilePath()) {
		return m.Router, dest, func() {}, nil
	}

	level, err := log.ParseLevel(m.Config.Log.Level)
	if err != nil {
		level = log.InfoLevel
	}

	r, err := mylog.NewRouter(os.Stderr, file, level)
	if err != nil {
		return nil, 0, nil, err
	}
	return r, dest, func() {
		if err := r.Close(); err != nil {
			log.WithError(err).Warn("failed to close log file")
		}
	}, nil
}

// CommandBuilder constructs a cli.Command for the subcommands using a
// consistent pattern. The builder wires metadata, adds the tldr flag, applies
// the output flags and sets up validators.
type CommandBuilder struct {
	Name      string
	Aliases   []string
	Usage     string
	UsageText string
	Flags     []cli.Flag
	Action    func(context.Context, *cli.Command) error
	Meta      meta.Meta
}

// Build returns a configured cli.Command from the builder.
func (cb *CommandBuilder) Build() *cli.Command {
	return &cli.Command{
		Name:      cb.Name,
		Aliases:   cb.Aliases,
		Usage:     cb.Usage,
		UsageText: cb.UsageText,
		Metadata: map[string]any{
			"meta": cb.Meta,
		},
		Flags: append(cb.Flags, append([]cli.Flag{
			newTLDRFlag(),
		}, NewGlobalFlags(cb.Meta.Config, cb.Name)...)...),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, GlobalFlagsValidator(ctx, c)
		},
		Action: cb.Action,
	}
}
