// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/apex/log"

	"github.com/staranto/envcachego/internal/command"
	"github.com/staranto/envcachego/internal/config"
	mylog "github.com/staranto/envcachego/internal/log"
	"github.com/staranto/envcachego/internal/meta"
)

var ctx = context.Background()

func main() {
	os.Exit(realMain())
}

func realMain() int {
	mylog.InitLogger()

	args := os.Args

	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "No command specified.")
		args = append(args, "--help")
	}

	// Short-circuit --version/-v.
	for _, a := range args[1:] {
		if a == "--version" || a == "-v" {
			fmt.Println(command.Version)
			return 0
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	log.Debugf("config: %+v", cfg)

	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid log.level %q: %v\n", cfg.Log.Level, err)
		return 1
	}

	router, err := mylog.NewRouter(os.Stderr, cfg.Log.File, level)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer func() {
		if err := router.Close(); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}()

	m := meta.Meta{
		Args:    args,
		Config:  cfg,
		Context: ctx,
		Router:  router,
	}

	app, err := command.InitApp(ctx, m)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if err := app.Run(ctx, args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	return 0
}
