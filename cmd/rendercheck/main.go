// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command rendercheck compares rendered images and runs staged
// verifications of scenes.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"

	"cogentcore.org/rendercheck/base/logx"
	"github.com/spf13/cobra"
)

// errFailed is returned by commands whose verification failed,
// after the failure has been reported.
var errFailed = errors.New("verification failed")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRoot().ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errors.Is(err, errFailed) {
			slog.Error(err.Error())
		}
		os.Exit(1)
	}
}

type rootFlags struct {
	verbose int
	quiet   bool
	config  string
}

func newRoot() *cobra.Command {
	rf := &rootFlags{}
	root := &cobra.Command{
		Use:           "rendercheck",
		Short:         "Compare rendered frames with tolerance and run staged scene verifications",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logx.UserLevel = logx.LevelFromFlags(rf.verbose >= 2, rf.verbose == 1, rf.quiet)
			logx.SetDefaultLogger()
		},
	}
	pf := root.PersistentFlags()
	pf.CountVarP(&rf.verbose, "verbose", "v", "verbose output; repeat (-vv) for debug output")
	pf.BoolVarP(&rf.quiet, "quiet", "q", false, "only print errors")
	pf.StringVarP(&rf.config, "config", "c", "", "run configuration file (TOML)")
	root.AddCommand(newCompare(rf), newRun(rf), newWatch(rf))
	return root
}
