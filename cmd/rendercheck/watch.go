// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"io"
	"path/filepath"
	"time"

	"cogentcore.org/rendercheck/base/errors"
	"cogentcore.org/rendercheck/config"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// settleDelay is how long the watch command waits after a file changes
// before comparing, so that a file being written is compared once.
const settleDelay = 100 * time.Millisecond

func newWatch(rf *rootFlags) *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "watch ACTUAL EXPECTED",
		Short: "Compare an actual image against an expected image every time either changes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.load(cmd, rf)
			if err != nil {
				return err
			}
			return watchFiles(cmd.Context(), cmd.OutOrStdout(), cfg, args[0], args[1])
		},
	}
	f.add(cmd)
	return cmd
}

// watchFiles compares the files, and again whenever either of them is
// written, created or renamed, until the context is done.
func watchFiles(ctx context.Context, w io.Writer, cfg *config.Run, actual, expected string) error {
	check := func() {
		if err := compareFiles(w, cfg, actual, expected); err != nil && !errors.Is(err, errFailed) {
			errors.Log(err)
		}
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	names := map[string]bool{}
	dirs := map[string]bool{}
	for _, fn := range []string{actual, expected} {
		abs, err := filepath.Abs(fn)
		if err != nil {
			return err
		}
		names[abs] = true
		dir := filepath.Dir(abs)
		if !dirs[dir] {
			if err := watcher.Add(dir); err != nil {
				return err
			}
			dirs[dir] = true
		}
	}

	check()
	timer := time.NewTimer(settleDelay)
	timer.Stop()
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !names[filepath.Clean(event.Name)] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				timer.Reset(settleDelay)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			errors.Log(err)
		case <-timer.C:
			check()
		}
	}
}
