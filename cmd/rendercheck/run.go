// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"cogentcore.org/rendercheck/base/errors"
	"cogentcore.org/rendercheck/base/iox/imagex"
	"cogentcore.org/rendercheck/config"
	"cogentcore.org/rendercheck/render"
	"cogentcore.org/rendercheck/stage"
	"cogentcore.org/rendercheck/system"
	"cogentcore.org/rendercheck/system/desktop"
	"cogentcore.org/rendercheck/verify"
	"github.com/spf13/cobra"
)

// Modes are the ways the run command drives its host.
const (
	// modeStep steps an offscreen host with no real time passing.
	modeStep = "step"

	// modeHeadless runs an offscreen host with real time.
	modeHeadless = "headless"

	// modeWindow displays the scene in a desktop window.
	modeWindow = "window"
)

type sceneFlags struct {
	runFlags
	at       time.Duration
	expected string
	mode     string
}

func newRun(rf *rootFlags) *cobra.Command {
	f := &sceneFlags{}
	cmd := &cobra.Command{
		Use:   "run SCENE",
		Short: "Display a scene on a host and verify a capture of it at a given time",
		Long: "Run displays the scene of the given TOML file on a host, sets the host time, " +
			"captures the host and compares the capture against the expected scene rendered at that time.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.load(cmd, rf)
			if err != nil {
				return err
			}
			return runScene(cmd.Context(), cmd.OutOrStdout(), cfg, args[0], f)
		},
	}
	f.add(cmd)
	fs := cmd.Flags()
	fs.DurationVar(&f.at, "at", 0, "time at which to capture the host")
	fs.StringVarP(&f.expected, "expected", "e", "", "expected scene file; the displayed scene by default")
	fs.StringVarP(&f.mode, "mode", "m", modeStep, "how to drive the host: step, headless or window")
	return cmd
}

func runScene(ctx context.Context, w io.Writer, cfg *config.Run, sceneFile string, f *sceneFlags) error {
	scene, err := render.OpenScene(sceneFile)
	if err != nil {
		return err
	}
	expected := scene
	if f.expected != "" {
		if expected, err = render.OpenScene(f.expected); err != nil {
			return err
		}
	}
	size := scene.Size()
	if size.X <= 0 || size.Y <= 0 {
		return fmt.Errorf("scene %q: width and height must be set", sceneFile)
	}
	bg, err := scene.BackgroundColor()
	if err != nil {
		return err
	}
	engine, err := cfg.Engine()
	if err != nil {
		return err
	}
	rd := render.NewRenderer(engine.Profile)
	name := scene.Name
	if name == "" {
		name = verify.FileName(sceneFile)
	}
	opts := verify.SnapshotOptions{
		Options: verify.Options{
			Allowed:      cfg.AllowedMismatchCount,
			Saver:        &imagex.FileSaver{Scale: cfg.ExportScale},
			OutputDir:    cfg.OutputDir,
			ExportAlways: cfg.ExportAlways,
		},
		At:       f.at,
		Expected: expected,
	}
	rep := &stage.LogReporter{}

	var res *stage.Result
	switch f.mode {
	case modeStep, modeHeadless:
		h := system.NewOffscreen(size, bg, rd)
		h.SetScene(scene)
		opts.Host = h
		o, err := verify.New(h, name, verify.Snapshot(name, opts), engine, rep)
		if err != nil {
			return err
		}
		if f.mode == modeStep {
			res, err = verify.RunOffscreen(ctx, h, o)
		} else {
			res, err = verify.RunHeadless(ctx, h, o, system.HeadlessConfig{Hz: cfg.Hz})
		}
		if err != nil {
			return err
		}
	case modeWindow:
		win := desktop.NewWindow("rendercheck: "+name, size, bg, rd)
		win.SetScene(scene)
		opts.Host = win
		o, err := verify.New(win, name, verify.Snapshot(name, opts), engine, rep)
		if err != nil {
			return err
		}
		win.Loop().Send(func() { errors.Log(o.Start(ctx)) })
		go func() {
			select {
			case <-o.Done():
			case <-ctx.Done():
			}
			win.Loop().Stop()
		}()
		if err := win.Run(); err != nil {
			return err
		}
		if res = o.Result(); res == nil {
			return fmt.Errorf("window closed before run %q finished", name)
		}
	default:
		return fmt.Errorf("unknown mode %q", f.mode)
	}
	printVerdict(w, res.Verdict == stage.Pass, res.Stats())
	if res.Verdict != stage.Pass {
		return errFailed
	}
	return nil
}
