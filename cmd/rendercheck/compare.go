// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"cogentcore.org/rendercheck/base/iox/imagex"
	"cogentcore.org/rendercheck/base/logx"
	"cogentcore.org/rendercheck/compare"
	"cogentcore.org/rendercheck/config"
	"cogentcore.org/rendercheck/pixel"
	"cogentcore.org/rendercheck/stage"
	"cogentcore.org/rendercheck/verify"
	"github.com/spf13/cobra"
)

// runFlags are the flags that override the run configuration.
type runFlags struct {
	allowed  int
	override string
	profile  string
	out      string
	scale    int
	always   bool
}

func (f *runFlags) add(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.IntVarP(&f.allowed, "allowed", "a", compare.Strict, "number of mismatching pixels tolerated; negative means none")
	fs.StringVar(&f.override, "override", "", "VScan tolerance override file (YAML)")
	fs.StringVar(&f.profile, "profile", "", "tolerance profile file (TOML)")
	fs.StringVarP(&f.out, "out", "o", "", "directory of exported diagnostic images")
	fs.IntVar(&f.scale, "scale", 1, "integer scale of exported images")
	fs.BoolVar(&f.always, "always", false, "export diagnostic images of passing comparisons too")
}

// load returns the run configuration of the config file, if any,
// with the flags that were set applied over it.
func (f *runFlags) load(cmd *cobra.Command, rf *rootFlags) (*config.Run, error) {
	cfg := config.Default()
	if rf.config != "" {
		var err error
		if cfg, err = config.Open(rf.config); err != nil {
			return nil, err
		}
	}
	fs := cmd.Flags()
	if fs.Changed("allowed") {
		cfg.AllowedMismatchCount = f.allowed
	}
	if fs.Changed("override") {
		cfg.OverrideFile = f.override
	}
	if fs.Changed("profile") {
		cfg.ProfileFile = f.profile
	}
	if fs.Changed("out") {
		cfg.OutputDir = f.out
	}
	if fs.Changed("scale") {
		cfg.ExportScale = f.scale
	}
	if fs.Changed("always") {
		cfg.ExportAlways = f.always
	}
	return cfg, nil
}

func newCompare(rf *rootFlags) *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "compare ACTUAL EXPECTED",
		Short: "Compare an actual image against an expected image",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.load(cmd, rf)
			if err != nil {
				return err
			}
			return compareFiles(cmd.OutOrStdout(), cfg, args[0], args[1])
		},
	}
	f.add(cmd)
	return cmd
}

// compareFiles compares the two image files with the configuration,
// prints the outcome, exports diagnostic images, and returns
// errFailed if the comparison failed.
func compareFiles(w io.Writer, cfg *config.Run, actualFile, expectedFile string) error {
	engine, err := cfg.Engine()
	if err != nil {
		return err
	}
	actual, err := openGrid(actualFile)
	if err != nil {
		return err
	}
	expected, err := openGrid(expectedFile)
	if err != nil {
		return err
	}
	rep, err := engine.Verify(actual, expected, nil, cfg.AllowedMismatchCount)
	if err != nil {
		return err
	}
	if !rep.Passed() || cfg.ExportAlways {
		name := strings.TrimSuffix(filepath.Base(expectedFile), filepath.Ext(expectedFile))
		verify.Export(&imagex.FileSaver{Scale: cfg.ExportScale}, cfg.OutputDir, name,
			&stage.Capture{Grid: actual}, &stage.Capture{Grid: expected}, rep)
	}
	printVerdict(w, rep.Passed(), actualFile+": "+rep.Stats())
	if !rep.Passed() {
		return errFailed
	}
	return nil
}

func openGrid(filename string) (*pixel.Grid, error) {
	im, _, err := imagex.Open(filename)
	if err != nil {
		return nil, err
	}
	return pixel.NewGrid(im), nil
}

func printVerdict(w io.Writer, passed bool, msg string) {
	if passed {
		fmt.Fprintln(w, logx.SuccessColor("PASS"), msg)
	} else {
		fmt.Fprintln(w, logx.ErrorColor("FAIL"), msg)
	}
}
