// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config provides the configuration of verification runs,
// read from TOML files at the start of a run.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"cogentcore.org/rendercheck/base/errors"
	"cogentcore.org/rendercheck/base/reflectx"
	"cogentcore.org/rendercheck/compare"
	"cogentcore.org/rendercheck/tolerance"
	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
)

// maxIncludeDepth is the maximum depth of nested includes.
const maxIncludeDepth = 10

// Run is the configuration of a verification run.
type Run struct {

	// Includes are other config files, relative to the including file,
	// that are opened before it, so that its own settings take precedence.
	// Later includes take precedence over earlier ones.
	Includes []string `toml:"includes"`

	// AllowedMismatchCount is the number of mismatching pixels tolerated
	// before a comparison fails; negative means none.
	AllowedMismatchCount int `toml:"allowedMismatchCount" default:"-1"`

	// OverrideFile is the optional VScan tolerance file.
	OverrideFile string `toml:"overrideFile"`

	// ProfileFile is an optional tolerance profile file, applied
	// over the defaults before Tolerance.
	ProfileFile string `toml:"profileFile"`

	// Tolerance overrides options of the tolerance profile by name.
	Tolerance map[string]float64 `toml:"tolerance"`

	// OutputDir is the directory of exported diagnostic images.
	OutputDir string `toml:"outputDir" default:"testdata"`

	// ExportScale is the integer factor by which exported images are enlarged.
	ExportScale int `toml:"exportScale" default:"1"`

	// ExportAlways exports diagnostic images of passing comparisons too.
	ExportAlways bool `toml:"exportAlways"`

	// Hz is the frame rate of headless hosts.
	Hz int `toml:"hz" default:"60"`
}

// Default returns a new [Run] with default values.
func Default() *Run {
	c := &Run{}
	errors.Must(reflectx.SetFromDefaultTags(c))
	return c
}

// Open returns the [Run] configuration in the given TOML file, on top of
// the defaults and its includes, with all of its paths expanded with the
// home directory and made relative to the directory of the file.
func Open(filename string) (*Run, error) {
	c := Default()
	fn, err := homedir.Expand(filename)
	if err != nil {
		return nil, err
	}
	if err := c.open(fn, 0); err != nil {
		return nil, err
	}
	c.Includes = nil
	return c, nil
}

func (c *Run) open(filename string, depth int) error {
	if depth > maxIncludeDepth {
		return fmt.Errorf("config: includes nested more than %d deep at %q", maxIncludeDepth, filename)
	}
	b, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	dir := filepath.Dir(filename)
	var inc struct {
		Includes []string `toml:"includes"`
	}
	if err := toml.Unmarshal(b, &inc); err != nil {
		return fmt.Errorf("config: %s: %w", filename, err)
	}
	var errs []error
	for _, in := range inc.Includes {
		p, err := resolve(dir, in)
		if err == nil {
			err = c.open(p, depth+1)
		}
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	f := &Run{}
	dec := toml.NewDecoder(bytes.NewReader(b)).DisallowUnknownFields()
	if err := dec.Decode(f); err != nil {
		return fmt.Errorf("config: %s: %w", filename, err)
	}
	return c.merge(b, f, dir)
}

// merge sets the fields of c that are present in the TOML source b
// to their values in f, the decoding of b.
func (c *Run) merge(b []byte, f *Run, dir string) error {
	var present map[string]any
	if err := toml.Unmarshal(b, &present); err != nil {
		return err
	}
	has := func(k string) bool { _, ok := present[k]; return ok }
	var err error
	if has("allowedMismatchCount") {
		c.AllowedMismatchCount = f.AllowedMismatchCount
	}
	if has("overrideFile") {
		if c.OverrideFile, err = resolve(dir, f.OverrideFile); err != nil {
			return err
		}
	}
	if has("profileFile") {
		if c.ProfileFile, err = resolve(dir, f.ProfileFile); err != nil {
			return err
		}
	}
	if has("outputDir") {
		if c.OutputDir, err = resolve(dir, f.OutputDir); err != nil {
			return err
		}
	}
	if has("exportScale") {
		c.ExportScale = f.ExportScale
	}
	if has("exportAlways") {
		c.ExportAlways = f.ExportAlways
	}
	if has("hz") {
		c.Hz = f.Hz
	}
	for k, v := range f.Tolerance {
		if c.Tolerance == nil {
			c.Tolerance = map[string]float64{}
		}
		c.Tolerance[k] = v
	}
	return nil
}

// resolve expands a leading ~ in path and makes it relative to dir
// if it is not absolute. The empty path stays empty.
func resolve(dir, path string) (string, error) {
	if path == "" {
		return "", nil
	}
	p, err := homedir.Expand(path)
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(dir, p)
	}
	return p, nil
}

// Profile returns the tolerance profile of the run: the defaults, then
// the ProfileFile if any, then the Tolerance overrides.
func (c *Run) Profile() (*tolerance.Profile, error) {
	p := tolerance.Default()
	if c.ProfileFile != "" {
		if err := p.Open(c.ProfileFile); err != nil {
			return nil, err
		}
	}
	if err := p.ParseFrom(c.Tolerance); err != nil {
		return nil, err
	}
	return p, nil
}

// Engine returns the comparison engine of the run, with its
// [Run.Profile] and the tolerance override of OverrideFile.
func (c *Run) Engine() (*compare.Engine, error) {
	p, err := c.Profile()
	if err != nil {
		return nil, err
	}
	ov, err := compare.LoadOverride(c.OverrideFile)
	if err != nil {
		return nil, err
	}
	e := compare.NewEngine(p)
	e.Override = ov
	return e, nil
}

// Save writes the configuration to the given TOML file.
func (c *Run) Save(filename string) error {
	b, err := toml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, b, 0o666)
}
